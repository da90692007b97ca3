package flock

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadtree-index/config"
	"quadtree-index/quadtree"
)

var bounds = quadtree.R(0, 0, 600, 400)

func testConfig() config.FlockConfig {
	return config.FlockConfig{Vision: 35, MaxNeighbors: 10, MaxEntries: 1, MinCellSize: 1}
}

func randomAgents(rnd *rand.Rand, n int) []Agent {
	agents := make([]Agent, n)
	for i := range agents {
		agents[i] = Agent{
			Position: quadtree.Pt(rnd.Float64()*600, rnd.Float64()*400),
			Velocity: quadtree.Pt(rnd.Float64()*30-15, rnd.Float64()*30-15),
		}
	}
	return agents
}

func TestNew_invalid(t *testing.T) {
	cfg := testConfig()
	cfg.Vision = 0
	_, err := New(bounds, cfg, nil)
	assert.ErrorIs(t, err, quadtree.ErrInvalidArgument)

	cfg = testConfig()
	cfg.MaxEntries = 0
	_, err = New(bounds, cfg, nil)
	assert.ErrorIs(t, err, quadtree.ErrInvalidArgument)
}

func TestNeighbors(t *testing.T) {
	agents := []Agent{
		{Position: quadtree.Pt(100, 100)},
		{Position: quadtree.Pt(120, 100)},
		{Position: quadtree.Pt(130, 130)}, // in the square, 42 away
		{Position: quadtree.Pt(300, 300)},
		{Position: quadtree.Pt(100, 100)}, // same spot as 0
	}
	f, err := New(bounds, testConfig(), agents)
	require.NoError(t, err)

	snap := f.Snapshot()
	assert.ElementsMatch(t, []int{1, 2, 4}, snap.Neighbors(0))
	assert.Empty(t, snap.Neighbors(3))

	cfg := testConfig()
	cfg.ExactDistance = true
	f, err = New(bounds, cfg, agents)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 4}, f.Snapshot().Neighbors(0))

	cfg = testConfig()
	cfg.MaxNeighbors = 2
	f, err = New(bounds, cfg, agents)
	require.NoError(t, err)
	assert.Len(t, f.Snapshot().Neighbors(0), 2)
}

func TestNeighbors_matchBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	agents := randomAgents(rnd, 300)
	cfg := testConfig()
	cfg.MaxNeighbors = 0
	f, err := New(bounds, cfg, agents)
	require.NoError(t, err)
	snap := f.Snapshot()

	for i, a := range agents {
		var want []int
		box := quadtree.Around(a.Position, cfg.Vision)
		for j, b := range agents {
			if j != i && box.Contains(b.Position) {
				want = append(want, j)
			}
		}
		assert.ElementsMatch(t, want, snap.Neighbors(i), "agent %d", i)
	}
}

func TestStep(t *testing.T) {
	agents := []Agent{
		{Position: quadtree.Pt(10, 10), Velocity: quadtree.Pt(1, 2)},
		{Position: quadtree.Pt(20, 10), Velocity: quadtree.Pt(-1, 0)},
	}
	f, err := New(bounds, testConfig(), agents)
	require.NoError(t, err)

	var seen [][]Agent
	require.NoError(t, f.Step(func(i int, a Agent, neighbors []Agent) Agent {
		seen = append(seen, neighbors)
		return Drift(i, a, neighbors)
	}))

	snap := f.Snapshot()
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, quadtree.Pt(11, 12), snap.Agents[0].Position)
	assert.Equal(t, quadtree.Pt(19, 10), snap.Agents[1].Position)
	assert.Equal(t, [][]Agent{{agents[1]}, {agents[0]}}, seen)

	require.NoError(t, f.Update(agents))
	assert.Equal(t, uint64(2), f.Snapshot().Tick)
	assert.Equal(t, agents, f.Snapshot().Agents)
}

func TestUpdate_copiesAgents(t *testing.T) {
	agents := []Agent{{Position: quadtree.Pt(10, 10)}}
	f, err := New(bounds, testConfig(), agents)
	require.NoError(t, err)

	agents[0].Position = quadtree.Pt(500, 300)
	assert.Equal(t, quadtree.Pt(10, 10), f.Snapshot().Agents[0].Position)
	assert.Equal(t, []int{0}, f.Snapshot().Within(quadtree.R(0, 0, 20, 20)))
}

func TestSnapshot_concurrentReaders(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	f, err := New(bounds, testConfig(), randomAgents(rnd, 200))
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := f.Snapshot()
				for i := range snap.Agents {
					for _, j := range snap.Neighbors(i) {
						if j == i || j >= len(snap.Agents) {
							t.Errorf("bad neighbour %d of %d", j, i)
						}
					}
				}
			}
		}()
	}
	for tick := 0; tick < 20; tick++ {
		require.NoError(t, f.Step(Drift))
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, uint64(20), f.Snapshot().Tick)
}
