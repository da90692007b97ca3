// Package flock keeps a per-tick spatial snapshot of moving agents and
// answers neighbour lookups against it. Steering rules are supplied by the
// caller.
package flock

import (
	"fmt"
	"sync/atomic"

	"quadtree-index/config"
	"quadtree-index/quadtree"
)

// Agent is anything with a position and a velocity
type Agent struct {
	Position quadtree.Point
	Velocity quadtree.Point
}

// Steer computes the next state of agent i from its neighbours.
type Steer func(i int, agent Agent, neighbors []Agent) Agent

// Snapshot is the immutable state of one tick. It is safe to share between
// goroutines.
type Snapshot struct {
	Tick   uint64
	Agents []Agent
	lookup func(quadtree.Rect) []int
	cfg    config.FlockConfig
}

// Flock rebuilds a quadtree over its agents on every tick and publishes it
// with an atomic pointer swap.
type Flock struct {
	cfg    config.FlockConfig
	bounds quadtree.Rect
	snap   atomic.Pointer[Snapshot]
}

func New(bounds quadtree.Rect, cfg config.FlockConfig, agents []Agent) (*Flock, error) {
	if !(cfg.Vision > 0) {
		return nil, fmt.Errorf("%w: vision must be positive, got %v", quadtree.ErrInvalidArgument, cfg.Vision)
	}
	f := &Flock{cfg: cfg, bounds: bounds}
	if err := f.publish(0, agents); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Flock) publish(tick uint64, agents []Agent) error {
	owned := make([]Agent, len(agents))
	copy(owned, agents)
	entries := make([]quadtree.Entry[int], len(owned))
	for i, a := range owned {
		entries[i] = quadtree.Entry[int]{ID: i, Point: a.Position}
	}
	tree, err := quadtree.Build(f.cfg.MaxEntries, f.cfg.MinCellSize, f.bounds, entries)
	if err != nil {
		return fmt.Errorf("building tick %d: %w", tick, err)
	}
	f.snap.Store(&Snapshot{
		Tick:   tick,
		Agents: owned,
		lookup: quadtree.QueryBuilder[int](tree),
		cfg:    f.cfg,
	})
	return nil
}

// Snapshot returns the latest published tick.
func (f *Flock) Snapshot() *Snapshot {
	return f.snap.Load()
}

// Update replaces every agent and publishes a new tick.
func (f *Flock) Update(agents []Agent) error {
	return f.publish(f.Snapshot().Tick+1, agents)
}

// Step runs steer over every agent of the current snapshot and publishes
// the result as the next tick. Step must not be called concurrently with
// itself or Update.
func (f *Flock) Step(steer Steer) error {
	cur := f.Snapshot()
	next := make([]Agent, len(cur.Agents))
	for i, a := range cur.Agents {
		next[i] = steer(i, a, cur.NeighborAgents(i))
	}
	return f.publish(cur.Tick+1, next)
}

// Drift moves an agent by its velocity and ignores its neighbours.
func Drift(_ int, a Agent, _ []Agent) Agent {
	a.Position = quadtree.Pt(a.Position.X+a.Velocity.X, a.Position.Y+a.Velocity.Y)
	return a
}

// Neighbors returns the indexes of up to MaxNeighbors agents in the square
// of side 2*Vision around agent i, excluding i itself. With ExactDistance
// set the square is narrowed to a circle of radius Vision.
func (s *Snapshot) Neighbors(i int) []int {
	me := s.Agents[i].Position
	var out []int
	for _, j := range s.lookup(quadtree.Around(me, s.cfg.Vision)) {
		if j == i {
			continue
		}
		if s.cfg.ExactDistance && s.Agents[j].Position.DistanceSq(me) > s.cfg.Vision*s.cfg.Vision {
			continue
		}
		out = append(out, j)
		if s.cfg.MaxNeighbors > 0 && len(out) == s.cfg.MaxNeighbors {
			break
		}
	}
	return out
}

func (s *Snapshot) NeighborAgents(i int) []Agent {
	idx := s.Neighbors(i)
	out := make([]Agent, len(idx))
	for k, j := range idx {
		out[k] = s.Agents[j]
	}
	return out
}

// Within returns every agent index inside r.
func (s *Snapshot) Within(r quadtree.Rect) []int {
	return s.lookup(r)
}
