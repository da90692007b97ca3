package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadtree-index/config"
	"quadtree-index/models"
)

func newTestCache(t *testing.T) (*PointSetCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewPointSetCache(rdb, time.Minute), mr
}

func TestPointSetCache(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "boids")
	assert.ErrorIs(t, err, ErrMiss)

	ps := &models.PointSet{
		Name:        "boids",
		Bounds:      models.Rect{Max: models.Point{X: 500, Y: 500}},
		MaxEntries:  1,
		MinCellSize: 1,
		Entries:     []models.Entry{{ID: 7, X: 1.5, Y: 2.5}},
	}
	require.NoError(t, c.Set(ctx, ps))
	assert.True(t, mr.Exists("pointset:boids"))
	assert.Equal(t, time.Minute, mr.TTL("pointset:boids"))

	got, err := c.Get(ctx, "boids")
	require.NoError(t, err)
	assert.Equal(t, ps, got)

	require.NoError(t, c.Delete(ctx, "boids"))
	_, err = c.Get(ctx, "boids")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestPointSetCache_expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.PointSet{Name: "short"}))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInitializeRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, InitializeRedis(config.RedisConfig{Addr: mr.Addr()}))
	assert.NotNil(t, Rdb)
	Rdb.Close()
}
