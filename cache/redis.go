package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"quadtree-index/config"
	"quadtree-index/models"
)

var Rdb *redis.Client

// ErrMiss is returned when a point set is not cached.
var ErrMiss = errors.New("cache miss")

// InitializeRedis initializes the Redis client
func InitializeRedis(cfg config.RedisConfig) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Check the Redis connection
	ctx := context.Background()
	_, err := Rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("Connected to Redis successfully.")
	return nil
}

// PointSetCache keeps JSON copies of point sets so a restarted server can
// rebuild its indexes without a round trip to Postgres.
type PointSetCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPointSetCache(rdb *redis.Client, ttl time.Duration) *PointSetCache {
	return &PointSetCache{rdb: rdb, ttl: ttl}
}

func key(name string) string {
	return fmt.Sprintf("pointset:%s", name)
}

func (c *PointSetCache) Get(ctx context.Context, name string) (*models.PointSet, error) {
	data, err := c.rdb.Get(ctx, key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("reading %s from cache: %w", name, err)
	}
	var ps models.PointSet
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("decoding cached %s: %w", name, err)
	}
	return &ps, nil
}

func (c *PointSetCache) Set(ctx context.Context, ps *models.PointSet) error {
	data, err := json.Marshal(ps)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(ps.Name), data, c.ttl).Err()
}

func (c *PointSetCache) Delete(ctx context.Context, name string) error {
	return c.rdb.Del(ctx, key(name)).Err()
}
