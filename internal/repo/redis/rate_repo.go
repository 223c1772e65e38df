package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type RateRepo struct {
	client *goredis.Client
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{client: client}
}

// IncrementWindow bumps the counter behind key and returns the new count and
// the time left in the window. The TTL is armed on the first hit only, so the
// window is fixed rather than sliding.
func (r *RateRepo) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" || window <= 0 {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("increment rate key: %w", err)
	}

	count := incr.Val()
	ttl := ttlCmd.Val()
	if count == 1 || ttl < 0 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("set rate key ttl: %w", err)
		}
		ttl = window
	}

	return count, ttl, nil
}

func (r *RateRepo) WindowState(ctx context.Context, key string) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return 0, 0, fmt.Errorf("rate key is required")
	}

	count, err := r.client.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get rate key state: %w", err)
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read rate key ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}

	return count, ttl, nil
}
