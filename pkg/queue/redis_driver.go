package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisQueueKey = "storefront:queue:notifications"

// RedisDriver keeps messages in a Redis list: LPUSH to publish, BRPOP to
// consume, so delivery order is FIFO.
type RedisDriver struct {
	rdb *redis.Client
	key string
}

// NewRedisDriver wraps rdb. Pass the same client used by pkg/cache.
func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	return &RedisDriver{rdb: rdb, key: redisQueueKey}
}

func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, d.key, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

// Pop blocks for up to five seconds.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	result, err := d.rdb.BRPop(ctx, 5*time.Second, d.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // timeout, nothing ready
		}
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

func (d *RedisDriver) Len(ctx context.Context) (int64, error) {
	n, err := d.rdb.LLen(ctx, d.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue/redis: len: %w", err)
	}
	return n, nil
}
