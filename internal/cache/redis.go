package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisClient bundles the raw client with a lock client sharing its pool.
type RedisClient struct {
	Client *redis.Client
	Locker *redislock.Client
}

func NewRedisClient(cfg *Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 100,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return NewFromClient(rdb), nil
}

func NewFromClient(rdb *redis.Client) *RedisClient {
	return &RedisClient{Client: rdb, Locker: redislock.New(rdb)}
}

// ErrLockNotObtained is returned when another holder keeps the key past every retry.
var ErrLockNotObtained = redislock.ErrNotObtained

// AcquireLock obtains key for ttl, retrying a few times with a linear backoff.
func (c *RedisClient) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*redislock.Lock, error) {
	return c.Locker.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 30),
	})
}

func (c *RedisClient) ReleaseLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}

// Get reports false on a cache miss.
func (c *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

// DeletePattern removes every key matching pattern using SCAN.
func (c *RedisClient) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.Client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

func (c *RedisClient) Close() error {
	return c.Client.Close()
}
