package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// defaultRedisTimeout bounds each Redis round trip.
const defaultRedisTimeout = 2 * time.Second

// RedisSlot stores slots as plain Redis string keys under a prefix.
type RedisSlot struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisSlot connects to addr (host:port). prefix is prepended to every
// key, e.g. "stories:".
func NewRedisSlot(addr, prefix string) *RedisSlot {
	return &RedisSlot{
		rdb:     redis.NewClient(&redis.Options{Addr: addr}),
		prefix:  prefix,
		timeout: defaultRedisTimeout,
	}
}

// Ping checks connectivity.
func (r *RedisSlot) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Get returns the value stored under key.
func (r *RedisSlot) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, true, nil
}

// Set replaces the value stored under key. Slots never expire.
func (r *RedisSlot) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (r *RedisSlot) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

// Close releases the connection pool.
func (r *RedisSlot) Close() error {
	return r.rdb.Close()
}
