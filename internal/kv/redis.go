// Package kv provides the Redis-backed key-value store for per-user
// preference and session data.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store provides get/put access to string values in Redis.
type Store struct {
	client *redis.Client
}

// New creates a new Store with a Redis client.
func New(ctx context.Context, redisURL string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Get returns the value stored at key.
// found is false when the key does not exist; that is not an error.
func (s *Store) Get(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, true, nil
}

// GetWithDefault returns the value stored at key, or def when the key is absent.
func (s *Store) GetWithDefault(ctx context.Context, key, def string) (string, error) {
	value, found, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return def, nil
	}
	return value, nil
}

// Put stores value at key without expiry.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Store.
func (s *Store) Client() *redis.Client {
	return s.client
}
