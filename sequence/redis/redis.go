// Package redis provides a sequence.Source backed by a Redis INCR counter, so
// several client processes can share one id space.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/ggoodman/streamrpc-go/sequence"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

var _ sequence.Source = (*Source)(nil)

// DefaultKey is the counter key used when Config.Key is empty.
const DefaultKey = "streamrpc:sequence"

// Config for a Redis-backed Source. Defaults can be loaded via envdecode.
type Config struct {
	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`
	// Key holding the counter. ENV: STREAMRPC_SEQUENCE_KEY
	Key string `env:"STREAMRPC_SEQUENCE_KEY,default=streamrpc:sequence"`
}

// Source allocates ids with INCR on a single key.
type Source struct {
	client *redis.Client
	key    string
	owned  bool
}

// New creates a Source with its own client and verifies the server answers
// PING.
func New(cfg Config) (*Source, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Source{client: client, key: keyOrDefault(cfg.Key), owned: true}, nil
}

// NewWithClient creates a Source on an existing client. Close leaves the
// client open.
func NewWithClient(client *redis.Client, key string) *Source {
	return &Source{client: client, key: keyOrDefault(key)}
}

func keyOrDefault(key string) string {
	if key == "" {
		return DefaultKey
	}
	return key
}

// NewFromEnv builds a Source using envdecode to populate Config.
func NewFromEnv() (*Source, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode redis sequence config: %w", err)
	}
	return New(cfg)
}

// Next increments the counter and returns the new value.
func (s *Source) Next(ctx context.Context) (int64, error) {
	id, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", s.key, err)
	}
	return id, nil
}

// Close closes the Redis client if the Source created it.
func (s *Source) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
