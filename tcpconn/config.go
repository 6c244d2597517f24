package tcpconn

import (
	"errors"
	"fmt"
	"time"

	"github.com/ggoodman/streamrpc-go/endpoint"
	"github.com/ggoodman/streamrpc-go/internal/framing"
	"github.com/joeshaw/envdecode"
)

// Config for a Connector. Defaults can be loaded via envdecode.
type Config struct {
	// URL of the peer, [scheme://]host[:port]. ENV: STREAMRPC_URL
	URL string `env:"STREAMRPC_URL,default=localhost:8889"`
	// BufferCapacity is the largest response accepted. ENV: STREAMRPC_BUFFER_CAPACITY
	BufferCapacity int `env:"STREAMRPC_BUFFER_CAPACITY,default=4096"`
	// DepthLimit is the framing nesting ceiling. ENV: STREAMRPC_FRAMING_DEPTH_LIMIT
	DepthLimit int `env:"STREAMRPC_FRAMING_DEPTH_LIMIT,default=4096"`
	// DialTimeout bounds each connection attempt; zero means none. ENV: STREAMRPC_DIAL_TIMEOUT
	DialTimeout time.Duration `env:"STREAMRPC_DIAL_TIMEOUT"`
	// ReadTimeout bounds each read; zero means none. ENV: STREAMRPC_READ_TIMEOUT
	ReadTimeout time.Duration `env:"STREAMRPC_READ_TIMEOUT"`
	// WriteTimeout bounds each write; zero means none. ENV: STREAMRPC_WRITE_TIMEOUT
	WriteTimeout time.Duration `env:"STREAMRPC_WRITE_TIMEOUT"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		URL:            endpoint.DefaultURL,
		BufferCapacity: DefaultBufferCapacity,
		DepthLimit:     framing.DefaultDepthLimit,
	}
}

// ConfigFromEnv reads Config from the environment.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode tcpconn config: %w", err)
	}
	return cfg, nil
}

// Options converts cfg to connector options.
func (cfg Config) Options() []Option {
	return []Option{
		WithBufferCapacity(cfg.BufferCapacity),
		WithDepthLimit(cfg.DepthLimit),
		WithDialTimeout(cfg.DialTimeout),
		WithReadTimeout(cfg.ReadTimeout),
		WithWriteTimeout(cfg.WriteTimeout),
	}
}

// NewFromConfig builds a Connector from cfg. Extra options are applied after
// the ones derived from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Connector, error) {
	return New(cfg.URL, append(cfg.Options(), opts...)...)
}

// NewFromEnv builds a Connector using envdecode to populate Config.
func NewFromEnv(opts ...Option) (*Connector, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}
