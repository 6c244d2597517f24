package streamrpc

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
	"golang.org/x/time/rate"
)

// Config for a Client. Defaults can be loaded via envdecode.
type Config struct {
	// ValidateResponses enables envelope validation. ENV: STREAMRPC_VALIDATE_RESPONSES
	ValidateResponses bool `env:"STREAMRPC_VALIDATE_RESPONSES,default=true"`
	// RateLimit is the sustained calls per second; zero disables pacing. ENV: STREAMRPC_RATE_LIMIT
	RateLimit float64 `env:"STREAMRPC_RATE_LIMIT,default=0"`
	// RateBurst is the pacing burst size. ENV: STREAMRPC_RATE_BURST
	RateBurst int `env:"STREAMRPC_RATE_BURST,default=1"`
}

// ConfigFromEnv reads Config from the environment.
func ConfigFromEnv() (Config, error) {
	cfg := Config{ValidateResponses: true, RateBurst: 1}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode client config: %w", err)
	}
	return cfg, nil
}

// NewClientFromConfig creates a Client for conn from cfg. Extra options are
// applied after the ones derived from cfg.
func NewClientFromConfig(conn Connector, cfg Config, opts ...ClientOption) *Client {
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		opts = append([]ClientOption{WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst))}, opts...)
	}
	return NewClient(conn, cfg.ValidateResponses, opts...)
}

// NewClientFromEnv creates a Client for conn using envdecode to populate Config.
func NewClientFromEnv(conn Connector, opts ...ClientOption) (*Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewClientFromConfig(conn, cfg, opts...), nil
}
