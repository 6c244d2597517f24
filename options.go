package streamrpc

import (
	"log/slog"

	"github.com/ggoodman/streamrpc-go/internal/logctx"
	"github.com/ggoodman/streamrpc-go/sequence"
	"golang.org/x/time/rate"
)

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithLogHandler routes client diagnostics to h. Without it, logging is
// discarded.
func WithLogHandler(h slog.Handler) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.log = logctx.NewLogger(h)
		}
	}
}

// WithIDSource overrides how call ids are allocated.
func WithIDSource(s sequence.Source) ClientOption {
	return func(c *Client) {
		if s != nil {
			c.ids = s
		}
	}
}

// WithRateLimiter paces outgoing calls and notifications. Waiting honours the
// call's context.
func WithRateLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}
