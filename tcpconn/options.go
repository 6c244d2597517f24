package tcpconn

import (
	"log/slog"
	"time"

	"github.com/ggoodman/streamrpc-go/internal/logctx"
)

// Option customizes a Connector.
type Option func(*Connector)

// WithLogHandler routes diagnostics to h. Without it, logging is discarded.
func WithLogHandler(h slog.Handler) Option {
	return func(c *Connector) {
		if h != nil {
			c.log = logctx.NewLogger(h)
		}
	}
}

// WithBufferCapacity sets the receive buffer size, which is also the largest
// response the connector accepts.
func WithBufferCapacity(n int) Option {
	return func(c *Connector) {
		c.bufferCapacity = n
	}
}

// WithDepthLimit sets the nesting ceiling of the framing detector.
func WithDepthLimit(n int) Option {
	return func(c *Connector) {
		c.depthLimit = n
	}
}

// WithDialTimeout bounds each candidate connection attempt. It has no effect
// when WithDialer is also used.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Connector) {
		c.dialTimeout = d
	}
}

// WithReadTimeout bounds each socket read.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Connector) {
		c.conn.readTimeout = d
	}
}

// WithWriteTimeout bounds each socket write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Connector) {
		c.conn.writeTimeout = d
	}
}

// WithResolver overrides candidate address lookup.
func WithResolver(r Resolver) Option {
	return func(c *Connector) {
		if r != nil {
			c.conn.resolver = r
		}
	}
}

// WithDialer overrides how candidate addresses are dialed.
func WithDialer(d Dialer) Option {
	return func(c *Connector) {
		if d != nil {
			c.conn.dialer = d
		}
	}
}
