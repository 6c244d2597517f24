package tcpconn

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	streamrpc "github.com/ggoodman/streamrpc-go"
	"github.com/ggoodman/streamrpc-go/endpoint"
	"github.com/ggoodman/streamrpc-go/internal/framing"
	"github.com/ggoodman/streamrpc-go/internal/logctx"
)

const (
	// DefaultBufferCapacity is the receive buffer size, and so the largest
	// response accepted, when none is configured.
	DefaultBufferCapacity = 4096
	// MinBufferCapacity is the threshold a configured capacity must exceed;
	// smaller values select DefaultBufferCapacity.
	MinBufferCapacity = 64
	// MaxBufferCapacity bounds the buffer allocated at construction.
	MaxBufferCapacity = 64 << 20
)

var (
	_ streamrpc.Connector = (*Connector)(nil)
	_ streamrpc.Notifier  = (*Connector)(nil)
)

// Connector is a streamrpc.Connector over a TCP byte stream.
type Connector struct {
	bufferCapacity int
	depthLimit     int
	dialTimeout    time.Duration
	log            *slog.Logger

	// mu serializes exchanges and reconfiguration. It also guards buf.
	mu   sync.Mutex
	buf  []byte
	conn *connection
}

// New creates a Connector targeting url and allocates its receive buffer. An
// empty url leaves the connector unconfigured; Configure must then be called
// before the first exchange.
func New(url string, opts ...Option) (*Connector, error) {
	c := &Connector{
		bufferCapacity: DefaultBufferCapacity,
		depthLimit:     framing.DefaultDepthLimit,
		conn:           &connection{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.bufferCapacity <= MinBufferCapacity {
		c.bufferCapacity = DefaultBufferCapacity
	}
	if c.bufferCapacity > MaxBufferCapacity {
		return nil, streamrpc.NewFault(streamrpc.FaultConfiguration, "new", "",
			fmt.Errorf("buffer capacity %d exceeds maximum %d", c.bufferCapacity, MaxBufferCapacity))
	}
	if c.depthLimit <= 0 {
		c.depthLimit = framing.DefaultDepthLimit
	}
	if c.log == nil {
		c.log = logctx.NewLogger(nil)
	}
	if c.conn.resolver == nil {
		c.conn.resolver = net.DefaultResolver
	}
	if c.conn.dialer == nil {
		c.conn.dialer = &net.Dialer{Timeout: c.dialTimeout}
	}
	c.conn.log = c.log

	if url != "" {
		ep := endpoint.Resolve(url)
		if ep.IsZero() {
			return nil, streamrpc.NewFault(streamrpc.FaultConfiguration, "new", "", fmt.Errorf("url %q has no host", url))
		}
		c.conn.ep = ep
	}

	c.buf = make([]byte, c.bufferCapacity)
	return c, nil
}

// Configure points the connector at url. A socket open to a different
// endpoint is closed.
func (c *Connector) Configure(url string) error {
	ep := endpoint.Resolve(url)
	if ep.IsZero() {
		return streamrpc.NewFault(streamrpc.FaultConfiguration, "configure", "", fmt.Errorf("url %q has no host", url))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.setEndpoint(ep)
	c.log.Debug("configured", slog.String("url", url), slog.String("endpoint", ep.String()))
	return nil
}

// Endpoint returns the configured endpoint.
func (c *Connector) Endpoint() endpoint.Endpoint {
	return c.conn.endpoint()
}

// State reports whether the socket is currently open.
func (c *Connector) State() State {
	return c.conn.state()
}

// BufferCapacity returns the largest response, in bytes, the connector accepts.
func (c *Connector) BufferCapacity() int {
	return c.bufferCapacity
}

// Close closes the socket. It may be called while an exchange is blocked in
// another goroutine; that exchange then fails with a transport fault. The
// connector stays usable and reconnects on the next exchange.
func (c *Connector) Close() error {
	c.conn.disconnect()
	return nil
}

// SendMessage connects if needed, writes request and returns the first
// complete JSON document read back. Bytes following the document in the same
// read are discarded.
func (c *Connector) SendMessage(ctx context.Context, request []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.connect(ctx); err != nil {
		return nil, err
	}
	ctx = c.conn.logContext(ctx)
	c.log.DebugContext(ctx, "sending request", slog.Int("bytes", len(request)))

	if err := c.conn.send(ctx, request); err != nil {
		c.log.DebugContext(ctx, "send failed", slog.String("err", err.Error()))
		return nil, err
	}

	resp, err := c.receive(ctx)
	if err != nil {
		c.log.DebugContext(ctx, "receive failed", slog.String("err", err.Error()))
		return nil, err
	}
	c.log.DebugContext(ctx, "got response", slog.Int("bytes", len(resp)))
	return resp, nil
}

// SendNotification connects if needed and writes request without waiting for
// a reply.
func (c *Connector) SendNotification(ctx context.Context, request []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.connect(ctx); err != nil {
		return err
	}
	ctx = c.conn.logContext(ctx)
	c.log.DebugContext(ctx, "sending notification", slog.Int("bytes", len(request)))
	return c.conn.send(ctx, request)
}

// receive fills the buffer until the detector sees the end of the document.
func (c *Connector) receive(ctx context.Context) ([]byte, error) {
	det := framing.New(c.depthLimit)
	ep := c.conn.endpoint().String()
	n := 0

	for {
		if n == len(c.buf) {
			c.conn.disconnect()
			return nil, streamrpc.NewFault(streamrpc.FaultCapacity, "receive", ep,
				fmt.Errorf("response exceeds %d byte buffer", len(c.buf)))
		}

		m, err := c.conn.receive(ctx, c.buf[n:])
		if err != nil {
			return nil, err
		}

		used, done := det.Feed(c.buf[n : n+m])
		if !done {
			n += m
			continue
		}

		if det.Forced() {
			c.conn.disconnect()
			return nil, streamrpc.NewFault(streamrpc.FaultFramingLimit, "receive", ep,
				fmt.Errorf("nesting deeper than %d", det.Limit()))
		}
		if dropped := m - used; dropped > 0 {
			c.log.WarnContext(ctx, "discarding bytes after response", slog.Int("bytes", dropped))
		}

		end := n + used
		out := make([]byte, end)
		copy(out, c.buf[:end])
		return out, nil
	}
}
