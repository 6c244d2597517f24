package tcpconn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	streamrpc "github.com/ggoodman/streamrpc-go"
	"github.com/ggoodman/streamrpc-go/endpoint"
	"github.com/ggoodman/streamrpc-go/internal/logctx"
	"github.com/google/uuid"
)

// State is the lifecycle state of the connector's socket.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Resolver looks up the candidate addresses of a host.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Dialer opens a connection to one candidate address.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

var (
	errEmptyHost    = errors.New("empty host")
	errNoCandidates = errors.New("host resolved to no addresses")
	errNotConnected = errors.New("not connected")
	errPeerClosed   = errors.New("peer closed connection")
)

// aLongTimeAgo is used as a deadline to unblock pending I/O.
var aLongTimeAgo = time.Unix(1, 0)

// connection owns one socket and its endpoint.
type connection struct {
	resolver     Resolver
	dialer       Dialer
	readTimeout  time.Duration
	writeTimeout time.Duration
	log          *slog.Logger

	mu sync.Mutex
	ep endpoint.Endpoint
	nc net.Conn
	id string
}

func (c *connection) endpoint() endpoint.Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ep
}

// setEndpoint replaces the endpoint, dropping a socket opened to a different one.
func (c *connection) setEndpoint(ep endpoint.Endpoint) {
	c.mu.Lock()
	changed := c.ep != ep
	c.ep = ep
	c.mu.Unlock()
	if changed {
		c.disconnect()
	}
}

func (c *connection) state() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nc != nil {
		return Connected
	}
	return Disconnected
}

func (c *connection) current() (net.Conn, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nc, c.id
}

// logContext attaches connection data for logctx.Handler.
func (c *connection) logContext(ctx context.Context) context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	cd := &logctx.ConnData{ConnID: c.id, Endpoint: c.ep.String()}
	if c.nc != nil {
		cd.RemoteAddr = c.nc.RemoteAddr().String()
	}
	return logctx.WithConnData(ctx, cd)
}

// connect opens the socket unless it is already open. Candidates are tried in
// resolution order and the first accepted connection wins.
func (c *connection) connect(ctx context.Context) error {
	c.mu.Lock()
	if c.nc != nil {
		c.mu.Unlock()
		return nil
	}
	ep := c.ep
	c.mu.Unlock()

	if ep.IsZero() {
		return streamrpc.NewFault(streamrpc.FaultConfiguration, "connect", "", errEmptyHost)
	}

	addrs, err := c.resolver.LookupHost(ctx, ep.Host)
	if err != nil {
		c.log.DebugContext(ctx, "resolve failed", slog.String("endpoint", ep.String()), slog.String("err", err.Error()))
		return streamrpc.NewFault(streamrpc.FaultConnection, "connect", ep.String(), err)
	}

	lastErr := errNoCandidates
	for _, addr := range addrs {
		target := net.JoinHostPort(addr, ep.Port)
		c.log.DebugContext(ctx, "trying candidate", slog.String("addr", target))

		nc, err := c.dialer.DialContext(ctx, "tcp", target)
		if err != nil {
			lastErr = err
			continue
		}

		c.mu.Lock()
		c.nc = nc
		c.id = uuid.NewString()
		c.mu.Unlock()

		c.log.DebugContext(c.logContext(ctx), "connected")
		return nil
	}

	c.log.DebugContext(ctx, "could not connect", slog.String("endpoint", ep.String()), slog.String("err", lastErr.Error()))
	return streamrpc.NewFault(streamrpc.FaultConnection, "connect", ep.String(), lastErr)
}

// disconnect closes the socket. Close errors on a half-closed or broken
// socket are not failures of disconnect.
func (c *connection) disconnect() {
	c.mu.Lock()
	nc, id := c.nc, c.id
	c.nc, c.id = nil, ""
	c.mu.Unlock()
	if nc == nil {
		return
	}

	if tc, ok := nc.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	if err := nc.Close(); err != nil {
		c.log.Debug("close failed", slog.String("conn_id", id), slog.String("err", err.Error()))
		return
	}
	c.log.Debug("disconnected", slog.String("conn_id", id))
}

// send writes all of p. Any failure, including a short write, disconnects.
func (c *connection) send(ctx context.Context, p []byte) error {
	nc, _ := c.current()
	ep := c.endpoint().String()
	if nc == nil {
		return streamrpc.NewFault(streamrpc.FaultTransport, "send", ep, errNotConnected)
	}

	stop := interruptOnDone(ctx, nc)
	defer stop()

	if err := nc.SetWriteDeadline(deadline(ctx, c.writeTimeout)); err != nil {
		c.disconnect()
		return streamrpc.NewFault(streamrpc.FaultTransport, "send", ep, err)
	}

	n, err := nc.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		c.disconnect()
		return streamrpc.NewFault(streamrpc.FaultTransport, "send", ep, withContext(ctx, err))
	}
	return nil
}

// receive reads at most len(buf) bytes. A zero-byte read or EOF means the
// peer closed the connection.
func (c *connection) receive(ctx context.Context, buf []byte) (int, error) {
	nc, _ := c.current()
	ep := c.endpoint().String()
	if nc == nil {
		return 0, streamrpc.NewFault(streamrpc.FaultTransport, "receive", ep, errNotConnected)
	}

	stop := interruptOnDone(ctx, nc)
	defer stop()

	if err := nc.SetReadDeadline(deadline(ctx, c.readTimeout)); err != nil {
		c.disconnect()
		return 0, streamrpc.NewFault(streamrpc.FaultTransport, "receive", ep, err)
	}

	n, err := nc.Read(buf)
	if n > 0 {
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = errPeerClosed
	}
	c.disconnect()
	return 0, streamrpc.NewFault(streamrpc.FaultTransport, "receive", ep, withContext(ctx, err))
}

// interruptOnDone forces pending I/O on nc to fail once ctx is done.
func interruptOnDone(ctx context.Context, nc net.Conn) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		_ = nc.SetDeadline(aLongTimeAgo)
	})
}

// deadline returns the earlier of the context deadline and now+timeout. The
// zero time means no deadline.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	var d time.Time
	if timeout > 0 {
		d = time.Now().Add(timeout)
	}
	if cd, ok := ctx.Deadline(); ok && (d.IsZero() || cd.Before(d)) {
		d = cd
	}
	return d
}

// withContext attaches the context error so callers can match it with errors.Is.
// A socket deadline derived from ctx can expire just before ctx reports it.
func withContext(ctx context.Context, err error) error {
	cerr := ctx.Err()
	if cerr == nil {
		if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
			cerr = context.DeadlineExceeded
		}
	}
	if cerr != nil && !errors.Is(err, cerr) {
		return fmt.Errorf("%w: %w", cerr, err)
	}
	return err
}
