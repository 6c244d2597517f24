// Package httpconn implements streamrpc.Connector over HTTP POST. HTTP already
// delimits messages, so no framing detector is involved; the response body is
// bounded by the same kind of capacity limit the stream connector applies.
package httpconn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/elnormous/contenttype"
	streamrpc "github.com/ggoodman/streamrpc-go"
	"github.com/ggoodman/streamrpc-go/endpoint"
	"github.com/ggoodman/streamrpc-go/internal/logctx"
)

// DefaultMaxResponseBytes bounds response bodies when no limit is configured.
const DefaultMaxResponseBytes = 1 << 20

var (
	_ streamrpc.Connector = (*Connector)(nil)
	_ streamrpc.Notifier  = (*Connector)(nil)
)

const jsonContentType = "application/json"

var jsonMediaType = contenttype.NewMediaType(jsonContentType)

var (
	errUnexpectedStatus    = errors.New("unexpected HTTP status")
	errUnsupportedResponse = errors.New("response is not application/json")
)

// Option customizes a Connector.
type Option func(*Connector)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Connector) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithMaxResponseBytes bounds the accepted response body size.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Connector) {
		if n > 0 {
			c.maxResponse = n
		}
	}
}

// WithLogHandler routes diagnostics to h. Without it, logging is discarded.
func WithLogHandler(h slog.Handler) Option {
	return func(c *Connector) {
		if h != nil {
			c.log = logctx.NewLogger(h)
		}
	}
}

// Connector POSTs each envelope to a fixed URL.
type Connector struct {
	hc          *http.Client
	maxResponse int64
	log         *slog.Logger

	mu  sync.Mutex
	url string
}

// New creates a Connector for url. URLs without a scheme get http://.
func New(rawURL string, opts ...Option) (*Connector, error) {
	c := &Connector{
		hc:          http.DefaultClient,
		maxResponse: DefaultMaxResponseBytes,
		log:         logctx.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Configure(rawURL); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure replaces the target URL.
func (c *Connector) Configure(rawURL string) error {
	if endpoint.Resolve(rawURL).IsZero() {
		return streamrpc.NewFault(streamrpc.FaultConfiguration, "configure", "", fmt.Errorf("url %q has no host", rawURL))
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return streamrpc.NewFault(streamrpc.FaultConfiguration, "configure", "", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return streamrpc.NewFault(streamrpc.FaultConfiguration, "configure", "", fmt.Errorf("unsupported scheme %q", u.Scheme))
	}

	c.mu.Lock()
	c.url = u.String()
	c.mu.Unlock()
	return nil
}

// URL returns the configured target.
func (c *Connector) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// SendMessage POSTs request and returns the response body.
func (c *Connector) SendMessage(ctx context.Context, request []byte) ([]byte, error) {
	target := c.URL()
	resp, err := c.post(ctx, target, request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	ctype, err := contenttype.GetMediaType(&http.Request{Header: resp.Header})
	if err != nil || !ctype.Matches(jsonMediaType) {
		return nil, streamrpc.NewFault(streamrpc.FaultTransport, "receive", target,
			fmt.Errorf("%w: %q", errUnsupportedResponse, resp.Header.Get("Content-Type")))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, streamrpc.NewFault(streamrpc.FaultTransport, "receive", target, err)
	}
	if int64(len(body)) > c.maxResponse {
		return nil, streamrpc.NewFault(streamrpc.FaultCapacity, "receive", target,
			fmt.Errorf("response exceeds %d bytes", c.maxResponse))
	}
	c.log.DebugContext(ctx, "got response", slog.String("url", target), slog.Int("bytes", len(body)))
	return body, nil
}

// SendNotification POSTs request and discards any body.
func (c *Connector) SendNotification(ctx context.Context, request []byte) error {
	target := c.URL()
	resp, err := c.post(ctx, target, request)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxResponse))
	return resp.Body.Close()
}

func (c *Connector) post(ctx context.Context, target string, request []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(request))
	if err != nil {
		return nil, streamrpc.NewFault(streamrpc.FaultConfiguration, "send", target, err)
	}
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("Accept", jsonContentType)

	c.log.DebugContext(ctx, "sending request", slog.String("url", target), slog.Int("bytes", len(request)))
	resp, err := c.hc.Do(req)
	if err != nil {
		var oe *net.OpError
		if errors.As(err, &oe) && oe.Op == "dial" {
			return nil, streamrpc.NewFault(streamrpc.FaultConnection, "connect", target, err)
		}
		return nil, streamrpc.NewFault(streamrpc.FaultTransport, "send", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxResponse))
		_ = resp.Body.Close()
		return nil, streamrpc.NewFault(streamrpc.FaultTransport, "send", target,
			fmt.Errorf("%w: %s", errUnexpectedStatus, resp.Status))
	}
	return resp, nil
}
