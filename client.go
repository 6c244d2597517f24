package streamrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ggoodman/streamrpc-go/internal/jsonrpc"
	"github.com/ggoodman/streamrpc-go/internal/logctx"
	"github.com/ggoodman/streamrpc-go/sequence"
	"github.com/ggoodman/streamrpc-go/sequence/memory"
	"golang.org/x/time/rate"
)

// Client issues JSON-RPC calls and notifications through a Connector.
type Client struct {
	conn     Connector
	validate bool
	ids      sequence.Source
	limiter  *rate.Limiter
	log      *slog.Logger
}

// NewClient creates a Client. When validate is true every response envelope
// is checked for consistency with its request before being returned.
func NewClient(conn Connector, validate bool, opts ...ClientOption) *Client {
	c := &Client{
		conn:     conn,
		validate: validate,
		ids:      memory.New(),
		log:      logctx.NewLogger(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call invokes method with the next id from the client's sequence and returns
// the raw response document. A response carrying an error member is returned
// as a document, not as an error; see CallResult.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id, err := c.ids.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate request id: %w", err)
	}
	return c.CallWithID(ctx, method, params, id)
}

// CallWithID invokes method using the caller's id.
func (c *Client) CallWithID(ctx context.Context, method string, params any, id int64) (json.RawMessage, error) {
	req, err := jsonrpc.NewRequest(method, params, jsonrpc.NewRequestID(id))
	if err != nil {
		return nil, err
	}
	raw, _, err := c.exchange(ctx, req)
	return raw, err
}

// CallResult invokes method and decodes the result member into result, which
// may be nil to discard it. A peer error is returned as *RemoteError.
// Responses are always parsed here, even when validation is off, since the
// result has to be located.
func (c *Client) CallResult(ctx context.Context, method string, params any, result any) error {
	id, err := c.ids.Next(ctx)
	if err != nil {
		return fmt.Errorf("allocate request id: %w", err)
	}
	req, err := jsonrpc.NewRequest(method, params, jsonrpc.NewRequestID(id))
	if err != nil {
		return err
	}

	raw, resp, err := c.exchange(ctx, req)
	if err != nil {
		return err
	}
	if resp == nil {
		if resp, err = jsonrpc.ParseResponse(raw); err != nil {
			return NewFault(FaultValidation, "call "+method, "", err)
		}
	}

	if resp.Error != nil {
		return &RemoteError{Code: int(resp.Error.Code), Message: resp.Error.Message, Data: resp.Error.Data}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("decode result of %s: %w", method, err)
	}
	return nil
}

// Notify sends method as a notification. Connectors implementing Notifier
// deliver it without waiting for a reply; others go through SendMessage and
// the reply, if any, is discarded.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	req, err := jsonrpc.NewRequest(method, params, nil)
	if err != nil {
		return err
	}
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: method, Type: req.Type()})

	b, err := c.encode(ctx, req)
	if err != nil {
		return err
	}

	if n, ok := c.conn.(Notifier); ok {
		err = n.SendNotification(ctx, b)
	} else {
		_, err = c.conn.SendMessage(ctx, b)
	}
	if err != nil {
		c.log.DebugContext(ctx, "notification failed", slog.String("err", err.Error()))
		return err
	}
	c.log.DebugContext(ctx, "notification sent")
	return nil
}

// exchange sends req and returns the raw reply. When validation is enabled the
// parsed response is returned as well.
func (c *Client) exchange(ctx context.Context, req *jsonrpc.Request) (json.RawMessage, *jsonrpc.Response, error) {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{
		Method: req.Method,
		ID:     req.ID.String(),
		Type:   req.Type(),
	})

	b, err := c.encode(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	raw, err := c.conn.SendMessage(ctx, b)
	if err != nil {
		c.log.DebugContext(ctx, "call failed", slog.String("err", err.Error()))
		return nil, nil, err
	}

	if !c.validate {
		return raw, nil, nil
	}

	resp, err := jsonrpc.ParseResponse(raw)
	if err == nil {
		err = resp.CheckID(req.ID)
	}
	if err != nil {
		c.log.WarnContext(ctx, "invalid response", slog.String("err", err.Error()))
		c.resync(ctx)
		return nil, nil, NewFault(FaultValidation, "call "+req.Method, "", err)
	}
	return raw, resp, nil
}

// resync drops the connector's socket, if it has one, so the next exchange
// does not read a reply that belongs to an earlier request.
func (c *Client) resync(ctx context.Context) {
	closer, ok := c.conn.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		c.log.DebugContext(ctx, "close after invalid response failed", slog.String("err", err.Error()))
	}
}

// encode waits for the rate limiter, if any, and serializes req.
func (c *Client) encode(ctx context.Context, req *jsonrpc.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", req.Type(), err)
	}
	c.log.DebugContext(ctx, "encoded envelope", slog.Int("bytes", len(b)))
	return b, nil
}
