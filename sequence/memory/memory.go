// Package memory provides a process-local sequence.Source backed by an atomic
// counter.
package memory

import (
	"context"
	"sync/atomic"

	"github.com/ggoodman/streamrpc-go/sequence"
)

var _ sequence.Source = (*Counter)(nil)

// Counter yields 1, 2, 3, ...
type Counter struct {
	last atomic.Int64
}

// New creates a Counter whose first id is 1.
func New() *Counter {
	return &Counter{}
}

// NewFrom creates a Counter whose first id is start+1.
func NewFrom(start int64) *Counter {
	c := &Counter{}
	c.last.Store(start)
	return c
}

// Next returns the next id.
func (c *Counter) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.last.Add(1), nil
}
