// Package sequence provides request id allocation for JSON-RPC calls.
//
// Ids must be distinguishable from notifications (which carry none) and should
// be monotonic per source. The memory implementation serves a single process;
// the redis implementation shares one counter between processes that talk to
// the same peer and want globally unique ids in its logs.
package sequence

import "context"

// Source hands out request ids.
type Source interface {
	// Next returns the next id. Implementations never return zero.
	Next(ctx context.Context) (int64, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (int64, error)

func (f Func) Next(ctx context.Context) (int64, error) { return f(ctx) }
