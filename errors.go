package streamrpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ggoodman/streamrpc-go/internal/jsonrpc"
)

// FaultKind classifies a failure of a connector or client operation.
type FaultKind int

const (
	// FaultConfiguration: the endpoint URL resolved to an empty host, or a
	// resource could not be set up at construction time.
	FaultConfiguration FaultKind = iota + 1
	// FaultConnection: every candidate address refused or was unreachable.
	FaultConnection
	// FaultTransport: short write, read error or peer close mid-exchange.
	FaultTransport
	// FaultFramingLimit: the nesting ceiling was hit; the payload is untrusted.
	FaultFramingLimit
	// FaultCapacity: the response did not fit the receive buffer.
	FaultCapacity
	// FaultValidation: the response envelope is malformed or does not match
	// the request.
	FaultValidation
)

// Sentinels matched by errors.Is against a *Fault of the corresponding kind.
var (
	ErrConfiguration = errors.New("configuration fault")
	ErrConnection    = errors.New("connection fault")
	ErrTransport     = errors.New("transport fault")
	ErrFramingLimit  = errors.New("framing limit fault")
	ErrCapacity      = errors.New("capacity fault")
	ErrValidation    = errors.New("envelope validation fault")
)

func (k FaultKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("fault(%d)", int(k))
}

func (k FaultKind) sentinel() error {
	switch k {
	case FaultConfiguration:
		return ErrConfiguration
	case FaultConnection:
		return ErrConnection
	case FaultTransport:
		return ErrTransport
	case FaultFramingLimit:
		return ErrFramingLimit
	case FaultCapacity:
		return ErrCapacity
	case FaultValidation:
		return ErrValidation
	}
	return nil
}

// Fault is the error type returned by connectors and the client. Use
// errors.Is with the Err* sentinels, or errors.As and inspect Kind.
type Fault struct {
	Kind FaultKind
	// Op names the failing operation, e.g. "connect" or "send".
	Op string
	// Endpoint is the host:port involved, when known.
	Endpoint string
	Err      error
}

// NewFault builds a Fault of the given kind.
func NewFault(kind FaultKind, op, endpoint string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Endpoint: endpoint, Err: err}
}

func (f *Fault) Error() string {
	msg := "streamrpc: " + f.Op
	if f.Endpoint != "" {
		msg += " " + f.Endpoint
	}
	msg += ": " + f.Kind.String()
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Fault) Unwrap() error { return f.Err }

// Is matches the sentinel for the fault's kind.
func (f *Fault) Is(target error) bool {
	s := f.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the FaultKind carried by err, or zero when err is not a Fault.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// RemoteError is an error object returned by the peer. It is a well-formed
// response, not a fault.
type RemoteError struct {
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("streamrpc: remote error %d (%s): %s", e.Code, jsonrpc.ErrorCode(e.Code), e.Message)
}
