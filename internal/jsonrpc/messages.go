package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

var (
	// ErrNotObject indicates the response document is not a JSON object.
	ErrNotObject = errors.New("response is not a JSON object")
	// ErrVersionMismatch indicates a jsonrpc member other than ProtocolVersion.
	ErrVersionMismatch = errors.New("unsupported jsonrpc version")
	// ErrResultAndError indicates a response carrying both result and error.
	ErrResultAndError = errors.New("response cannot have both result and error fields")
	// ErrNoResultOrError indicates a response carrying neither result nor error.
	ErrNoResultOrError = errors.New("response must have either result or error field")
	// ErrIDMismatch indicates a response whose id does not echo the request id.
	ErrIDMismatch = errors.New("response id does not match request id")
)

// Request represents a JSON-RPC request (with an ID) or notification (without ID).
type Request struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Method         string          `json:"method"`
	Params         json.RawMessage `json:"params,omitempty"`
	ID             *RequestID      `json:"id,omitempty"`
}

// NewRequest builds a request envelope. A nil id produces a notification.
func NewRequest(method string, params any, id *RequestID) (*Request, error) {
	var paramsRaw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		paramsRaw = b
	}
	return &Request{
		JSONRPCVersion: ProtocolVersion,
		Method:         method,
		Params:         paramsRaw,
		ID:             id,
	}, nil
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return r.ID.IsNil()
}

// Type returns "notification" or "request".
func (r *Request) Type() string {
	if r.IsNotification() {
		return "notification"
	}
	return "request"
}

// Response represents a JSON-RPC response.
type Response struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *Error          `json:"error,omitempty"`
	ID             *RequestID      `json:"id,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ParseResponse decodes data as a response envelope and checks that it is
// internally consistent: a JSON object, an optional jsonrpc member equal to
// ProtocolVersion, and exactly one of result or error. An error member that is
// JSON null counts as absent.
func ParseResponse(data []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		if err == nil {
			return nil, ErrNotObject
		}
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}

	resp := &Response{}

	if raw, ok := fields["jsonrpc"]; ok {
		if err := json.Unmarshal(raw, &resp.JSONRPCVersion); err != nil || resp.JSONRPCVersion != ProtocolVersion {
			return nil, fmt.Errorf("%w: %s", ErrVersionMismatch, string(raw))
		}
	}

	resultRaw, hasResult := fields["result"]
	errorRaw, hasError := fields["error"]
	if hasError && isNull(errorRaw) {
		hasError = false
	}

	switch {
	case hasResult && hasError:
		return nil, ErrResultAndError
	case !hasResult && !hasError:
		return nil, ErrNoResultOrError
	}

	if hasResult {
		resp.Result = resultRaw
	}
	if hasError {
		var e Error
		if err := json.Unmarshal(errorRaw, &e); err != nil {
			return nil, fmt.Errorf("invalid error member: %w", err)
		}
		resp.Error = &e
	}

	if raw, ok := fields["id"]; ok && !isNull(raw) {
		id := &RequestID{}
		if err := id.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		resp.ID = id
	}

	return resp, nil
}

// CheckID verifies that the response id, when present, echoes want.
func (r *Response) CheckID(want *RequestID) error {
	if r.ID.IsNil() {
		return nil
	}
	if want.IsNil() || r.ID.String() != want.String() {
		return fmt.Errorf("%w: got %s, want %s", ErrIDMismatch, r.ID.String(), want.String())
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
