package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestID represents a JSON-RPC ID that can be either a string or a number.
// Requests built by this module always use integer ids; strings are accepted
// when decoding peer responses.
type RequestID struct {
	value interface{}
}

// NewRequestID creates a RequestID from an integer.
func NewRequestID(value int64) *RequestID {
	return &RequestID{value: value}
}

// String returns the string representation of the ID
func (id *RequestID) String() string {
	if id == nil || id.value == nil {
		return ""
	}

	switch v := id.value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		panic("unreachable: RequestID contains unsupported type")
	}
}

// IsNil returns true if the ID is nil/empty
func (id *RequestID) IsNil() bool {
	return id == nil || id.value == nil
}

// MarshalJSON implements json.Marshaler
func (id *RequestID) MarshalJSON() ([]byte, error) {
	if id.IsNil() {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler. Integer ids keep full int64
// precision; only non-integral numbers fall back to float64.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("JSON-RPC ID must be a string or number, got: %s", string(data))
	}

	switch v := v.(type) {
	case string:
		id.value = v
		return nil
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			id.value = n
			return nil
		}
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("JSON-RPC ID out of range: %s", v.String())
		}
		if f == float64(int64(f)) {
			id.value = int64(f)
		} else {
			id.value = f
		}
		return nil
	}

	return fmt.Errorf("JSON-RPC ID must be a string or number, got: %s", string(data))
}
