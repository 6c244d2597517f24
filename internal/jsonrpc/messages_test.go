package jsonrpc

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewRequest_NotificationOmitsID(t *testing.T) {
	t.Parallel()

	req, err := NewRequest("log", map[string]any{"msg": "x"}, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), `"id"`) {
		t.Fatalf("notification must not carry an id: %s", b)
	}
	if req.Type() != "notification" {
		t.Fatalf("expected notification type, got %s", req.Type())
	}
}

func TestNewRequest_CallCarriesID(t *testing.T) {
	t.Parallel()

	req, err := NewRequest("ping", []any{}, NewRequestID(7))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	b, _ := json.Marshal(req)
	want := `{"jsonrpc":"2.0","method":"ping","params":[],"id":7}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func TestNewRequest_NilParamsOmitted(t *testing.T) {
	t.Parallel()

	req, _ := NewRequest("ping", nil, NewRequestID(1))
	b, _ := json.Marshal(req)
	if strings.Contains(string(b), "params") {
		t.Fatalf("expected params to be omitted: %s", b)
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "result without version", doc: `{"result":1,"id":1}`},
		{name: "full result", doc: `{"jsonrpc":"2.0","result":{"ok":true},"id":1}`},
		{name: "null result", doc: `{"jsonrpc":"2.0","result":null,"id":1}`},
		{name: "error", doc: `{"jsonrpc":"2.0","error":{"code":-32601,"message":"nope"},"id":1}`},
		{name: "null error with result", doc: `{"result":3,"error":null,"id":1}`},
		{name: "null id with error", doc: `{"jsonrpc":"2.0","error":{"code":-32700,"message":"parse"},"id":null}`},
		{name: "array", doc: `[1,2]`, wantErr: ErrNotObject},
		{name: "json null", doc: `null`, wantErr: ErrNotObject},
		{name: "bad version", doc: `{"jsonrpc":"1.0","result":1}`, wantErr: ErrVersionMismatch},
		{name: "both", doc: `{"result":1,"error":{"code":1,"message":"x"}}`, wantErr: ErrResultAndError},
		{name: "neither", doc: `{"id":1}`, wantErr: ErrNoResultOrError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseResponse([]byte(tt.doc))
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResponse_CheckID(t *testing.T) {
	t.Parallel()

	resp, err := ParseResponse([]byte(`{"result":1,"id":1}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if err := resp.CheckID(NewRequestID(1)); err != nil {
		t.Fatalf("expected ids to match: %v", err)
	}
	if err := resp.CheckID(NewRequestID(2)); !errors.Is(err, ErrIDMismatch) {
		t.Fatalf("expected ErrIDMismatch, got %v", err)
	}

	anon, _ := ParseResponse([]byte(`{"result":1}`))
	if err := anon.CheckID(NewRequestID(9)); err != nil {
		t.Fatalf("absent id must be accepted: %v", err)
	}

	str, _ := ParseResponse([]byte(`{"result":1,"id":"1"}`))
	if err := str.CheckID(NewRequestID(1)); err != nil {
		t.Fatalf("string id echo of integer should match: %v", err)
	}

	// Above 2^53 a float64 round trip would collapse this onto ...992.
	large, err := ParseResponse([]byte(`{"result":1,"id":9007199254740993}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if err := large.CheckID(NewRequestID(9007199254740993)); err != nil {
		t.Fatalf("large id echo should match: %v", err)
	}
	if err := large.CheckID(NewRequestID(9007199254740992)); !errors.Is(err, ErrIDMismatch) {
		t.Fatalf("expected ErrIDMismatch for neighbouring id, got %v", err)
	}
}

func TestRequestID_JSON(t *testing.T) {
	t.Parallel()

	var id RequestID
	if err := json.Unmarshal([]byte(`42`), &id); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if id.String() != "42" {
		t.Fatalf("expected 42, got %s", id.String())
	}
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Fatal("expected error for object id")
	}
	var nilID *RequestID
	b, _ := nilID.MarshalJSON()
	if string(b) != "null" {
		t.Fatalf("expected null, got %s", b)
	}
}
