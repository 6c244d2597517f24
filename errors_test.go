package streamrpc

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestFault_IsMatchesKindOnly(t *testing.T) {
	t.Parallel()

	kinds := map[FaultKind]error{
		FaultConfiguration: ErrConfiguration,
		FaultConnection:    ErrConnection,
		FaultTransport:     ErrTransport,
		FaultFramingLimit:  ErrFramingLimit,
		FaultCapacity:      ErrCapacity,
		FaultValidation:    ErrValidation,
	}

	for kind, sentinel := range kinds {
		f := NewFault(kind, "op", "", io.EOF)
		if !errors.Is(f, sentinel) {
			t.Fatalf("%s: expected match with its sentinel", kind)
		}
		if !errors.Is(f, io.EOF) {
			t.Fatalf("%s: expected wrapped cause to match", kind)
		}
		for other, s := range kinds {
			if other != kind && errors.Is(f, s) {
				t.Fatalf("%s unexpectedly matched %s", kind, other)
			}
		}
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("call: %w", NewFault(FaultCapacity, "receive", "localhost:8889", nil))
	if KindOf(wrapped) != FaultCapacity {
		t.Fatalf("expected capacity kind, got %v", KindOf(wrapped))
	}
	if KindOf(io.EOF) != 0 {
		t.Fatal("expected zero kind for non-fault")
	}
}

func TestFault_Error(t *testing.T) {
	t.Parallel()

	f := NewFault(FaultConnection, "connect", "localhost:8889", errors.New("refused"))
	msg := f.Error()
	for _, part := range []string{"connect", "localhost:8889", "connection fault", "refused"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("expected %q in %q", part, msg)
		}
	}
}

func TestRemoteError_Error(t *testing.T) {
	t.Parallel()

	err := &RemoteError{Code: -32601, Message: "no such method"}
	if got := err.Error(); !strings.Contains(got, "method not found") || !strings.Contains(got, "no such method") {
		t.Fatalf("unexpected message %q", got)
	}
	app := &RemoteError{Code: 42, Message: "busy"}
	if got := app.Error(); !strings.Contains(got, "application error") {
		t.Fatalf("unexpected message %q", got)
	}
}
