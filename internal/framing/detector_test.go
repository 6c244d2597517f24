package framing

import (
	"bytes"
	"testing"
)

func feedBytewise(t *testing.T, d *Detector, doc string) (completions int, at int) {
	t.Helper()
	at = -1
	for i := 0; i < len(doc); i++ {
		n, done := d.Feed([]byte{doc[i]})
		if done && n == 1 {
			completions++
			at = i
		}
	}
	return completions, at
}

func TestDetector_ObjectBytewise(t *testing.T) {
	t.Parallel()

	doc := `{"a":1}`
	d := New(0)
	completions, at := feedBytewise(t, d, doc)
	if completions != 1 {
		t.Fatalf("expected exactly one completion, got %d", completions)
	}
	if at != len(doc)-1 {
		t.Fatalf("expected completion on final byte, got index %d", at)
	}
	if d.Root() != Object {
		t.Fatalf("expected root object, got %s", d.Root())
	}
	if d.Forced() {
		t.Fatal("did not expect a forced completion")
	}
}

func TestDetector_NestedArray(t *testing.T) {
	t.Parallel()

	doc := `[1,[2,3],4]`
	d := New(0)
	for i := 0; i < len(doc)-1; i++ {
		if _, done := d.Feed([]byte{doc[i]}); done {
			t.Fatalf("completion reported early at index %d (%q)", i, doc[i])
		}
	}
	n, done := d.Feed([]byte{doc[len(doc)-1]})
	if !done || n != 1 {
		t.Fatalf("expected completion on last ']', got n=%d done=%v", n, done)
	}
	if d.Root() != Array {
		t.Fatalf("expected root array, got %s", d.Root())
	}
}

func TestDetector_ForeignDelimitersIgnored(t *testing.T) {
	t.Parallel()

	// Arrays inside an object do not affect object depth.
	d := New(0)
	doc := []byte(`{"a":[1,2,{"b":[]}],"c":{}}`)
	n, done := d.Feed(doc)
	if !done || n != len(doc) {
		t.Fatalf("expected completion at end, got n=%d done=%v", n, done)
	}
}

func TestDetector_LeadingNoiseAndTrailingBytes(t *testing.T) {
	t.Parallel()

	d := New(0)
	chunk := []byte(" \r\n}]{\"x\":1}{\"next\":2}")
	n, done := d.Feed(chunk)
	if !done {
		t.Fatal("expected completion")
	}
	want := len(" \r\n}]{\"x\":1}")
	if n != want {
		t.Fatalf("expected boundary at %d, got %d", want, n)
	}
	if got := chunk[:n]; !bytes.HasSuffix(got, []byte(`{"x":1}`)) {
		t.Fatalf("unexpected document prefix %q", got)
	}

	// After completion nothing more is consumed.
	n, done = d.Feed([]byte(`{"y":2}`))
	if n != 0 || !done {
		t.Fatalf("expected (0, true) after completion, got (%d, %v)", n, done)
	}
}

func TestDetector_SplitAcrossChunks(t *testing.T) {
	t.Parallel()

	d := New(0)
	parts := []string{`{"result":`, `{"k":[1,2]`, `},"id":1`, `}`}
	for i, p := range parts {
		n, done := d.Feed([]byte(p))
		last := i == len(parts)-1
		if done != last {
			t.Fatalf("chunk %d: done=%v want %v", i, done, last)
		}
		if n != len(p) {
			t.Fatalf("chunk %d: consumed %d want %d", i, n, len(p))
		}
	}
}

func TestDetector_NoOpenerNeverCompletes(t *testing.T) {
	t.Parallel()

	d := New(0)
	n, done := d.Feed([]byte(`   "just a string" 42 `))
	if done {
		t.Fatal("did not expect completion without an opener")
	}
	if n != len(`   "just a string" 42 `) || d.Root() != Undefined {
		t.Fatalf("unexpected state n=%d root=%s", n, d.Root())
	}
}

func TestDetector_DepthLimitForcesCompletion(t *testing.T) {
	t.Parallel()

	const limit = 8
	d := New(limit)
	openers := bytes.Repeat([]byte{'['}, limit+1)

	for i := 0; i < limit; i++ {
		if _, done := d.Feed(openers[i : i+1]); done {
			t.Fatalf("completion reported early at opener %d", i)
		}
	}
	if d.Depth() != limit {
		t.Fatalf("expected depth %d, got %d", limit, d.Depth())
	}

	n, done := d.Feed(openers[limit:])
	if !done || n != 1 {
		t.Fatalf("expected forced completion, got n=%d done=%v", n, done)
	}
	if !d.Forced() {
		t.Fatal("expected Forced() to report the ceiling")
	}
	if d.Root() != Undefined || d.Depth() != 0 {
		t.Fatalf("expected reset state, got root=%s depth=%d", d.Root(), d.Depth())
	}
}

func TestDetector_DefaultLimit(t *testing.T) {
	t.Parallel()

	d := New(-1)
	if d.Limit() != DefaultDepthLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultDepthLimit, d.Limit())
	}

	openers := bytes.Repeat([]byte{'{'}, DefaultDepthLimit+1)
	n, done := d.Feed(openers)
	if !done || !d.Forced() || n != len(openers) {
		t.Fatalf("expected forced completion on opener %d, got n=%d done=%v forced=%v", len(openers), n, done, d.Forced())
	}
}
