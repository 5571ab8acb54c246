package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderer_BasicTokens(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "  ")
	cb := r.Callbacks()
	cb.OnDelta("hello")
	cb.OnDelta(" world")
	cb.OnDone()

	if r.Text() != "hello world" {
		t.Errorf("expected 'hello world', got %q", r.Text())
	}
	if !r.Done() {
		t.Error("expected Done after OnDone")
	}
	// Output should start with the prefix.
	if !strings.HasPrefix(buf.String(), "  hello") {
		t.Errorf("expected output to start with prefix, got %q", buf.String())
	}
}

func TestRenderer_EmptyPrefix(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "")
	cb := r.Callbacks()
	cb.OnDelta("test")
	cb.OnDone()

	if strings.HasPrefix(buf.String(), " ") {
		t.Error("empty prefix should not add leading space")
	}
}

func TestRenderer_Error(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "")
	cb := r.Callbacks()
	cb.OnDelta("partial")
	cb.OnError("stream broke")

	if r.Done() {
		t.Error("Done should be false after OnError")
	}
	if r.Err() != "stream broke" {
		t.Errorf("expected 'stream broke', got %q", r.Err())
	}
	if r.Text() != "partial" {
		t.Errorf("expected partial 'partial', got %q", r.Text())
	}
}

func TestRenderer_NoDeltas(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ">> ")
	r.Callbacks().OnDone()

	if r.Text() != "" {
		t.Errorf("expected empty result, got %q", r.Text())
	}
	if strings.Contains(buf.String(), ">>") {
		t.Errorf("prefix should not be written without deltas, got %q", buf.String())
	}
}

func TestRenderer_AddsTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "")
	cb := r.Callbacks()
	cb.OnDelta("no newline at end")
	cb.OnDone()

	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("output should end with newline")
	}
}

func TestRenderer_PreservesExistingNewline(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "")
	cb := r.Callbacks()
	cb.OnDelta("ends with newline\n")
	cb.OnDone()

	// Should not double-newline.
	if strings.HasSuffix(buf.String(), "\n\n\n") {
		t.Errorf("should not triple-newline, got %q", buf.String())
	}
}

func TestRenderer_OnFirstRunsOnce(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	r := NewRenderer(&buf, "")
	r.OnFirst = func() { calls++ }
	cb := r.Callbacks()
	cb.OnDelta("a")
	cb.OnDelta("b")
	cb.OnDone()

	if calls != 1 {
		t.Errorf("expected OnFirst once, got %d", calls)
	}
}

func TestRenderer_OnFirstRunsOnErrorWithoutDeltas(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	r := NewRenderer(&buf, "")
	r.OnFirst = func() { calls++ }
	r.Callbacks().OnError("boom")

	if calls != 1 {
		t.Errorf("expected OnFirst once, got %d", calls)
	}
}

func TestRenderer_MultipleTokensConcatenate(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "")
	cb := r.Callbacks()
	for _, tok := range []string{"a", "b", "c", "d", "e"} {
		cb.OnDelta(tok)
	}
	cb.OnDone()

	if r.Text() != "abcde" {
		t.Errorf("expected 'abcde', got %q", r.Text())
	}
}
