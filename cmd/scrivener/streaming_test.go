package main

import (
	"bytes"
	"testing"
)

func TestParseStreamMode(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"instant", "typewriter", "quiet"} {
		if _, err := ParseStreamMode(valid); err != nil {
			t.Errorf("ParseStreamMode(%q): %v", valid, err)
		}
	}
	if _, err := ParseStreamMode("smooth"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestStreamWriterInstant(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w := NewStreamWriter(StreamInstant, &out)
	w.WriteString("abc")
	text := w.Flush()
	if text != "abc" {
		t.Fatalf("accumulated %q", text)
	}
	if out.String() != "abc" {
		t.Fatalf("output %q", out.String())
	}
}

func TestStreamWriterTypewriterFlushesPerRune(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w := NewStreamWriter(StreamTypewriter, &out)
	w.WriteRune('x')
	if out.String() != "x" {
		t.Fatalf("expected immediate write, got %q", out.String())
	}
}

func TestStreamWriterQuietDefersOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w := NewStreamWriter(StreamQuiet, &out)
	w.WriteString("deferred")
	if out.Len() != 0 {
		t.Fatalf("quiet mode wrote early: %q", out.String())
	}
	if text := w.Flush(); text != "deferred" {
		t.Fatalf("accumulated %q", text)
	}
	if out.String() != "deferred" {
		t.Fatalf("flush output %q", out.String())
	}
}
