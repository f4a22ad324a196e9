package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type StreamMode string

const (
	StreamInstant    StreamMode = "instant"
	StreamTypewriter StreamMode = "typewriter"
	StreamQuiet      StreamMode = "quiet"
)

// ParseStreamMode validates a stream mode name.
func ParseStreamMode(s string) (StreamMode, error) {
	switch StreamMode(s) {
	case StreamInstant, StreamTypewriter, StreamQuiet:
		return StreamMode(s), nil
	default:
		return "", fmt.Errorf("unknown stream mode %q (instant, typewriter, quiet)", s)
	}
}

// StreamWriter handles generated character output with configurable
// modes: instant buffers through bufio, typewriter flushes per character,
// quiet accumulates and prints everything on Flush.
type StreamWriter struct {
	mode        StreamMode
	output      io.Writer
	buffer      *bufio.Writer
	accumulator strings.Builder
}

func NewStreamWriter(mode StreamMode, out io.Writer) *StreamWriter {
	return &StreamWriter{
		mode:   mode,
		output: out,
		buffer: bufio.NewWriterSize(out, 4096),
	}
}

// WriteRune handles a single generated character.
func (w *StreamWriter) WriteRune(r rune) {
	w.accumulator.WriteRune(r)
	switch w.mode {
	case StreamQuiet:
	case StreamTypewriter:
		_, _ = w.buffer.WriteRune(r)
		_ = w.buffer.Flush()
	default:
		_, _ = w.buffer.WriteRune(r)
	}
}

// WriteString handles a chunk of text, typically the echoed seed.
func (w *StreamWriter) WriteString(s string) {
	for _, r := range s {
		w.WriteRune(r)
	}
}

// Flush writes anything still buffered and returns the full accumulated
// text. In quiet mode this is where the output appears.
func (w *StreamWriter) Flush() string {
	text := w.accumulator.String()
	if w.mode == StreamQuiet {
		fmt.Fprint(w.output, text)
		return text
	}
	_ = w.buffer.Flush()
	return text
}
