package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Sink receives printed lines in order. It is the only output channel of a run.
type Sink interface {
	Emit(line string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(line string)

// Emit calls f(line).
func (f SinkFunc) Emit(line string) { f(line) }

// Buffer is a Sink that keeps every emitted line.
type Buffer struct {
	mu    sync.Mutex
	lines []string
}

// Emit appends line.
func (b *Buffer) Emit(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

// Lines returns a copy of the emitted lines.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// WriterSink writes each emitted line followed by a newline to w.
func WriterSink(w io.Writer) Sink {
	return SinkFunc(func(line string) {
		_, _ = fmt.Fprintln(w, line)
	})
}

// Input supplies lines to readln. ok is false once input is exhausted.
type Input interface {
	ReadLine(prompt string) (line string, ok bool)
}

// Lines is an Input over a fixed list of lines. The prompt is ignored.
type Lines struct {
	lines []string
	next  int
}

// NewLines returns an Input that yields lines in order.
func NewLines(lines ...string) *Lines {
	return &Lines{lines: lines}
}

// ReadLine returns the next line.
func (l *Lines) ReadLine(string) (string, bool) {
	if l.next >= len(l.lines) {
		return "", false
	}
	line := l.lines[l.next]
	l.next++
	return line, true
}

// ReaderInput reads newline separated input from r. The prompt is ignored.
func ReaderInput(r io.Reader) Input {
	return &scannerInput{scanner: bufio.NewScanner(r)}
}

type scannerInput struct {
	scanner *bufio.Scanner
}

func (s *scannerInput) ReadLine(string) (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}
	return strings.TrimSuffix(s.scanner.Text(), "\r"), true
}

// PromptInput reads lines from r, writing each non-empty prompt to w first.
func PromptInput(r io.Reader, w io.Writer) Input {
	return &promptInput{scannerInput: scannerInput{scanner: bufio.NewScanner(r)}, w: w}
}

type promptInput struct {
	scannerInput
	w io.Writer
}

func (p *promptInput) ReadLine(prompt string) (string, bool) {
	if prompt != "" {
		_, _ = fmt.Fprint(p.w, prompt)
	}
	return p.scannerInput.ReadLine(prompt)
}
