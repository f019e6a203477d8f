// Package payjar is the embedding surface for the PayJar language and the
// tape machine.
//
// # Usage
//
//	res := payjar.Run(ctx, src)
//	for _, line := range res.Output {
//	    fmt.Println(line)
//	}
//	if !res.OK() {
//	    fmt.Fprintln(os.Stderr, res.Message())
//	}
//
// Run never panics and never writes to the terminal. Callers decide how to
// present output, warnings and the failure message.
package payjar

import (
	"context"
	"io"
	"log/slog"

	"github.com/leapstack-labs/payjar/pkg/interpreter"
	"github.com/leapstack-labs/payjar/pkg/parser"
	"github.com/leapstack-labs/payjar/pkg/tape"
)

// Result is the outcome of one run.
type Result struct {
	Output   []string // lines printed before completion or failure
	Warnings []string
	Err      error // nil on success
}

// OK reports whether the run completed without error.
func (r Result) OK() bool {
	return r.Err == nil
}

// Message returns the failure message, or "" on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

type options struct {
	logger       *slog.Logger
	input        interpreter.Input
	sink         interpreter.Sink
	maxCallDepth int
	tapeMinLen   int
	tapeMaxSteps int
}

// Option configures Run and RunTape.
type Option func(*options)

// WithLogger sets the logger passed to the engines.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithInput sets the line source for readln.
func WithInput(input interpreter.Input) Option {
	return func(o *options) { o.input = input }
}

// WithSink streams printed lines to s as they are emitted, in addition to
// collecting them in Result.Output.
func WithSink(s interpreter.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithMaxCallDepth limits nested calls.
func WithMaxCallDepth(n int) Option {
	return func(o *options) { o.maxCallDepth = n }
}

// WithTapeMinLength sets the initial tape length for RunTape.
func WithTapeMinLength(n int) Option {
	return func(o *options) { o.tapeMinLen = n }
}

// WithTapeMaxSteps limits the number of commands RunTape executes.
func WithTapeMaxSteps(n int) Option {
	return func(o *options) { o.tapeMaxSteps = n }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validate lexes and parses src without running it.
func Validate(src string) error {
	_, err := parser.Parse(src)
	return err
}

// Run parses and executes src with a fresh interpreter.
func Run(ctx context.Context, src string, opts ...Option) Result {
	o := buildOptions(opts)

	prog, err := parser.Parse(src)
	if err != nil {
		o.logger.Debug("parse failed", "error", err)
		return Result{Err: err}
	}

	buf := &interpreter.Buffer{}
	var sink interpreter.Sink = buf
	if o.sink != nil {
		sink = interpreter.SinkFunc(func(line string) {
			buf.Emit(line)
			o.sink.Emit(line)
		})
	}

	in := interpreter.New(
		interpreter.WithSink(sink),
		interpreter.WithInput(o.input),
		interpreter.WithLogger(o.logger),
		interpreter.WithMaxCallDepth(o.maxCallDepth),
	)
	err = in.Run(ctx, prog)

	return Result{
		Output:   buf.Lines(),
		Warnings: in.Warnings(),
		Err:      err,
	}
}

// RunTape executes a tape machine program and returns its output. Output
// produced before a runtime failure is returned along with the error.
func RunTape(ctx context.Context, commands, input string, opts ...Option) (string, error) {
	o := buildOptions(opts)
	m := tape.New(
		tape.WithMinLength(o.tapeMinLen),
		tape.WithMaxSteps(o.tapeMaxSteps),
		tape.WithLogger(o.logger),
	)
	return m.Run(ctx, commands, input)
}
