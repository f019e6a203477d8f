// Package interpreter executes PayJar programs by walking the syntax tree.
//
// An Interpreter owns every piece of run state: the scope stack, the function
// and class tables, the output sink and collected warnings. Create one per run;
// separate instances can run concurrently.
//
// Execution has two passes. Pass one hoists top-level function and class
// definitions, so they can be referenced before their textual position. Pass
// two executes the remaining top-level statements in order.
package interpreter

import (
	"context"
	"io"
	"log/slog"

	"github.com/leapstack-labs/payjar/pkg/ast"
)

// DefaultMaxCallDepth bounds nested calls when no limit is configured.
const DefaultMaxCallDepth = 2000

// Interpreter runs one program.
type Interpreter struct {
	scopes    *Scopes
	functions map[string]*ast.FuncDef
	classes   map[string]*Class

	sink     Sink
	input    Input
	logger   *slog.Logger
	warnings []string

	depth    int
	maxDepth int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithSink sets the output sink. The default discards output.
func WithSink(s Sink) Option {
	return func(in *Interpreter) { in.sink = s }
}

// WithInput sets the source readln reads from. Without one readln yields null.
func WithInput(input Input) Option {
	return func(in *Interpreter) { in.input = input }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithMaxCallDepth limits nested function and method calls. Values <= 0 keep the default.
func WithMaxCallDepth(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxDepth = n
		}
	}
}

// New creates an Interpreter with a fresh global scope.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		scopes:    NewScopes(),
		functions: map[string]*ast.FuncDef{},
		classes:   map[string]*Class{},
		sink:      SinkFunc(func(string) {}),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth:  DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Warnings returns the warnings collected so far.
func (in *Interpreter) Warnings() []string {
	return append([]string(nil), in.warnings...)
}

// Globals returns the global scope stack, for inspection after a run.
func (in *Interpreter) Globals() *Scopes {
	return in.scopes
}

// Run executes prog. Output emitted before a failure has already reached the sink.
// A return at the top level is recorded as a warning and execution continues.
func (in *Interpreter) Run(ctx context.Context, prog *ast.Program) (err error) {
	defer func() {
		if r := recover(); r != nil {
			in.logger.Error("interpreter panic", "panic", r)
			err = &InternalError{Panic: r}
		}
	}()

	if err := in.hoist(prog.Body); err != nil {
		return err
	}

	for _, stmt := range prog.Body {
		switch stmt.(type) {
		case *ast.FuncDef, *ast.ClassDef:
			continue
		}

		out, err := in.exec(ctx, stmt)
		if err != nil {
			return err
		}
		if out.returning {
			in.warnings = append(in.warnings, ReturnWarning)
			in.logger.Warn("return outside of a function ignored", "value", out.value.String())
		}
	}
	return nil
}

// hoist registers top-level function and class definitions.
func (in *Interpreter) hoist(body []ast.Node) error {
	for _, stmt := range body {
		switch def := stmt.(type) {
		case *ast.FuncDef:
			if _, exists := in.functions[def.Name]; exists {
				return newError(CodeDuplicateFunction, msgDuplicateFunction, def.Name)
			}
			in.functions[def.Name] = def
			in.logger.Debug("hoisted function", "name", def.Name, "params", len(def.Params))

		case *ast.ClassDef:
			if _, exists := in.classes[def.Name]; exists {
				return newError(CodeDuplicateClass, msgDuplicateClass, def.Name)
			}
			class, err := newClass(def)
			if err != nil {
				return err
			}
			in.classes[def.Name] = class
			in.logger.Debug("hoisted class", "name", def.Name, "fields", len(def.Fields), "methods", len(class.Methods))
		}
	}
	return nil
}
