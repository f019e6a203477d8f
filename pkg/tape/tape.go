// Package tape runs programs for an eight-command byte-tape machine.
//
// The command alphabet is > < + - . , [ ] and every other character is
// ignored. Cells hold bytes and wrap modulo 256. The tape starts at a minimum
// length and grows by one cell whenever the pointer moves past its end;
// moving left of the first cell is an error.
package tape

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// DefaultMinLength is the initial tape length.
const DefaultMinLength = 30000

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 1 << 16

// Machine executes tape programs. A Machine holds only configuration, so one
// value may run many programs concurrently.
type Machine struct {
	minLength int
	maxSteps  int
	logger    *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithMinLength sets the initial tape length. Values <= 0 keep the default.
func WithMinLength(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.minLength = n
		}
	}
}

// WithMaxSteps stops a run after n executed commands. Zero means no limit.
func WithMaxSteps(n int) Option {
	return func(m *Machine) { m.maxSteps = n }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// New creates a Machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		minLength: DefaultMinLength,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Filter strips every character that is not a command.
func Filter(src string) string {
	var sb strings.Builder
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '>', '<', '+', '-', '.', ',', '[', ']':
			sb.WriteByte(src[i])
		}
	}
	return sb.String()
}

// buildJumps pairs every bracket with its partner. Positions are indexes into
// the filtered command string.
func buildJumps(cmds string) ([]int, error) {
	jumps := make([]int, len(cmds))
	var stack []int
	for i := 0; i < len(cmds); i++ {
		switch cmds[i] {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				return nil, newError(CodeUnmatchedClose, msgUnmatchedClose, i)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[open] = i
			jumps[i] = open
		}
	}
	if len(stack) > 0 {
		return nil, newError(CodeUnmatchedOpen, msgUnmatchedOpen, stack[len(stack)-1])
	}
	return jumps, nil
}

// Validate checks bracket pairing without running the program.
func Validate(src string) error {
	_, err := buildJumps(Filter(src))
	return err
}

// Run executes src with the given input and returns the accumulated output.
// Each output cell becomes the character with that code point. Reading past
// the end of input stores 0.
func (m *Machine) Run(ctx context.Context, src, input string) (string, error) {
	cmds := Filter(src)
	jumps, err := buildJumps(cmds)
	if err != nil {
		return "", err
	}

	cells := make([]byte, m.minLength)
	in := []rune(input)
	var (
		out   strings.Builder
		ptr   int
		inPos int
		steps int
	)

	for pc := 0; pc < len(cmds); pc++ {
		steps++
		if m.maxSteps > 0 && steps > m.maxSteps {
			return out.String(), newError(CodeStepLimit, msgStepLimit, m.maxSteps)
		}
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return out.String(), err
			}
		}

		switch cmds[pc] {
		case '>':
			ptr++
			if ptr == len(cells) {
				cells = append(cells, 0)
			}
		case '<':
			if ptr == 0 {
				return out.String(), newError(CodeUnderflow, msgUnderflow)
			}
			ptr--
		case '+':
			cells[ptr]++
		case '-':
			cells[ptr]--
		case '.':
			out.WriteRune(rune(cells[ptr]))
		case ',':
			if inPos < len(in) {
				cells[ptr] = byte(in[inPos])
				inPos++
			} else {
				cells[ptr] = 0
			}
		case '[':
			if cells[ptr] == 0 {
				pc = jumps[pc]
			}
		case ']':
			if cells[ptr] != 0 {
				pc = jumps[pc]
			}
		}
	}

	m.logger.Debug("tape run finished", "commands", len(cmds), "steps", steps, "cells", len(cells))
	return out.String(), nil
}
