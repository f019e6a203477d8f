// Package engine runs PayJar programs and tape programs for the CLI.
// It applies configured limits and records each run in the history store.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/payjar/internal/state"
	"github.com/leapstack-labs/payjar/pkg/interpreter"
	"github.com/leapstack-labs/payjar/pkg/payjar"
)

// ErrHistoryDisabled is returned by history queries when no store is open.
var ErrHistoryDisabled = errors.New("run history is disabled")

// Config holds engine configuration.
type Config struct {
	// MaxCallDepth limits nested calls in PayJar programs (0 uses the interpreter default)
	MaxCallDepth int
	// TapeMinLength is the initial tape length (0 uses the machine default)
	TapeMinLength int
	// TapeMaxSteps limits executed tape commands (0 is unlimited)
	TapeMaxSteps int
	// HistoryPath is the SQLite history database; empty disables history
	HistoryPath string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine executes programs and keeps their history.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	store  state.Store
}

// New creates an engine, opening the history store when configured.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{cfg: cfg, logger: logger}
	if cfg.HistoryPath != "" {
		store, err := state.OpenAndMigrate(cfg.HistoryPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		e.store = store
	}

	logger.Debug("initialized engine",
		"history", cfg.HistoryPath,
		"max_call_depth", cfg.MaxCallDepth,
		"tape_max_steps", cfg.TapeMaxSteps)
	return e, nil
}

// Close releases the history store.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// HistoryEnabled reports whether runs are recorded.
func (e *Engine) HistoryEnabled() bool {
	return e.store != nil
}

// RunOptions configures a single program run.
type RunOptions struct {
	// Name identifies the source in logs and history
	Name string
	// Input feeds readln; nil makes readln return null
	Input interpreter.Input
	// Sink receives printed lines as they are emitted
	Sink interpreter.Sink
	// NoHistory skips recording this run
	NoHistory bool
}

// RunResult is a program run plus its history record ID, if recorded.
type RunResult struct {
	payjar.Result
	RunID    string
	Duration time.Duration
}

// RunSource executes a PayJar program.
func (e *Engine) RunSource(ctx context.Context, src string, opts RunOptions) RunResult {
	opts.Name = sourceName(opts.Name)
	e.logger.Debug("running program", "source", opts.Name)

	runOpts := []payjar.Option{
		payjar.WithLogger(e.logger),
		payjar.WithInput(opts.Input),
		payjar.WithMaxCallDepth(e.cfg.MaxCallDepth),
	}
	if opts.Sink != nil {
		runOpts = append(runOpts, payjar.WithSink(opts.Sink))
	}

	start := time.Now()
	res := payjar.Run(ctx, src, runOpts...)
	duration := time.Since(start)

	e.logOutcome("program finished", opts.Name, duration, res.Err)

	out := RunResult{Result: res, Duration: duration}
	if !opts.NoHistory {
		out.RunID = e.record(ctx, &state.Run{
			Engine:     state.EnginePayJar,
			Source:     opts.Name,
			SourceHash: hashSource(src),
			Status:     statusOf(res.Err),
			Output:     strings.Join(res.Output, "\n"),
			Error:      res.Message(),
			Warnings:   len(res.Warnings),
			StartedAt:  start.UTC(),
			Duration:   duration,
		})
	}
	return out
}

// TapeResult is a tape run plus its history record ID, if recorded.
type TapeResult struct {
	Output   string
	Err      error
	RunID    string
	Duration time.Duration
}

// RunTape executes a tape program with the given input text.
func (e *Engine) RunTape(ctx context.Context, name, commands, input string) TapeResult {
	name = sourceName(name)
	e.logger.Debug("running tape program", "source", name)

	start := time.Now()
	output, err := payjar.RunTape(ctx, commands, input,
		payjar.WithLogger(e.logger),
		payjar.WithTapeMinLength(e.cfg.TapeMinLength),
		payjar.WithTapeMaxSteps(e.cfg.TapeMaxSteps),
	)
	duration := time.Since(start)

	e.logOutcome("tape program finished", name, duration, err)

	var msg string
	if err != nil {
		msg = err.Error()
	}
	return TapeResult{
		Output:   output,
		Err:      err,
		Duration: duration,
		RunID: e.record(ctx, &state.Run{
			Engine:     state.EngineTape,
			Source:     name,
			SourceHash: hashSource(commands),
			Status:     statusOf(err),
			Output:     output,
			Error:      msg,
			StartedAt:  start.UTC(),
			Duration:   duration,
		}),
	}
}

// History lists recorded runs, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]*state.Run, error) {
	if e.store == nil {
		return nil, ErrHistoryDisabled
	}
	return e.store.ListRuns(ctx, limit)
}

// GetRun returns one recorded run by ID or unique ID prefix.
func (e *Engine) GetRun(ctx context.Context, id string) (*state.Run, error) {
	if e.store == nil {
		return nil, ErrHistoryDisabled
	}
	return e.store.GetRun(ctx, id)
}

// record stores run and returns its ID. Failures are logged, not returned:
// a broken history database must not change a program's outcome.
func (e *Engine) record(ctx context.Context, run *state.Run) string {
	if e.store == nil {
		return ""
	}
	if err := e.store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		e.logger.Warn("failed to record run", "source", run.Source, "error", err)
		return ""
	}
	return run.ID
}

func (e *Engine) logOutcome(msg, name string, duration time.Duration, err error) {
	attrs := []any{"source", name, "duration", duration}
	if err != nil {
		e.logger.Debug(msg, append(attrs, "status", state.RunStatusFailure, "error", err)...)
		return
	}
	e.logger.Debug(msg, append(attrs, "status", state.RunStatusSuccess)...)
}

func statusOf(err error) state.RunStatus {
	if err != nil {
		return state.RunStatusFailure
	}
	return state.RunStatusSuccess
}

func sourceName(name string) string {
	if name == "" {
		return "<stdin>"
	}
	return name
}

func hashSource(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}
