// Package state records program and tape runs in a SQLite history database.
package state

import (
	"context"
	"errors"
	"time"
)

// Engine names the interpreter that produced a run.
type Engine string

// Engines.
const (
	EnginePayJar Engine = "payjar"
	EngineTape   Engine = "tape"
)

// RunStatus is the outcome of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailure RunStatus = "failure"
)

// Run is one recorded execution.
type Run struct {
	ID         string
	Engine     Engine
	Source     string // file name or "<repl>"
	SourceHash string // hex SHA-256 of the source text
	Status     RunStatus
	Output     string
	Error      string
	Warnings   int
	StartedAt  time.Time
	Duration   time.Duration
}

// Store persists runs.
type Store interface {
	// RecordRun inserts run, assigning an ID when it has none.
	RecordRun(ctx context.Context, run *Run) error
	// GetRun returns the run whose ID is id or starts with id.
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Close() error
}

// Lookup errors.
var (
	ErrRunNotFound  = errors.New("run not found")
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)
