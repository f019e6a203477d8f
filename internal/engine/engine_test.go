package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/payjar/internal/state"
	"github.com/leapstack-labs/payjar/internal/testutil"
	"github.com/leapstack-labs/payjar/pkg/interpreter"
	"github.com/leapstack-labs/payjar/pkg/parser"
	"github.com/leapstack-labs/payjar/pkg/tape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	cfg.Logger = testutil.NewTestLogger(t)
	eng, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func withHistory(t *testing.T) Config {
	t.Helper()
	return Config{HistoryPath: filepath.Join(t.TempDir(), "history.db")}
}

func TestEngine_RunSource(t *testing.T) {
	eng := newTestEngine(t, withHistory(t))
	ctx := context.Background()

	var streamed []string
	res := eng.RunSource(ctx, testutil.Program(`let name = readln(); println(`+"`Hi ${name}`"+`); println(1 / 0);`), RunOptions{
		Name:  "greet.pj",
		Input: interpreter.NewLines("World"),
		Sink:  interpreter.SinkFunc(func(line string) { streamed = append(streamed, line) }),
	})

	require.ErrorIs(t, res.Err, interpreter.ErrDivisionByZero)
	assert.Equal(t, []string{"Hi World"}, res.Output)
	assert.Equal(t, res.Output, streamed)
	require.NotEmpty(t, res.RunID)

	run, err := eng.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, state.EnginePayJar, run.Engine)
	assert.Equal(t, "greet.pj", run.Source)
	assert.Equal(t, state.RunStatusFailure, run.Status)
	assert.Equal(t, "Hi World", run.Output)
	assert.Equal(t, "Runtime Error: Division by zero", run.Error)
	assert.Len(t, run.SourceHash, 64)
}

func TestEngine_RunSource_Warnings(t *testing.T) {
	eng := newTestEngine(t, withHistory(t))
	ctx := context.Background()

	res := eng.RunSource(ctx, testutil.Program("println(1); return 2;"), RunOptions{})
	require.True(t, res.OK())
	assert.Equal(t, []string{interpreter.ReturnWarning}, res.Warnings)

	run, err := eng.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, "<stdin>", run.Source)
	assert.Equal(t, 1, run.Warnings)
	assert.Equal(t, state.RunStatusSuccess, run.Status)
}

func TestEngine_RunSource_NoHistory(t *testing.T) {
	eng := newTestEngine(t, withHistory(t))
	ctx := context.Background()

	res := eng.RunSource(ctx, testutil.Program("println(1);"), RunOptions{NoHistory: true})
	require.True(t, res.OK())
	assert.Empty(t, res.RunID)

	runs, err := eng.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestEngine_MaxCallDepth(t *testing.T) {
	eng := newTestEngine(t, Config{MaxCallDepth: 5})
	res := eng.RunSource(context.Background(), testutil.Program("func f() { return f(); } f();"), RunOptions{})
	require.ErrorIs(t, res.Err, interpreter.ErrCallDepth)
	assert.Empty(t, res.RunID)
}

func TestEngine_RunTape(t *testing.T) {
	eng := newTestEngine(t, withHistory(t))
	ctx := context.Background()

	res := eng.RunTape(ctx, "echo.bf", ",[.,]", "hey")
	require.NoError(t, res.Err)
	assert.Equal(t, "hey", res.Output)

	failed := eng.RunTape(ctx, "bad.bf", "+]", "")
	require.ErrorIs(t, failed.Err, tape.ErrUnmatchedClose)

	runs, err := eng.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, state.EngineTape, run.Engine)
	}

	run, err := eng.GetRun(ctx, failed.RunID)
	require.NoError(t, err)
	assert.Equal(t, "Syntax Error: Unmatched ']' at position 1", run.Error)
}

func TestEngine_RunTape_StepLimit(t *testing.T) {
	eng := newTestEngine(t, Config{TapeMaxSteps: 50})
	res := eng.RunTape(context.Background(), "", "+[]", "")
	require.ErrorIs(t, res.Err, tape.ErrStepLimit)
}

func TestEngine_HistoryDisabled(t *testing.T) {
	eng := newTestEngine(t, Config{})
	ctx := context.Background()

	assert.False(t, eng.HistoryEnabled())
	_, err := eng.History(ctx, 10)
	require.ErrorIs(t, err, ErrHistoryDisabled)
	_, err = eng.GetRun(ctx, "abc")
	require.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestEngine_CheckFiles(t *testing.T) {
	eng := newTestEngine(t, Config{})
	dir := t.TempDir()

	good := testutil.WriteSource(t, dir, "good.pj", testutil.Program("println(1);"))
	bad := testutil.WriteSource(t, dir, "bad.pj", testutil.Program("println(1)"))
	missing := filepath.Join(dir, "missing.pj")

	results, err := eng.CheckFiles(context.Background(), []string{good, bad, missing})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, good, results[0].Path)
	assert.True(t, results[0].OK())

	var synErr *parser.SyntaxError
	require.ErrorAs(t, results[1].Err, &synErr)
	assert.Equal(t, "SEMICOLON", synErr.Expected)

	require.Error(t, results[2].Err)
	assert.ErrorIs(t, results[2].Err, os.ErrNotExist)
}

func TestEngine_CheckFiles_Canceled(t *testing.T) {
	eng := newTestEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.CheckFiles(ctx, []string{"a.pj"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Watch(t *testing.T) {
	eng := newTestEngine(t, Config{})
	dir := t.TempDir()
	path := testutil.WriteSource(t, dir, "watched.pj", "v1")
	testutil.WriteSource(t, dir, "other.pj", "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- eng.Watch(ctx, path, func() { changes <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("v2", 3)), 0o600))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
