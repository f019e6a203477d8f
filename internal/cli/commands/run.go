package commands

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/leapstack-labs/payjar/internal/cli/output"
	"github.com/leapstack-labs/payjar/internal/engine"
	"github.com/leapstack-labs/payjar/pkg/interpreter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	InputPath string
	Watch     bool
}

// RunOutput is the JSON form of a program run.
type RunOutput struct {
	Source     string   `json:"source"`
	Output     []string `json:"output"`
	Warnings   []string `json:"warnings"`
	Error      string   `json:"error,omitempty"`
	RunID      string   `json:"run_id,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a PayJar program",
		Long: `Run a PayJar program and print every line it emits.

Printed lines go to stdout as they are produced. Warnings and the failure
message go to stderr, and a failed run exits non-zero. Use - to read the
program from stdin.

readln reads from stdin unless --input names a file of input lines.`,
		Example: `  # Run a program
  payjar run hello.pj

  # Feed readln from a file
  payjar run greet.pj --input names.txt

  # Re-run on every save
  payjar run hello.pj --watch

  # Machine-readable result
  payjar run hello.pj --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputPath, "input", "i", "", "File of lines for readln (- for stdin)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run the program when the file changes")

	return cmd
}

func runRun(cmd *cobra.Command, path string, opts *RunOptions) error {
	if opts.Watch && path == "-" {
		return fmt.Errorf("--watch requires a file, not stdin")
	}
	if path == "-" && opts.InputPath == "-" {
		return fmt.Errorf("stdin cannot supply both the program and its input")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if !opts.Watch {
		return runOnce(cmd, cmdCtx, path, opts)
	}
	return watchRun(cmd, cmdCtx, path, opts)
}

func runOnce(cmd *cobra.Command, cmdCtx *CommandContext, path string, opts *RunOptions) error {
	src, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(cmd, path, opts.InputPath)
	if err != nil {
		return err
	}
	defer closeInput()

	r := cmdCtx.Renderer
	var sink interpreter.Sink
	if r.EffectiveMode() != output.ModeJSON {
		sink = interpreter.WriterSink(r.Out())
	}

	res := cmdCtx.Engine.RunSource(cmd.Context(), src, engine.RunOptions{
		Name:  path,
		Input: input,
		Sink:  sink,
	})
	return reportRun(r, path, res)
}

// watchRun runs the program, then again after every change until interrupted.
func watchRun(cmd *cobra.Command, cmdCtx *CommandContext, path string, opts *RunOptions) error {
	r := cmdCtx.Renderer
	var mu sync.Mutex

	rerun := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := runOnce(cmd, cmdCtx, path, opts); err != nil && !errors.Is(err, ErrFailed) {
			r.Error(err.Error())
		}
	}

	rerun()
	r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", path))

	return cmdCtx.Engine.Watch(cmd.Context(), path, func() {
		r.Muted(fmt.Sprintf("--- %s changed, re-running ---", path))
		rerun()
	})
}

// reportRun writes warnings and the failure message, or the JSON result.
func reportRun(r *output.Renderer, name string, res engine.RunResult) error {
	if r.EffectiveMode() == output.ModeJSON {
		out := RunOutput{
			Source:     name,
			Output:     nonNil(res.Output),
			Warnings:   nonNil(res.Warnings),
			Error:      res.Message(),
			RunID:      res.RunID,
			DurationMS: res.Duration.Milliseconds(),
		}
		if err := r.JSON(out); err != nil {
			return err
		}
		if !res.OK() {
			return ErrFailed
		}
		return nil
	}

	for _, w := range res.Warnings {
		r.Warning(w)
	}
	if !res.OK() {
		r.Error(res.Message())
		return ErrFailed
	}
	return nil
}

// openInput resolves the readln source. The returned cleanup is never nil.
func openInput(cmd *cobra.Command, programPath, inputPath string) (interpreter.Input, func(), error) {
	noop := func() {}

	switch inputPath {
	case "-":
		return interpreter.ReaderInput(cmd.InOrStdin()), noop, nil
	case "":
		if programPath == "-" {
			return nil, noop, nil
		}
		if isTerminalReader(cmd) {
			return interpreter.PromptInput(cmd.InOrStdin(), cmd.ErrOrStderr()), noop, nil
		}
		return interpreter.ReaderInput(cmd.InOrStdin()), noop, nil
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open input: %w", err)
	}
	return interpreter.ReaderInput(f), func() { _ = f.Close() }, nil
}

func isTerminalReader(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
