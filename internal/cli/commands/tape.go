package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/payjar/internal/cli/output"
	"github.com/spf13/cobra"
)

// TapeOptions holds options for the tape command.
type TapeOptions struct {
	Input     string
	InputFile string
}

// TapeOutput is the JSON form of a tape run.
type TapeOutput struct {
	Source     string `json:"source"`
	Output     string `json:"output"`
	Error      string `json:"error,omitempty"`
	RunID      string `json:"run_id,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// NewTapeCommand creates the tape command.
func NewTapeCommand() *cobra.Command {
	opts := &TapeOptions{}

	cmd := &cobra.Command{
		Use:   "tape <file>",
		Short: "Run a tape machine program",
		Long: `Run a program for the eight-command tape machine (> < + - . , [ ]).
Every other character is a comment. Input for ',' comes from --input or
--input-file; reading past the end yields 0.`,
		Example: `  # Run a program
  payjar tape hello.bf

  # Provide input characters
  payjar tape echo.bf --input "abc"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTape(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Input, "input", "", "Input text for ',' commands")
	cmd.Flags().StringVar(&opts.InputFile, "input-file", "", "File whose contents feed ',' commands")
	cmd.MarkFlagsMutuallyExclusive("input", "input-file")

	return cmd
}

func runTape(cmd *cobra.Command, path string, opts *TapeOptions) error {
	src, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	input := opts.Input
	if opts.InputFile != "" {
		data, err := os.ReadFile(opts.InputFile)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		input = string(data)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	res := cmdCtx.Engine.RunTape(cmd.Context(), path, src, input)

	if r.EffectiveMode() == output.ModeJSON {
		out := TapeOutput{
			Source:     path,
			Output:     res.Output,
			RunID:      res.RunID,
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if err := r.JSON(out); err != nil {
			return err
		}
	} else {
		r.Printf("%s", res.Output)
		if r.IsTTY() && res.Output != "" && !strings.HasSuffix(res.Output, "\n") {
			r.Println()
		}
		if res.Err != nil {
			r.Error(res.Err.Error())
		}
	}

	if res.Err != nil {
		return ErrFailed
	}
	return nil
}
