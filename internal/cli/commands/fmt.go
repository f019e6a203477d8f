package commands

import (
	"fmt"

	"github.com/leapstack-labs/payjar/internal/cli/output"
	"github.com/leapstack-labs/payjar/internal/engine"
	"github.com/spf13/cobra"
)

// FmtOutput is the JSON form of one formatted file.
type FmtOutput struct {
	File      string `json:"file"`
	Changed   bool   `json:"changed"`
	Formatted string `json:"formatted,omitempty"`
	Error     string `json:"error,omitempty"`
}

type fmtOptions struct {
	write bool
	list  bool
	check bool
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &fmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Format programs",
		Long: `Reformat programs with canonical spacing and indentation. Comments are
kept and only the whitespace between tokens changes.

By default the formatted source is printed to stdout. Files that fail to
lex or parse are reported and left untouched.`,
		Example: `  # Print the formatted program
  payjar fmt hello.pj

  # Rewrite files in place
  payjar fmt -w programs/*.pj

  # Fail in CI when a file is not formatted
  payjar fmt --check programs/*.pj`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write the result back to each file")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "List files whose formatting differs")
	cmd.Flags().BoolVar(&opts.check, "check", false, "List unformatted files and exit non-zero if there are any")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *fmtOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := engine.New(engine.Config{Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	results, err := eng.FormatFiles(cmd.Context(), args, opts.write)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	failed, changed := 0, 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
		case res.Changed():
			changed++
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		out := make([]FmtOutput, len(results))
		for i, res := range results {
			out[i] = FmtOutput{File: res.Path, Changed: res.Changed()}
			if res.Err != nil {
				out[i].Error = res.Err.Error()
			} else if !opts.write && !opts.list && !opts.check {
				out[i].Formatted = res.Formatted
			}
		}
		if err := r.JSON(out); err != nil {
			return err
		}
	} else {
		fmtText(r, results, opts)
	}

	if failed > 0 || (opts.check && changed > 0) {
		return ErrFailed
	}
	return nil
}

func fmtText(r *output.Renderer, results []engine.FormatResult, opts *fmtOptions) {
	for _, res := range results {
		if res.Err != nil {
			r.Eprintln(r.Styles().Error.Render("✗ " + res.Err.Error()))
			continue
		}
		switch {
		case opts.list || opts.check:
			if res.Changed() {
				r.Println(res.Path)
			}
		case opts.write:
			if res.Changed() {
				r.Success(fmt.Sprintf("formatted %s", res.Path))
			}
		default:
			_, _ = fmt.Fprint(r.Out(), res.Formatted)
		}
	}
}
