package commands

import (
	"fmt"

	"github.com/leapstack-labs/payjar/internal/cli/output"
	"github.com/leapstack-labs/payjar/internal/engine"
	"github.com/spf13/cobra"
)

// CheckOutput is the JSON form of one checked file.
type CheckOutput struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate programs without running them",
		Long: `Lex and parse each program and report the first error in each file.
Files are checked concurrently. Exits non-zero if any file is invalid.`,
		Example: `  # Check a single program
  payjar check hello.pj

  # Check every program in a directory
  payjar check programs/*.pj --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	// Checking never runs programs, so it needs no history store.
	eng, err := engine.New(engine.Config{Logger: cmdCtx.Logger})
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	results, err := eng.CheckFiles(cmd.Context(), args)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := make([]CheckOutput, len(results))
		for i, res := range results {
			out[i] = CheckOutput{File: res.Path, Valid: res.OK()}
			if res.Err != nil {
				out[i].Error = res.Err.Error()
			}
		}
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		checkMarkdown(r, results, failed)
	default:
		checkText(r, results, failed)
	}

	if failed > 0 {
		return ErrFailed
	}
	return nil
}

func checkText(r *output.Renderer, results []engine.CheckResult, failed int) {
	styles := r.Styles()
	for _, res := range results {
		if res.OK() {
			r.Success(res.Path)
			continue
		}
		r.Println(styles.Error.Render("✗ " + res.Path))
		r.Println(styles.Muted.Render("    " + res.Err.Error()))
	}
	r.Println()
	r.Muted(fmt.Sprintf("%d file(s) checked, %d failed", len(results), failed))
}

func checkMarkdown(r *output.Renderer, results []engine.CheckResult, failed int) {
	r.Println(output.FormatHeader(1, "Check Results"))
	r.Println()

	rows := make([][]string, len(results))
	for i, res := range results {
		status, msg := "ok", ""
		if !res.OK() {
			status, msg = "failed", res.Err.Error()
		}
		rows[i] = []string{res.Path, status, msg}
	}
	r.Table([]string{"File", "Status", "Error"}, rows)

	r.Println()
	r.Println(output.FormatKeyValue("Checked", fmt.Sprintf("%d", len(results))))
	r.Println(output.FormatKeyValue("Failed", fmt.Sprintf("%d", failed)))
}
