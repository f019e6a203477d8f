package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/payjar/internal/cli/output"
	"github.com/leapstack-labs/payjar/internal/engine"
	"github.com/leapstack-labs/payjar/internal/state"
	"github.com/spf13/cobra"
)

// HistoryEntry is the JSON form of a recorded run.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Engine     string    `json:"engine"`
	Source     string    `json:"source"`
	SourceHash string    `json:"source_hash"`
	Status     string    `json:"status"`
	Output     string    `json:"output"`
	Error      string    `json:"error,omitempty"`
	Warnings   int       `json:"warnings"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

func toHistoryEntry(run *state.Run) HistoryEntry {
	return HistoryEntry{
		ID:         run.ID,
		Engine:     string(run.Engine),
		Source:     run.Source,
		SourceHash: run.SourceHash,
		Status:     string(run.Status),
		Output:     run.Output,
		Error:      run.Error,
		Warnings:   run.Warnings,
		StartedAt:  run.StartedAt,
		DurationMS: run.Duration.Milliseconds(),
	}
}

// NewHistoryCommand creates the history command and its show subcommand.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List program and tape runs recorded in the history database, newest first.
Recording is controlled by history.enabled and history.path.`,
		Example: `  # Show the last 20 runs
  payjar history

  # Show every run as JSON
  payjar history --limit 0 --output json

  # Show one run (a unique ID prefix is enough)
  payjar history show 3f2a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, args[0])
		},
	})

	return cmd
}

func historyContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	if !cmdCtx.Engine.HistoryEnabled() {
		cleanup()
		return nil, nil, fmt.Errorf("%w (set history.enabled to true)", engine.ErrHistoryDisabled)
	}
	return cmdCtx, cleanup, nil
}

func runHistoryList(cmd *cobra.Command, limit int) error {
	cmdCtx, cleanup, err := historyContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cmdCtx.Engine.History(cmd.Context(), limit)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		entries := make([]HistoryEntry, len(runs))
		for i, run := range runs {
			entries[i] = toHistoryEntry(run)
		}
		return r.JSON(entries)
	}

	if len(runs) == 0 {
		r.Muted("No runs recorded")
		return nil
	}

	r.Header(1, fmt.Sprintf("Runs (%d shown)", len(runs)))
	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			shortID(run.ID),
			string(run.Engine),
			run.Source,
			string(run.Status),
			run.StartedAt.Local().Format(time.DateTime),
			run.Duration.String(),
		}
	}
	r.Table([]string{"ID", "Engine", "Source", "Status", "Started", "Duration"}, rows)
	return nil
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	cmdCtx, cleanup, err := historyContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := cmdCtx.Engine.GetRun(cmd.Context(), id)
	if errors.Is(err, state.ErrRunNotFound) || errors.Is(err, state.ErrAmbiguousRun) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(toHistoryEntry(run))
	case output.ModeMarkdown:
		showRunMarkdown(r, run)
	default:
		showRunText(r, run)
	}
	return nil
}

func showRunText(r *output.Renderer, run *state.Run) {
	styles := r.Styles()
	r.Header(1, "Run "+run.ID)
	r.Println(styles.Bold.Render("Engine:   ") + string(run.Engine))
	r.Println(styles.Bold.Render("Source:   ") + run.Source)
	r.Println(styles.Bold.Render("Hash:     ") + run.SourceHash)
	status := styles.Success.Render(string(run.Status))
	if run.Status == state.RunStatusFailure {
		status = styles.Error.Render(string(run.Status))
	}
	r.Println(styles.Bold.Render("Status:   ") + status)
	r.Println(styles.Bold.Render("Started:  ") + run.StartedAt.Local().Format(time.DateTime))
	r.Println(styles.Bold.Render("Duration: ") + run.Duration.String())
	r.Println(styles.Bold.Render("Warnings: ") + strconv.Itoa(run.Warnings))
	if run.Error != "" {
		r.Println(styles.Bold.Render("Error:    ") + styles.Error.Render(run.Error))
	}
	r.Println()
	r.Header(2, "Output")
	if run.Output == "" {
		r.Muted("(no output)")
		return
	}
	r.Println(run.Output)
}

func showRunMarkdown(r *output.Renderer, run *state.Run) {
	r.Println(output.FormatHeader(1, "Run "+run.ID))
	r.Println()
	r.Println(output.FormatKeyValue("Engine", string(run.Engine)))
	r.Println(output.FormatKeyValue("Source", run.Source))
	r.Println(output.FormatKeyValue("Hash", run.SourceHash))
	r.Println(output.FormatKeyValue("Status", string(run.Status)))
	r.Println(output.FormatKeyValue("Started", run.StartedAt.Format(time.RFC3339)))
	r.Println(output.FormatKeyValue("Duration", run.Duration.String()))
	r.Println(output.FormatKeyValue("Warnings", strconv.Itoa(run.Warnings)))
	if run.Error != "" {
		r.Println(output.FormatKeyValue("Error", run.Error))
	}
	r.Println()
	r.Println(output.FormatHeader(2, "Output"))
	r.Println()
	r.Println(output.FormatCodeBlock("text", run.Output))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
