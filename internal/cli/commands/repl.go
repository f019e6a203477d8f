package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/payjar/internal/cli/output"
	"github.com/leapstack-labs/payjar/internal/engine"
	"github.com/leapstack-labs/payjar/pkg/payjar"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "payjar> "
	replContinuePrompt = "   ...> "
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive PayJar session",
		Long: `Start an interactive session. Each entry is added to a program that is
re-run from the start, and only newly printed lines are shown. Entries that
fail to parse or run are discarded.

readln always yields null inside the REPL.`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rlCfg := &readline.Config{
		Prompt:          replPrompt,
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	}
	// Keep the line history next to the run history (project-local).
	if cmdCtx.Cfg.History.Enabled {
		dir := filepath.Dir(cmdCtx.Cfg.History.Path)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			rlCfg.HistoryFile = filepath.Join(dir, "repl_history")
		}
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	session := newReplSession(cmdCtx.Engine, cmdCtx.Renderer)

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "PayJar REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var pending strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			pending.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if pending.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ".") {
				if quit := session.dotCommand(trimmed); quit {
					break
				}
				continue
			}
		}

		// Accumulate until braces balance and the entry ends a statement
		pending.WriteString(line)
		pending.WriteString("\n")
		if !entryComplete(pending.String()) {
			rl.SetPrompt(replContinuePrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		session.eval(cmd.Context(), pending.String())
		pending.Reset()
	}

	return nil
}

// replSession holds the statements accepted so far.
type replSession struct {
	eng        *engine.Engine
	r          *output.Renderer
	statements []string
	shown      int // output lines already printed
	warned     int // warnings already printed
}

func newReplSession(eng *engine.Engine, r *output.Renderer) *replSession {
	return &replSession{eng: eng, r: r}
}

// program wraps statements in the main definition.
func (s *replSession) program(statements []string) string {
	var b strings.Builder
	b.WriteString("public class Repl main(@self) {\n")
	for _, stmt := range statements {
		b.WriteString(strings.TrimRight(stmt, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// eval appends entry, re-runs the program and prints new output. The entry
// is kept only if the whole program still parses and runs.
func (s *replSession) eval(ctx context.Context, entry string) {
	candidate := append(append([]string(nil), s.statements...), entry)
	src := s.program(candidate)

	if err := payjar.Validate(src); err != nil {
		s.r.Error(err.Error())
		return
	}

	res := s.eng.RunSource(ctx, src, engine.RunOptions{Name: "<repl>", NoHistory: true})
	for _, line := range res.Output[min(s.shown, len(res.Output)):] {
		s.r.Println(line)
	}
	for _, w := range res.Warnings[min(s.warned, len(res.Warnings)):] {
		s.r.Warning(w)
	}
	if !res.OK() {
		s.r.Error(res.Message())
		return
	}

	s.statements = candidate
	s.shown = len(res.Output)
	s.warned = len(res.Warnings)
}

// dotCommand handles a REPL command and reports whether to quit.
func (s *replSession) dotCommand(line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printReplHelp(s.r.Out())
	case ".reset":
		s.statements = nil
		s.shown = 0
		s.warned = 0
		s.r.Muted("Session cleared")
	case ".show":
		s.r.Printf("%s", s.program(s.statements))
	default:
		s.r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", line))
	}
	return false
}

// entryComplete reports whether src closes every brace and ends a statement.
func entryComplete(src string) bool {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return false
	}
	if strings.Count(trimmed, "{") > strings.Count(trimmed, "}") {
		return false
	}
	return strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}")
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .show           Print the accumulated program
  .reset          Forget every entry
  .quit / .exit   Exit the REPL

Tips:
  - Statements end with a semicolon (;)
  - Function and class definitions may span several lines
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func newReplCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, kw := range []string{"println(", "let ", "const ", "var ", "func ", "class ", "NEW ", "readln(", "return ", "pass;"} {
		items = append(items, readline.PcItem(kw))
	}
	for _, dot := range []string{".help", ".show", ".reset", ".quit", ".exit"} {
		items = append(items, readline.PcItem(dot))
	}
	return readline.NewPrefixCompleter(items...)
}
