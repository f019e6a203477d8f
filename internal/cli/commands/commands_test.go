package commands

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/payjar/internal/cli/testutil"
	"github.com/leapstack-labs/payjar/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"input", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()

	assert.Equal(t, "check <file>...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.Error(t, cmd.Args(cmd, nil), "check requires at least one file")
}

func TestNewTokensCommand(t *testing.T) {
	cmd := NewTokensCommand()

	assert.Equal(t, "tokens <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewTapeCommand(t *testing.T) {
	cmd := NewTapeCommand()

	assert.Equal(t, "tape <file>", cmd.Use)
	for _, flag := range []string{"input", "input-file"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("limit"))

	show, _, err := cmd.Find([]string{"show"})
	assert.NoError(t, err)
	assert.Equal(t, "show", show.Name())
}

func TestCheckRendering(t *testing.T) {
	results := []engine.CheckResult{
		{Path: "a.pj"},
		{Path: "b.pj", Err: errors.New("Syntax Error: Expected SEMICOLON, but got EOF. Index: 9")},
	}

	t.Run("text", func(t *testing.T) {
		tr := testutil.NewTestRendererText()
		checkText(tr.Renderer, results, 1)

		out := tr.Output()
		assert.Contains(t, out, "✓ a.pj")
		assert.Contains(t, out, "✗ b.pj")
		assert.Contains(t, out, "Expected SEMICOLON")
		assert.Contains(t, out, "2 file(s) checked, 1 failed")
	})

	t.Run("markdown", func(t *testing.T) {
		tr := testutil.NewTestRendererMarkdown()
		checkMarkdown(tr.Renderer, results, 1)

		out := tr.Output()
		testutil.AssertNoANSI(t, out)
		testutil.AssertValidMarkdown(t, out)
		assert.Contains(t, out, "| a.pj | ok |")
		assert.Contains(t, out, "- **Failed**: 1")
	})
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("12345678-aaaa"))
	assert.Equal(t, "abc", shortID("abc"))
}
