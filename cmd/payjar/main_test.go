// Package main provides tests for the PayJar CLI.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leapstack-labs/payjar/internal/cli"
	"github.com/leapstack-labs/payjar/internal/cli/config"
)

func TestVersionCommand(t *testing.T) {
	config.ResetConfig()
	t.Chdir(t.TempDir())

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "PayJar") {
		t.Errorf("version output should contain 'PayJar', got: %s", output)
	}
}

func TestHelpListsCommands(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help error = %v", err)
	}

	for _, name := range []string{"run", "check", "fmt", "tokens", "tape", "repl", "history", "lsp"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("help should list %q", name)
		}
	}
}
