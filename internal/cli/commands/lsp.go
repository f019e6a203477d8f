package commands

import (
	"github.com/leapstack-labs/payjar/internal/cli/config"
	"github.com/leapstack-labs/payjar/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. It reports
lexer and syntax errors as you type, warns about top-level returns and
references to undeclared functions or classes, and offers completion,
hover, go to definition, document outline, formatting and a quick fix
for missing semicolons.`,
		Example: `  # Start LSP server (usually called by an editor)
  payjar lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command) error {
	logger := config.GetLogger(cmd.Context())
	server := lsp.NewServerWithLogger(cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	return server.Run()
}
