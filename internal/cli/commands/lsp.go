package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapuast/internal/cli/config"
	"github.com/leapstack-labs/leapuast/internal/lsp"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for IDE integration.

The server communicates over stdin/stdout using JSON-RPC and offers
hover, go-to-definition and inspection diagnostics for open Kotlin
documents. The project root, and with it leapuast.yaml, is taken
from the client's initialization request (rootUri parameter).`,
		Example: `  # Start LSP server (usually called by an IDE)
  leapuast lsp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}
	return cmd
}

func runLSP(cmd *cobra.Command) error {
	logger := config.GetLogger(cmd.Context())
	server := lsp.NewServerWithLogger(cmd.InOrStdin(), cmd.OutOrStdout(), logger,
		lsp.WithDepth(getConfig().Depth()))
	return server.Run(cmd.Context())
}
