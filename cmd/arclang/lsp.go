package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mbaroudi/arclang-sub001/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the ArcLang language server over stdio",
	Long: `Start a Language Server Protocol server that speaks JSON-RPC over
stdin/stdout. Editors get live syntax and reference diagnostics for open
.arc documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol, so logs go to a file.
		logConfig := zap.NewDevelopmentConfig()
		logConfig.OutputPaths = []string{"arclang-lsp.log"}
		logger, err := logConfig.Build()
		if err != nil {
			return err
		}
		defer logger.Sync()

		server := lsp.NewServer(logger)
		return server.Run(context.Background())
	},
}
