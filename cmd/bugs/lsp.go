package main

import (
	"github.com/spf13/cobra"

	"github.com/chazu/bugsworld/server"
)

func (a *app) lspCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the BL language server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.NewLSP(a.manifest.BLDialect()).Run()
		},
	}
}
