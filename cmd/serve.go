// serve.go implements the "serve" command, grounded on the teacher's
// extension/core/serve.go: serve manages its own engine lifecycle rather
// than using the root command's shared engine, since it controls when
// the files are opened and closed independent of the CLI framework.
package cmd

import (
	"github.com/areggiori/dupin-go/internal/mcpadmin"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start an MCP server over stdio for LLM integration",
		Long: `Start an MCP (Model Context Protocol) server over stdio.

Use --root to serve a specific engine root:
  dupin serve --root ./data`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return mcpadmin.Serve(Root(), ConfigPath())
		},
	}
}
