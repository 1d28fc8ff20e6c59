// root.go defines the root command and CLI execution entry point,
// grounded on the teacher's cmd/root.go (PersistentPreRunE opens the
// store lazily; bootstrap commands are exempted via a noStoreCommands
// map).
package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/areggiori/dupin-go/engine"
	"github.com/areggiori/dupin-go/internal/econfig"
	"github.com/areggiori/dupin-go/internal/scripthost"
	"github.com/spf13/cobra"
)

// eng is the shared engine instance commands operate against, opened
// lazily by PersistentPreRunE. serve manages its own lifecycle instead.
var eng *engine.Engine

// noStoreCommands lists top-level commands that must run before any
// engine root exists (guide) or that open their own engine (serve).
var noStoreCommands = map[string]bool{
	"guide": true,
	"serve": true,
	"dupin": true, // bare root: prints help
}

var rootCmd = &cobra.Command{
	Use:   "dupin",
	Short: "Embedded document-oriented database engine",
	Long:  `Administrative CLI over an embedded MVCC document engine: collections, views, compaction, link checking, and change feeds.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		name := topLevelCmdName(cmd)
		if noStoreCommands[name] {
			return nil
		}

		cfg := econfig.Default()
		cfg.RootDir = Root()
		if p := ConfigPath(); p != "" {
			loaded, err := econfig.Load(p)
			if err != nil {
				return err
			}
			loaded.RootDir = Root()
			cfg = loaded
		}

		e, err := engine.Open(cfg, scripthost.NewNative())
		if err != nil {
			return fmt.Errorf("open engine at %s: %w", cfg.RootDir, err)
		}
		eng = e
		return nil
	},
}

// topLevelCmdName returns the name of the top-level command (direct
// child of root); "dupin doc put" returns "doc".
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle, closing
// the engine on exit. Exit code 1 indicates error.
func Execute() {
	err := rootCmd.Execute()

	if eng != nil {
		eng.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
