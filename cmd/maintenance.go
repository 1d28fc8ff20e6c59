// maintenance.go implements the administrative maintenance commands:
// compact, check, sync, and rebuild-indexes (§4.5, §4.4.4), each a thin
// wrapper over one engine call plus a structured log event, grounded on
// the teacher's extension/core/vacuum.go (single-operation maintenance
// command pattern).
package cmd

import (
	"context"
	"fmt"

	"github.com/areggiori/dupin-go/internal/cliprogress"
	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCompactCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newRebuildIndexesCmd())
}

func newCompactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact <kind> <name>",
		Short: "Prune superseded revisions and reclaim file space (§4.5)",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return PrintJSONError(err)
			}
			name := args[1]
			err = cliprogress.Run(fmt.Sprintf("compacting %s %s", kind, name), func() error {
				return eng.Compact(context.Background(), kind, name)
			})

			elog.Event("cmd:compact", string(kind)).Detail("name", name).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("compact %s %s: %w", kind, name, err))
			}
			fmt.Fprintf(Out(), "compacted %s %s\n", kind, name)
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <link-collection> <parent-document-collection>",
		Short: "Tombstone links with a dangling or expired context (§4.5)",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			linkName, parentName := args[0], args[1]
			err := cliprogress.Run(fmt.Sprintf("checking %s", linkName), func() error {
				return eng.Check(context.Background(), linkName, parentName)
			})

			elog.Event("cmd:check", "run").Detail("link", linkName).Detail("parent", parentName).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("check %s: %w", linkName, err))
			}
			fmt.Fprintf(Out(), "checked %s against %s\n", linkName, parentName)
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <view>",
		Short: "Run a view's map/reduce pass to completion synchronously (§4.4.4 sync_now)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			err := cliprogress.Run(fmt.Sprintf("syncing %s", name), func() error {
				return eng.Sync(context.Background(), name)
			})

			elog.Event("cmd:sync", "run").Detail("view", name).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("sync %s: %w", name, err))
			}
			fmt.Fprintf(Out(), "synced %s\n", name)
			return nil
		},
	}
}

func newRebuildIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-indexes <view>",
		Short: "Rebuild a view's rows from scratch (schema or script changes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			err := cliprogress.Run(fmt.Sprintf("rebuilding %s", name), func() error {
				return eng.RebuildIndexes(context.Background(), name)
			})

			elog.Event("cmd:rebuild-indexes", "run").Detail("view", name).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("rebuild-indexes %s: %w", name, err))
			}
			fmt.Fprintf(Out(), "rebuilt %s\n", name)
			return nil
		},
	}
}
