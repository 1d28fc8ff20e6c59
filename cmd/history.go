// history.go implements "history diff", grounded on the teacher's
// internal/diff command wiring: compute a unified diff between two
// revisions of the same document, surfacing the content hash divergence
// behind an MVCC conflict.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/areggiori/dupin-go/internal/histdiff"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Revision history utilities",
	}
	historyCmd.AddCommand(newHistoryDiffCmd())
	rootCmd.AddCommand(historyCmd)
}

func newHistoryDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <collection> <id> <rev1> <rev2>",
		Short: "Show a unified diff between two revisions of a document",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, id := args[0], args[1]
			v1, v2, err := histdiff.ParseVersionRange(args[2] + ":" + args[3])
			if err != nil {
				return PrintJSONError(err)
			}

			ctx := context.Background()
			oldRev, err := eng.GetDocument(ctx, collection, id, v1)
			if err != nil {
				return PrintJSONError(fmt.Errorf("history diff: read rev %d: %w", v1, err))
			}
			newRev, err := eng.GetDocument(ctx, collection, id, v2)
			if err != nil {
				return PrintJSONError(fmt.Errorf("history diff: read rev %d: %w", v2, err))
			}

			result := histdiff.Compute(string(oldRev.Body), string(newRev.Body), oldRev.Mvcc(), newRev.Mvcc())
			if JSON() {
				return PrintJSON(result)
			}
			colour := term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Fprint(Out(), result.Format(colour))
			return nil
		},
	}
}
