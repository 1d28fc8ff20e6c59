// view.go implements the "view" command group over a materialized
// view's read contract and lifecycle state (§4.4.4).
package cmd

import (
	"context"
	"fmt"

	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/areggiori/dupin-go/internal/view"
	"github.com/spf13/cobra"
)

func init() {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "View read contract and lifecycle state",
	}
	viewCmd.AddCommand(newViewListCmd())
	viewCmd.AddCommand(newViewTotalCmd())
	viewCmd.AddCommand(newViewStateCmd())
	rootCmd.AddCommand(viewCmd)
}

func newViewListCmd() *cobra.Command {
	var startKey, endKey string
	var descending bool
	var limit int
	c := &cobra.Command{
		Use:   "list <name>",
		Short: "List rows ordered by the domain collation over key",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			rows, err := eng.ViewList(context.Background(), name, view.ListOptions{
				StartKey:   startKey,
				EndKey:     endKey,
				Descending: descending,
				Limit:      limit,
			})

			elog.Event("cmd:view", "list").Detail("name", name).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("view list: %w", err))
			}
			if JSON() {
				return PrintJSON(rows)
			}
			for _, r := range rows {
				fmt.Fprintf(Out(), "%s %s\n", string(r.Key), string(r.Value))
			}
			return nil
		},
	}
	c.Flags().StringVar(&startKey, "start-key", "", "Normalized key lower bound, inclusive")
	c.Flags().StringVar(&endKey, "end-key", "", "Normalized key upper bound, inclusive")
	c.Flags().BoolVar(&descending, "descending", false, "Reverse iteration order")
	c.Flags().IntVar(&limit, "limit", 100, "Maximum rows to return")
	return c
}

func newViewTotalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "total <name>",
		Short: "Print a view's current row count",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			total, err := eng.ViewTotal(context.Background(), name)

			elog.Event("cmd:view", "total").Detail("name", name).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("view total: %w", err))
			}
			if JSON() {
				return PrintJSON(map[string]int64{"total": total})
			}
			fmt.Fprintln(Out(), total)
			return nil
		},
	}
}

func newViewStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <name>",
		Short: "Print a view's lifecycle state and last warning, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			state, failMsg, err := eng.ViewState(context.Background(), name)

			elog.Event("cmd:view", "state").Detail("name", name).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("view state: %w", err))
			}
			warning, _ := eng.ViewWarning(context.Background(), name)
			if JSON() {
				return PrintJSON(map[string]string{"state": string(state), "fail_msg": failMsg, "warning": warning})
			}
			fmt.Fprintf(Out(), "%s\n", state)
			if failMsg != "" {
				fmt.Fprintf(Out(), "fail: %s\n", failMsg)
			}
			if warning != "" {
				fmt.Fprintf(Out(), "warning: %s\n", warning)
			}
			return nil
		},
	}
}
