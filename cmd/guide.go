// guide.go implements the "guide" command, grounded on the teacher's
// extension/core/guide.go: embedded markdown rendered with glamour on a
// TTY, or emitted raw for piping/LLM context loading.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/areggiori/dupin-go/guide"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(newGuideCmd())
}

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide [page]",
		Short: "Show the dupin usage guide",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			content, err := guide.Get(name)
			if err != nil {
				available, listErr := guide.List()
				if listErr != nil {
					return listErr
				}
				return fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", "))
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				rendered, err := glamour.Render(content, "dark")
				if err == nil {
					fmt.Fprint(Out(), rendered)
					return nil
				}
			}
			fmt.Fprint(Out(), content)
			return nil
		},
	}
}
