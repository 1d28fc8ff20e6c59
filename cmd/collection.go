// collection.go implements the "list", "create", and "delete" commands
// for collection lifecycle management, grounded on the teacher's
// extension/core/db.go (a thin command over a lifecycle API, with
// structured logging on every mutating call).
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/areggiori/dupin-go/engine"
	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/areggiori/dupin-go/internal/registry"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newDeleteCmd())
}

func parseKind(s string) (registry.Kind, error) {
	switch registry.Kind(s) {
	case registry.KindDoc, registry.KindLink, registry.KindAtt, registry.KindView:
		return registry.Kind(s), nil
	default:
		return "", fmt.Errorf("invalid kind %q (want document, link, attachment, or view)", s)
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List collections of a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return PrintJSONError(err)
			}
			names := eng.List(kind)
			if JSON() {
				return PrintJSON(names)
			}
			fmt.Fprintln(Out(), strings.Join(names, "\n"))
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var (
		parent     string
		parentKind string
		mapFn      string
		mapLang    string
		reduceFn   string
		reduceLang string
		outputName string
	)

	c := &cobra.Command{
		Use:   "create <kind> <name>",
		Short: "Create a new collection",
		Long: `Create a document, link, attachment, or view collection.

  dupin create document orders
  dupin create link orders-edges --parent orders
  dupin create attachment orders-files --parent orders
  dupin create view totals --parent-kind document --parent orders --map-fn byDay --reduce-fn sum`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			name := args[1]
			if err != nil {
				return PrintJSONError(err)
			}

			switch kind {
			case registry.KindDoc:
				err = eng.CreateDocument(name)
			case registry.KindLink:
				err = eng.CreateLink(name, parent)
			case registry.KindAtt:
				err = eng.CreateAttachmentStore(name, parent)
			case registry.KindView:
				pk, perr := parseKind(parentKind)
				if perr != nil {
					return PrintJSONError(perr)
				}
				err = eng.CreateView(name, engine.ViewParams{
					ParentKind:   pk,
					ParentName:   parent,
					MapSource:    mapFn,
					MapLang:      mapLang,
					ReduceSource: reduceFn,
					ReduceLang:   reduceLang,
					OutputName:   outputName,
				})
			}

			elog.Event("cmd:create", string(kind)).Detail("name", name).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("create %s %s: %w", kind, name, err))
			}
			fmt.Fprintf(Out(), "created %s %s\n", kind, name)
			return nil
		},
	}
	c.Flags().StringVar(&parent, "parent", "", "Parent collection name (link, attachment, view)")
	c.Flags().StringVar(&parentKind, "parent-kind", string(registry.KindDoc), "Parent kind for a view (document, link, view)")
	c.Flags().StringVar(&mapLang, "map-lang", "native", "Map function language tag")
	c.Flags().StringVar(&mapFn, "map-fn", "", "Map function source/name (view)")
	c.Flags().StringVar(&reduceLang, "reduce-lang", "native", "Reduce function language tag")
	c.Flags().StringVar(&reduceFn, "reduce-fn", "", "Reduce function source/name (view)")
	c.Flags().StringVar(&outputName, "output-collection", "", "Forward rows to another collection instead of materialising (reduce-less view)")
	return c
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <name>",
		Short: "Mark a collection for deletion",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return PrintJSONError(err)
			}
			name := args[1]
			if !Force() {
				fmt.Fprintf(Out(), "deleting %s %s; pass --force to skip this notice\n", kind, name)
			}
			err = eng.Delete(context.Background(), kind, name)

			elog.Event("cmd:delete", string(kind)).Detail("name", name).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("delete %s %s: %w", kind, name, err))
			}
			fmt.Fprintf(Out(), "deleted %s %s\n", kind, name)
			return nil
		},
	}
}
