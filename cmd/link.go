// link.go implements the "link" command group over typed link-record
// CRUD and filtered listing (§4.3).
package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/areggiori/dupin-go/internal/linkstore"
	"github.com/spf13/cobra"
)

func init() {
	linkCmd := &cobra.Command{
		Use:   "link",
		Short: "Typed link-record CRUD",
	}
	linkCmd.AddCommand(newLinkCreateCmd())
	linkCmd.AddCommand(newLinkUpdateCmd())
	linkCmd.AddCommand(newLinkDeleteCmd())
	linkCmd.AddCommand(newLinkGetCmd())
	linkCmd.AddCommand(newLinkListCmd())
	rootCmd.AddCommand(linkCmd)
}

func newLinkCreateCmd() *cobra.Command {
	var rel, authority string
	var expireTM int64
	var body string
	c := &cobra.Command{
		Use:   "create <collection> <context-id> <label> <href>",
		Short: "Create a link record",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, contextID, label, href := args[0], args[1], args[2], args[3]
			if body == "" {
				body = "null"
			}
			id, mvcc, err := eng.CreateLinkRecord(context.Background(), collection, linkstore.CreateParams{
				ContextID: contextID,
				Label:     label,
				Href:      href,
				Rel:       rel,
				Authority: authority,
				ExpireTM:  expireTM,
				Body:      json.RawMessage(body),
			})

			elog.Event("cmd:link", "create").Detail("collection", collection).Detail("context_id", contextID).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("link create: %w", err))
			}
			if JSON() {
				return PrintJSON(map[string]string{"id": id, "mvcc": mvcc})
			}
			fmt.Fprintf(Out(), "%s %s\n", id, mvcc)
			return nil
		},
	}
	c.Flags().StringVar(&rel, "rel", "", "Relation label")
	c.Flags().StringVar(&authority, "authority", "", "Authority string (host/origin grouping)")
	c.Flags().Int64Var(&expireTM, "expire-tm", 0, "Expiry, unix microseconds (0 = no expiry)")
	c.Flags().StringVar(&body, "body", "", "JSON body (default null)")
	return c
}

func newLinkUpdateCmd() *cobra.Command {
	var rel, authority, body string
	var expireTM int64
	c := &cobra.Command{
		Use:   "update <collection> <id> <mvcc> <context-id> <label> <href>",
		Short: "Write a new revision of a link record",
		Args:  cobra.ExactArgs(6),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, id, mvcc, contextID, label, href := args[0], args[1], args[2], args[3], args[4], args[5]
			if body == "" {
				body = "null"
			}
			newMvcc, err := eng.UpdateLinkRecord(context.Background(), collection, id, mvcc, linkstore.CreateParams{
				ContextID: contextID,
				Label:     label,
				Href:      href,
				Rel:       rel,
				Authority: authority,
				ExpireTM:  expireTM,
				Body:      json.RawMessage(body),
			})

			elog.Event("cmd:link", "update").Detail("collection", collection).Detail("id", id).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("link update: %w", err))
			}
			if JSON() {
				return PrintJSON(map[string]string{"id": id, "mvcc": newMvcc})
			}
			fmt.Fprintf(Out(), "%s %s\n", id, newMvcc)
			return nil
		},
	}
	c.Flags().StringVar(&rel, "rel", "", "Relation label")
	c.Flags().StringVar(&authority, "authority", "", "Authority string")
	c.Flags().Int64Var(&expireTM, "expire-tm", 0, "Expiry, unix microseconds")
	c.Flags().StringVar(&body, "body", "", "JSON body (default null)")
	return c
}

func newLinkDeleteCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "delete <collection> <id> <mvcc>",
		Short: "Tombstone a link record",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, id, mvcc := args[0], args[1], args[2]
			newMvcc, err := eng.DeleteLinkRecord(context.Background(), collection, id, mvcc)

			elog.Event("cmd:link", "delete").Detail("collection", collection).Detail("id", id).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("link delete: %w", err))
			}
			if JSON() {
				return PrintJSON(map[string]string{"id": id, "mvcc": newMvcc})
			}
			fmt.Fprintf(Out(), "%s %s\n", id, newMvcc)
			return nil
		},
	}
	return c
}

func newLinkGetCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Read a link record's current head revision",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, id := args[0], args[1]
			r, err := eng.GetLinkRecord(context.Background(), collection, id)

			elog.Event("cmd:link", "get").Detail("collection", collection).Detail("id", id).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("link get: %w", err))
			}
			if JSON() {
				return PrintJSON(r)
			}
			fmt.Fprintf(Out(), "%s %s %s -> %s (%s)\n", r.ID, r.Mvcc(), r.ContextID, r.Href, r.Kind())
			return nil
		},
	}
	return c
}

func newLinkListCmd() *cobra.Command {
	var contextID, authority, kind string
	var includeDeleted bool
	var since, to int64
	var limit int
	c := &cobra.Command{
		Use:   "list <collection>",
		Short: "List head links matching filters (§4.3 list(filters))",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			collection := args[0]
			filter := linkstore.ListFilter{
				Since:          since,
				To:             to,
				ContextID:      contextID,
				Authority:      authority,
				Kind:           linkstore.Kind(kind),
				IncludeDeleted: includeDeleted,
				Limit:          limit,
			}
			if authority != "" {
				filter.AuthorityMatch = linkstore.AuthorityEquals
			}

			rows, err := eng.ListLinkRecords(context.Background(), collection, filter)
			elog.Event("cmd:link", "list").Detail("collection", collection).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("link list: %w", err))
			}
			if JSON() {
				return PrintJSON(rows)
			}
			for _, r := range rows {
				fmt.Fprintf(Out(), "%s %s %s -> %s\n", r.ID, r.Mvcc(), r.ContextID, r.Href)
			}
			return nil
		},
	}
	c.Flags().StringVar(&contextID, "context", "", "Restrict to this context_id")
	c.Flags().StringVar(&authority, "authority", "", "Restrict to this authority")
	c.Flags().StringVar(&kind, "kind", "", "Restrict to web-link or relationship")
	c.Flags().BoolVar(&includeDeleted, "include-deleted", false, "Include tombstoned links")
	c.Flags().Int64Var(&since, "since", 0, "Lower row-id bound")
	c.Flags().Int64Var(&to, "to", 0, "Upper row-id bound (0 = unbounded)")
	c.Flags().IntVar(&limit, "limit", 100, "Maximum rows to return")
	return c
}
