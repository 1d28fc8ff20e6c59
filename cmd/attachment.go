// attachment.go implements the "att" command group over unversioned
// blob attachments keyed by (doc_id, title) (§3, §4.2).
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/spf13/cobra"
)

func init() {
	attCmd := &cobra.Command{
		Use:   "att",
		Short: "Attachment blob CRUD",
	}
	attCmd.AddCommand(newAttPutCmd())
	attCmd.AddCommand(newAttGetCmd())
	attCmd.AddCommand(newAttListCmd())
	attCmd.AddCommand(newAttDeleteCmd())
	rootCmd.AddCommand(attCmd)
}

func newAttPutCmd() *cobra.Command {
	var contentType string
	c := &cobra.Command{
		Use:   "put <collection> <doc-id> <title> <file>",
		Short: "Create or overwrite an attachment",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, docID, title, path := args[0], args[1], args[2], args[3]
			data, err := readFileOrStdin(path)
			if err != nil {
				return PrintJSONError(err)
			}

			err = eng.PutAttachment(context.Background(), collection, docID, title, contentType, data)
			elog.Event("cmd:att", "put").Detail("collection", collection).Detail("doc_id", docID).Detail("title", title).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("att put: %w", err))
			}
			fmt.Fprintf(Out(), "put %s/%s %s (%d bytes)\n", docID, title, contentType, len(data))
			return nil
		},
	}
	c.Flags().StringVar(&contentType, "content-type", "application/octet-stream", "MIME type")
	return c
}

func newAttGetCmd() *cobra.Command {
	var dest string
	c := &cobra.Command{
		Use:   "get <collection> <doc-id> <title>",
		Short: "Read an attachment's content",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, docID, title := args[0], args[1], args[2]
			a, err := eng.GetAttachment(context.Background(), collection, docID, title)

			elog.Event("cmd:att", "get").Detail("collection", collection).Detail("doc_id", docID).Detail("title", title).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("att get: %w", err))
			}
			if dest != "" {
				return os.WriteFile(dest, a.Content, 0o644)
			}
			if JSON() {
				return PrintJSON(map[string]any{
					"doc_id": a.DocID, "title": a.Title, "content_type": a.ContentType,
					"length": a.Length, "hash": a.Hash,
				})
			}
			_, err = Out().Write(a.Content)
			return err
		},
	}
	c.Flags().StringVar(&dest, "out", "", "Write content to this file instead of stdout")
	return c
}

func newAttListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list <collection> <doc-id>",
		Short: "List attachment metadata for a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, docID := args[0], args[1]
			metas, err := eng.ListAttachments(context.Background(), collection, docID)

			elog.Event("cmd:att", "list").Detail("collection", collection).Detail("doc_id", docID).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("att list: %w", err))
			}
			if JSON() {
				return PrintJSON(metas)
			}
			for _, m := range metas {
				fmt.Fprintf(Out(), "%s %s %d\n", m.Title, m.ContentType, m.Length)
			}
			return nil
		},
	}
	return c
}

func newAttDeleteCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "delete <collection> <doc-id> <title>",
		Short: "Delete one attachment",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, docID, title := args[0], args[1], args[2]
			err := eng.DeleteAttachment(context.Background(), collection, docID, title)

			elog.Event("cmd:att", "delete").Detail("collection", collection).Detail("doc_id", docID).Detail("title", title).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("att delete: %w", err))
			}
			fmt.Fprintf(Out(), "deleted %s/%s\n", docID, title)
			return nil
		},
	}
	return c
}
