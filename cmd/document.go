// document.go implements the "doc" command group over document CRUD,
// bulk insert, and the change feed, grounded on the teacher's per-verb
// command files (cat/write/rm) each wrapping one service call plus a
// structured log event.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/areggiori/dupin-go/internal/cliprogress"
	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/spf13/cobra"
)

func init() {
	docCmd := &cobra.Command{
		Use:   "doc",
		Short: "Document CRUD, bulk insert, and change feed",
	}
	docCmd.AddCommand(newDocPutCmd())
	docCmd.AddCommand(newDocGetCmd())
	docCmd.AddCommand(newDocDeleteCmd())
	docCmd.AddCommand(newDocBulkInsertCmd())
	docCmd.AddCommand(newDocChangesCmd())
	rootCmd.AddCommand(docCmd)
}

func newDocPutCmd() *cobra.Command {
	var id, mvcc string
	c := &cobra.Command{
		Use:   "put <collection> <json-body>",
		Short: "Create or update a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, body := args[0], args[1]
			newID, newMvcc, err := eng.PutDocument(context.Background(), collection, id, json.RawMessage(body), mvcc)

			elog.Event("cmd:doc", "put").Detail("collection", collection).Detail("id", id).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("doc put: %w", err))
			}
			if JSON() {
				return PrintJSON(map[string]string{"id": newID, "mvcc": newMvcc})
			}
			fmt.Fprintf(Out(), "%s %s\n", newID, newMvcc)
			return nil
		},
	}
	c.Flags().StringVar(&id, "id", "", "Document id (create only; generated when empty)")
	c.Flags().StringVar(&mvcc, "mvcc", "", "Current mvcc token (update only)")
	return c
}

func newDocGetCmd() *cobra.Command {
	var rev int
	c := &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Read a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, id := args[0], args[1]
			r, err := eng.GetDocument(context.Background(), collection, id, rev)

			elog.Event("cmd:doc", "get").Detail("collection", collection).Detail("id", id).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("doc get: %w", err))
			}
			if JSON() {
				return PrintJSON(r)
			}
			fmt.Fprintf(Out(), "%s %s\n%s\n", r.ID, r.Mvcc(), string(r.Body))
			return nil
		},
	}
	c.Flags().IntVar(&rev, "rev", 0, "Specific revision to read (default: latest)")
	return c
}

func newDocDeleteCmd() *cobra.Command {
	var mvcc string
	c := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Tombstone a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, id := args[0], args[1]
			newMvcc, err := eng.DeleteDocument(context.Background(), collection, id, mvcc)

			elog.Event("cmd:doc", "delete").Detail("collection", collection).Detail("id", id).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("doc delete: %w", err))
			}
			if JSON() {
				return PrintJSON(map[string]string{"id": id, "mvcc": newMvcc})
			}
			fmt.Fprintf(Out(), "%s %s\n", id, newMvcc)
			return nil
		},
	}
	c.Flags().StringVar(&mvcc, "mvcc", "", "Current mvcc token")
	return c
}

func newDocBulkInsertCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "bulk-insert <collection> <json-array-file>",
		Short: "Apply a batch of records independently (§6 bulk-insert)",
		Long:  `Each array element is {"id":"...","body":{...},"mvcc":"...","delete":false}; id/mvcc/delete are optional.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			collection, path := args[0], args[1]
			data, err := readFileOrStdin(path)
			if err != nil {
				return PrintJSONError(err)
			}

			var records []docstore.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return PrintJSONError(fmt.Errorf("bulk-insert: parse input: %w", err))
			}

			results, err := eng.BulkInsert(context.Background(), collection, records)
			elog.Event("cmd:doc", "bulk-insert").Detail("collection", collection).Detail("count", len(records)).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("bulk-insert: %w", err))
			}
			if JSON() {
				return PrintJSON(results)
			}
			prog := cliprogress.New("bulk-insert "+collection, len(results))
			for _, r := range results {
				prog.Increment()
				prog.Print()
				if r.Err != nil {
					fmt.Fprintf(Out(), "%s error: %v\n", r.ID, r.Err)
					continue
				}
				fmt.Fprintf(Out(), "%s %s\n", r.ID, r.NewMvcc)
			}
			prog.Done()
			return nil
		},
	}
	return c
}

func newDocChangesCmd() *cobra.Command {
	var since int64
	var limit int
	c := &cobra.Command{
		Use:   "changes <collection>",
		Short: "Dump one page of the change feed (§6 changes-dump)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			collection := args[0]
			page, err := eng.ChangesDump(context.Background(), collection, since, limit)

			elog.Event("cmd:doc", "changes").Detail("collection", collection).Detail("since", since).Write(err)
			if err != nil {
				return PrintJSONError(fmt.Errorf("doc changes: %w", err))
			}
			if JSON() {
				return PrintJSON(page)
			}
			for _, it := range page.Items {
				fmt.Fprintf(Out(), "%d %s %s deleted=%v\n", it.Seq, it.ID, it.Rev, it.Deleted)
			}
			return nil
		},
	}
	c.Flags().Int64Var(&since, "since", 0, "Return changes after this sequence number")
	c.Flags().IntVar(&limit, "limit", 100, "Maximum rows to return")
	return c
}
