// mapper.go implements the map pass (§4.4.1): resume at sync_map_id+1,
// fetch a batch of parent rows, project synthetic fields, invoke the
// map function, and either forward emitted values to an output
// collection (reduce-less cascading view) or persist them as new rows.
package view

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/areggiori/dupin-go/internal/docstore"
)

// RunMapPass drives the map worker until the parent is exhausted for now
// (a short batch) or the pass errors. It is safe to call concurrently
// with itself; a second call while one is in flight is a no-op.
func (v *View) RunMapPass(ctx context.Context) error {
	v.run.mu.Lock()
	if v.run.running {
		v.run.mu.Unlock()
		return nil
	}
	v.run.running = true
	v.run.mu.Unlock()
	defer func() {
		v.run.mu.Lock()
		v.run.running = false
		v.run.mu.Unlock()
	}()

	for {
		if v.quitRequested() {
			return nil
		}
		meta, err := v.loadMeta(ctx)
		if err != nil {
			return fmt.Errorf("view %s: load meta: %w", v.name, err)
		}

		batch, err := v.parent.RowsAfter(ctx, meta.SyncMapID, DefaultBatchSize)
		if err != nil {
			v.setState(ctx, nil, StateFailed, err.Error())
			return fmt.Errorf("view %s: fetch parent batch: %w", v.name, err)
		}
		if len(batch) == 0 {
			break
		}
		if err := v.setState(ctx, nil, StateMapping, ""); err != nil {
			return err
		}

		lastID := batch[len(batch)-1].RowID
		if err := v.mapBatch(ctx, meta, batch, lastID); err != nil {
			v.setState(ctx, nil, StateFailed, err.Error())
			return fmt.Errorf("view %s: map batch: %w", v.name, err)
		}

		if len(batch) < DefaultBatchSize {
			break
		}
	}

	if v.redFn != nil {
		return v.RunReducePass(ctx)
	}
	return v.setState(ctx, nil, StateIdle, "")
}

func (v *View) mapBatch(ctx context.Context, meta Meta, batch []ParentRow, lastParentID int64) error {
	type emit struct {
		pid   string
		key   json.RawMessage
		value json.RawMessage
	}
	var toInsert []emit
	var forwardErr error

	for _, row := range batch {
		if row.Deleted {
			continue
		}
		proj, err := projectDocument(row)
		if err != nil {
			v.setWarning(ctx, fmt.Sprintf("project %s: %v", row.ID, err))
			continue
		}
		kvs, err := v.host.InvokeMap(v.mapFn, proj)
		if err != nil {
			v.setWarning(ctx, fmt.Sprintf("map %s: %v", row.ID, err))
			continue
		}
		for _, kv := range kvs {
			if v.redFn == nil && v.output != nil {
				if _, _, err := v.forwardToOutput(ctx, row.ID, kv.Value); err != nil {
					forwardErr = err
				}
				continue
			}
			toInsert = append(toInsert, emit{pid: row.ID, key: kv.Key, value: kv.Value})
		}
	}

	txErr := v.file.Tx(ctx, func(tx *sql.Tx) error {
		if meta.LastToDeleteID != 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE row_id = ?`, meta.LastToDeleteID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `UPDATE view_meta SET last_to_delete_id = 0 WHERE id = 1`); err != nil {
				return err
			}
		}
		for _, e := range toInsert {
			normKey, err := normalizeOrRaw(e.key)
			if err != nil {
				return err
			}
			pidJSON, err := json.Marshal([]string{e.pid})
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO rows (pid, key, value) VALUES (?, ?, ?)`,
				string(pidJSON), normKey, []byte(e.value)); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE view_meta SET sync_map_id = ? WHERE id = 1`, lastParentID)
		return err
	})
	if txErr != nil {
		return txErr
	}
	// forwardErr is recorded as a warning (forwarding is to a different
	// file and cannot join this transaction) rather than failing the pass.
	if forwardErr != nil {
		v.setWarning(ctx, fmt.Sprintf("forward to output: %v", forwardErr))
	}
	return nil
}

// forwardToOutput bulk-inserts value as a new document in the view's
// output collection (§4.4.1 "forward value to the output via bulk
// insert"), used by reduce-less cascading views.
func (v *View) forwardToOutput(ctx context.Context, sourceID string, value json.RawMessage) (id, mvcc string, err error) {
	return v.output.Create(ctx, value, docstore.CreateOptions{})
}
