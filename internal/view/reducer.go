// reducer.go implements the reduce and re-reduce passes (§4.4.2):
// group mapped rows by key, invoke the reduce function per group,
// compress each group to its single maximum-row-id row, then detect and
// resolve residual duplicate-key groups via re-reduce until the view
// converges or a malformed group is checkpoint-skipped.
package view

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type reduceGroup struct {
	key     string
	rows    []Row
	maxRow  int64
}

// RunReducePass drives the reduce worker: first pass over newly mapped
// rows, then re-reduce passes until no key occurs more than once.
func (v *View) RunReducePass(ctx context.Context) error {
	if v.redFn == nil {
		return v.setState(ctx, nil, StateIdle, "")
	}
	if err := v.setState(ctx, nil, StateReducing, ""); err != nil {
		return err
	}

	for {
		if v.quitRequested() {
			return nil
		}
		meta, err := v.loadMeta(ctx)
		if err != nil {
			return err
		}
		rows, err := v.fetchRowsSince(ctx, meta.SyncReduceID, DefaultBatchSize)
		if err != nil {
			v.setState(ctx, nil, StateFailed, err.Error())
			return err
		}
		if len(rows) == 0 {
			break
		}

		if err := v.reduceGroups(ctx, rows, false, meta.SyncReduceID); err != nil {
			v.setState(ctx, nil, StateFailed, err.Error())
			return err
		}
		if len(rows) < DefaultBatchSize {
			break
		}
	}

	return v.reReduceLoop(ctx)
}

func (v *View) fetchRowsSince(ctx context.Context, since int64, limit int) ([]Row, error) {
	rs, err := v.file.DB().QueryContext(ctx, `SELECT row_id, pid, key, value FROM rows WHERE row_id > ? ORDER BY row_id ASC LIMIT ?`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []Row
	for rs.Next() {
		var r Row
		var pidJSON string
		if err := rs.Scan(&r.RowID, &pidJSON, &r.Key, &r.Value); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(pidJSON), &r.Pid)
		out = append(out, r)
	}
	return out, rs.Err()
}

// reduceGroups groups rows by key, invokes reduce on each group, and
// compresses every group to its highest row_id row; on a first
// (non-rereduce) pass, sync_reduce_id is advanced past the processed
// batch in the same transaction.
func (v *View) reduceGroups(ctx context.Context, rows []Row, rereduce bool, sinceWatermark int64) error {
	order := make([]string, 0, len(rows))
	groups := map[string]*reduceGroup{}
	for _, r := range rows {
		g, ok := groups[string(r.Key)]
		if !ok {
			g = &reduceGroup{key: string(r.Key)}
			groups[string(r.Key)] = g
			order = append(order, string(r.Key))
		}
		g.rows = append(g.rows, r)
		if r.RowID > g.maxRow {
			g.maxRow = r.RowID
		}
	}

	var lastID int64
	for _, r := range rows {
		if r.RowID > lastID {
			lastID = r.RowID
		}
	}

	return v.file.Tx(ctx, func(tx *sql.Tx) error {
		for _, key := range order {
			g := groups[key]
			if err := v.compressGroup(ctx, tx, g, rereduce); err != nil {
				return err
			}
		}
		if !rereduce {
			_, err := tx.ExecContext(ctx, `UPDATE view_meta SET sync_reduce_id = ? WHERE id = 1`, lastID)
			return err
		}
		return nil
	})
}

func (v *View) compressGroup(ctx context.Context, tx *sql.Tx, g *reduceGroup, rereduce bool) error {
	values := make([]json.RawMessage, len(g.rows))
	var pairs []any
	var pid []string
	for i, r := range g.rows {
		values[i] = r.Value
		pairs = append(pairs, []any{r.Key, r.Pid})
		pid = append(pid, r.Pid...)
	}

	var keysArg json.RawMessage
	if !rereduce {
		b, err := json.Marshal(pairs)
		if err != nil {
			return err
		}
		keysArg = b
	}

	reduced, err := v.host.InvokeReduce(v.redFn, keysArg, values, rereduce)
	if err != nil {
		v.setWarning(ctx, fmt.Sprintf("reduce key %s: %v", g.key, err))
		return nil
	}

	for _, r := range g.rows {
		if r.RowID != g.maxRow {
			if _, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE row_id = ?`, r.RowID); err != nil {
				return err
			}
		}
	}
	pidJSON, err := json.Marshal(pid)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE rows SET pid = ?, value = ? WHERE row_id = ?`, string(pidJSON), []byte(reduced), g.maxRow)
	return err
}

// reReduceLoop detects residual duplicate-key groups and collapses them
// until none remain, checkpoint-skipping a group that fails to converge
// across two consecutive passes (§4.4.2).
func (v *View) reReduceLoop(ctx context.Context) error {
	for {
		if v.quitRequested() {
			return nil
		}
		key, found, err := v.firstDuplicateKey(ctx)
		if err != nil {
			return err
		}
		if !found {
			v.run.mu.Lock()
			v.run.lastOffendingKey = ""
			v.run.mu.Unlock()
			if _, err := v.file.DB().ExecContext(ctx, `UPDATE view_meta SET sync_rereduce = 0 WHERE id = 1`); err != nil {
				return err
			}
			return v.setState(ctx, nil, StateIdle, "")
		}

		if _, err := v.file.DB().ExecContext(ctx, `UPDATE view_meta SET sync_rereduce = 1 WHERE id = 1`); err != nil {
			return err
		}
		if err := v.setState(ctx, nil, StateReReduce, ""); err != nil {
			return err
		}

		v.run.mu.Lock()
		sameAsLast := v.run.lastOffendingKey == key
		v.run.lastOffendingKey = key
		v.run.mu.Unlock()

		if sameAsLast {
			if _, err := v.file.DB().ExecContext(ctx, `DELETE FROM rows WHERE key = ?`, key); err != nil {
				return err
			}
			v.setWarning(ctx, fmt.Sprintf("re-reduce: dropped malformed group for key %s after repeated failure to converge", key))
			continue
		}

		rows, err := v.rowsForKey(ctx, key)
		if err != nil {
			return err
		}
		if len(rows) <= 1 {
			continue
		}
		if err := v.reduceGroups(ctx, rows, true, 0); err != nil {
			return err
		}
	}
}

func (v *View) firstDuplicateKey(ctx context.Context) (string, bool, error) {
	var key string
	err := v.file.DB().QueryRowContext(ctx, `SELECT key FROM rows GROUP BY key HAVING COUNT(*) > 1 ORDER BY key COLLATE DUPIN_DOMAIN LIMIT 1`).Scan(&key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

func (v *View) rowsForKey(ctx context.Context, key string) ([]Row, error) {
	rs, err := v.file.DB().QueryContext(ctx, `SELECT row_id, pid, key, value FROM rows WHERE key = ? ORDER BY row_id ASC`, key)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var out []Row
	for rs.Next() {
		var r Row
		var pidJSON string
		if err := rs.Scan(&r.RowID, &pidJSON, &r.Key, &r.Value); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(pidJSON), &r.Pid)
		out = append(out, r)
	}
	return out, rs.Err()
}
