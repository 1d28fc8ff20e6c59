// read.go implements the view's read contract (§4.4.4): get_list,
// get_total, and sync_now for callers that need a consistent snapshot.
package view

import (
	"context"
	"encoding/json"
)

// ListOptions narrows GetList.
type ListOptions struct {
	StartKey    string // normalized key lower bound, inclusive; empty means unbounded
	EndKey      string // normalized key upper bound, inclusive; empty means unbounded
	Descending  bool
	Limit       int
}

// GetList returns rows ordered by the domain collation over key. Reads
// never block the map/reduce workers beyond per-statement locking and
// may observe a trailing edge of stale rows while sync is in flight
// (§4.4.4); call SyncNow first for a consistent snapshot.
func (v *View) GetList(ctx context.Context, opts ListOptions) ([]Row, error) {
	query := `SELECT row_id, pid, key, value FROM rows WHERE 1=1`
	var args []any
	if opts.StartKey != "" {
		query += ` AND key >= ? COLLATE DUPIN_DOMAIN`
		args = append(args, opts.StartKey)
	}
	if opts.EndKey != "" {
		query += ` AND key <= ? COLLATE DUPIN_DOMAIN`
		args = append(args, opts.EndKey)
	}
	order := "ASC"
	if opts.Descending {
		order = "DESC"
	}
	query += ` ORDER BY key COLLATE DUPIN_DOMAIN ` + order
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := v.file.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var pidJSON string
		if err := rows.Scan(&r.RowID, &pidJSON, &r.Key, &r.Value); err != nil {
			return nil, err
		}
		if err := unmarshalPid(pidJSON, &r.Pid); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTotal returns the current row count.
func (v *View) GetTotal(ctx context.Context) (int64, error) {
	var n int64
	err := v.file.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM rows`).Scan(&n)
	return n, err
}

// State returns the view's current lifecycle state and any failure
// message.
func (v *View) State(ctx context.Context) (State, string, error) {
	meta, err := v.loadMeta(ctx)
	if err != nil {
		return "", "", err
	}
	return meta.State, meta.FailMsg, nil
}

// SyncNow runs the map and (if configured) reduce passes to completion,
// giving the caller a consistent snapshot on return (§4.4.4).
func (v *View) SyncNow(ctx context.Context) error {
	v.clearDirty()
	return v.RunMapPass(ctx)
}

func unmarshalPid(pidJSON string, out *[]string) error {
	return json.Unmarshal([]byte(pidJSON), out)
}

// Truncate clears every materialized row and resets the view's
// watermarks to zero, forcing a full re-map/re-reduce from the parent's
// first row on the next SyncNow (§6 "rebuild-indexes": a maintenance
// operation for script or schema changes the incremental sync cannot
// express).
func (v *View) Truncate(ctx context.Context) error {
	if _, err := v.file.DB().ExecContext(ctx, `DELETE FROM rows`); err != nil {
		return err
	}
	_, err := v.file.DB().ExecContext(ctx, `UPDATE view_meta SET
		sync_map_id = 0, sync_reduce_id = 0, sync_rereduce = 0, last_to_delete_id = 0,
		state = 'idle', fail_msg = '' WHERE id = 1`)
	return err
}
