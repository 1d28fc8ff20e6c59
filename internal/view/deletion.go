// deletion.go implements deletion propagation (§4.4.3) and the view's
// side of the fan-out contract: it satisfies both docstore.Notifier and
// linkstore.Notifier (identical method shape) so the registry can wire a
// view as a dependent of either store without either store importing
// the view package.
package view

import (
	"context"
	"encoding/json"
)

// NotifyWrite is called by the parent store after a committed write. A
// plain insert/update just wakes the map worker; a delete triggers
// deletion propagation for the deleted parent id.
func (v *View) NotifyWrite(ctx context.Context, parentID string, deleted bool) {
	if deleted {
		if err := v.propagateDelete(ctx, parentID); err != nil {
			v.setWarning(ctx, "deletion propagation: "+err.Error())
		}
		return
	}
	v.run.mu.Lock()
	v.run.dirty = true
	v.run.mu.Unlock()
}

// Dirty reports whether the view has pending work since the last sync
// pass, for a worker pool's scheduling loop.
func (v *View) Dirty() bool {
	v.run.mu.Lock()
	defer v.run.mu.Unlock()
	return v.run.dirty
}

func (v *View) clearDirty() {
	v.run.mu.Lock()
	v.run.dirty = false
	v.run.mu.Unlock()
}

// propagateDelete deletes every row whose pid array contains parentID,
// except the row with the maximum row id, which is instead flagged via
// last_to_delete_id and removed atomically in the transaction of the next
// map batch, together with any insertions it makes (§4.4.3) — this keeps
// the row id sequence from regressing.
func (v *View) propagateDelete(ctx context.Context, parentID string) error {
	rows, err := v.rowsContainingPid(ctx, parentID)
	if err != nil || len(rows) == 0 {
		return err
	}

	var maxRow int64
	for _, r := range rows {
		if r.RowID > maxRow {
			maxRow = r.RowID
		}
	}

	for _, r := range rows {
		if r.RowID == maxRow {
			continue
		}
		if _, err := v.file.DB().ExecContext(ctx, `DELETE FROM rows WHERE row_id = ?`, r.RowID); err != nil {
			return err
		}
	}

	_, err = v.file.DB().ExecContext(ctx, `UPDATE view_meta SET last_to_delete_id = ? WHERE id = 1`, maxRow)
	return err
}

func (v *View) rowsContainingPid(ctx context.Context, parentID string) ([]Row, error) {
	// pid is stored as a JSON array string; LIKE is a conservative
	// pre-filter, exact membership is re-checked in Go since a substring
	// match could false-positive on a prefix-sharing id.
	rs, err := v.file.DB().QueryContext(ctx, `SELECT row_id, pid, key, value FROM rows WHERE pid LIKE ?`, "%\""+parentID+"\"%")
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []Row
	for rs.Next() {
		var r Row
		var pidJSON string
		var key, value []byte
		if err := rs.Scan(&r.RowID, &pidJSON, &key, &value); err != nil {
			return nil, err
		}
		r.Key, r.Value = key, value
		var pid []string
		if err := json.Unmarshal([]byte(pidJSON), &pid); err != nil {
			continue
		}
		for _, id := range pid {
			if id == parentID {
				r.Pid = pid
				out = append(out, r)
				break
			}
		}
	}
	return out, rs.Err()
}
