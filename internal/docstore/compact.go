// compact.go implements the document store's half of compaction (§4.5):
// walk row ids in order and, for each distinct id touched, delete every
// revision superseded by that id's current maximum revision.
package docstore

import (
	"context"
	"database/sql"
)

// CompactBatch processes up to limit rows past since, deleting superseded
// revisions for every id the batch touches. It returns the number of
// revisions deleted and the highest row id examined (0 rows means the
// batch was empty — the caller has reached the end).
func (s *DocStore) CompactBatch(ctx context.Context, since int64, limit int) (deleted int, lastRowID int64, err error) {
	rows, err := s.file.DB().QueryContext(ctx, `SELECT row_id, id FROM documents WHERE row_id > ? ORDER BY row_id ASC LIMIT ?`, since, limit)
	if err != nil {
		return 0, 0, err
	}
	seen := map[string]bool{}
	var ids []string
	for rows.Next() {
		var rowID int64
		var id string
		if err := rows.Scan(&rowID, &id); err != nil {
			rows.Close()
			return 0, 0, err
		}
		if rowID > lastRowID {
			lastRowID = rowID
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}
	if lastRowID == 0 {
		return 0, 0, nil
	}

	err = s.file.Tx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND rev < (SELECT MAX(rev) FROM documents WHERE id = ?)`, id, id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			deleted += int(n)
		}
		return nil
	})
	return deleted, lastRowID, err
}
