// compact.go implements the link store's half of compaction (§4.5),
// including the "purge" variant: when the latest revision of an id is a
// tombstone, every row for that id is removed and the deleted counter
// is decremented.
package linkstore

import (
	"context"
	"database/sql"
)

// CompactBatch deletes superseded revisions (rev < max(rev) per id) and
// purges fully-tombstoned ids for up to limit rows past since.
func (s *LinkStore) CompactBatch(ctx context.Context, since int64, limit int) (deleted int, lastRowID int64, err error) {
	rows, err := s.file.DB().QueryContext(ctx, `SELECT row_id, id FROM links WHERE row_id > ? ORDER BY row_id ASC LIMIT ?`, since, limit)
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
			var headDeleted int
			var kind string
			err := tx.QueryRowContext(ctx, `SELECT deleted, href FROM links WHERE id = ? AND rev_head = 1`, id).Scan(&headDeleted, &kind)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return err
			}

			if headDeleted != 0 {
				k := string((Revision{Href: kind}).Kind())
				res, err := tx.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
				if err != nil {
					return err
				}
				n, err := res.RowsAffected()
				if err != nil {
					return err
				}
				deleted += int(n)
				if err := bumpTotal(ctx, tx, k, 0, -1); err != nil {
					return err
				}
				continue
			}

			res, err := tx.ExecContext(ctx, `DELETE FROM links WHERE id = ? AND rev < (SELECT MAX(rev) FROM links WHERE id = ?)`, id, id)
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
