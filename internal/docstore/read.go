// read.go implements document retrieval and the change feed query (§4.2,
// §4.6). Grounded on the teacher's internal/store/read.go: latest-version
// reads use MAX(rev) per id; specific-revision reads look up directly and
// intentionally ignore the deleted flag (a caller examining history needs
// the exact point-in-time state regardless of current deletion status).
package docstore

import (
	"context"
	"database/sql"

	"github.com/areggiori/dupin-go/internal/validate"
)

// Read returns a revision. rev == 0 means "latest".
func (s *DocStore) Read(ctx context.Context, id string, rev int) (*Revision, error) {
	if rev == 0 {
		row := s.file.DB().QueryRowContext(ctx, `SELECT row_id, id, rev, hash, body, deleted, created_at
			FROM documents WHERE id = ? ORDER BY rev DESC LIMIT 1`, id)
		return s.scanOne(row)
	}
	row := s.file.DB().QueryRowContext(ctx, `SELECT row_id, id, rev, hash, body, deleted, created_at
		FROM documents WHERE id = ? AND rev = ?`, id, rev)
	return s.scanOne(row)
}

// Exists reports whether id has any revision at all (used by GenerateID's
// collision check, and by the link checker and view read-contract for
// parent existence).
func (s *DocStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.file.DB().QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ? LIMIT 1`, id).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsTombstoned reports whether id's latest revision is a tombstone (used
// by the link integrity checker, §4.5). Returns ErrNotFound if id has no
// revisions at all.
func (s *DocStore) IsTombstoned(ctx context.Context, id string) (bool, error) {
	var deleted int
	err := s.file.DB().QueryRowContext(ctx, `SELECT deleted FROM documents WHERE id = ? ORDER BY rev DESC LIMIT 1`, id).Scan(&deleted)
	if err == sql.ErrNoRows {
		return false, validate.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return deleted != 0, nil
}

// History returns all revisions of id, newest first (§4.6 "changes"
// support and §8 property-test scaffolding).
func (s *DocStore) History(ctx context.Context, id string, limit int) ([]Revision, error) {
	q := `SELECT row_id, id, rev, hash, body, deleted, created_at FROM documents WHERE id = ? ORDER BY rev DESC`
	args := []any{id}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.file.DB().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return s.scanMany(rows)
}

// rowsAfter iterates latest-per-id rows with row_id strictly greater than
// since, ordered by row_id — the insertion-sequence cursor the map pass
// and the change feed both resume from.
func (s *DocStore) rowsAfter(ctx context.Context, since int64, limit int, prefix string) (*sql.Rows, error) {
	q := `SELECT d.row_id, d.id, d.rev, d.hash, d.body, d.deleted, d.created_at
		FROM documents d
		INNER JOIN (SELECT id, MAX(rev) AS maxrev FROM documents GROUP BY id) latest
			ON d.id = latest.id AND d.rev = latest.maxrev
		WHERE d.row_id > ?`
	args := []any{since}
	if prefix != "" {
		q += ` AND d.id LIKE ?`
		args = append(args, prefix+"%")
	}
	q += ` ORDER BY d.row_id ASC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.file.DB().QueryContext(ctx, q, args...)
}

// RowsAfter exposes rowsAfter to the view engine's map pass, which needs
// the same "latest revision per id, ordered by insertion sequence" cursor
// that the change feed uses (§4.4.1).
func (s *DocStore) RowsAfter(ctx context.Context, since int64, limit int) ([]Revision, error) {
	rows, err := s.rowsAfter(ctx, since, limit, "")
	if err != nil {
		return nil, err
	}
	return s.scanMany(rows)
}

// Changes implements the one-shot change feed query (§4.6). Long-poll and
// continuous variants are layered on top by the changefeed package using
// the same query plus Subscribe.
func (s *DocStore) Changes(ctx context.Context, since int64, limit int, filter ChangesFilter) (ChangesPage, error) {
	rows, err := s.rowsAfter(ctx, since, limit, filter.IDPrefix)
	if err != nil {
		return ChangesPage{}, err
	}
	revs, err := s.scanMany(rows)
	if err != nil {
		return ChangesPage{}, err
	}

	page := ChangesPage{LastSeq: since}
	for _, r := range revs {
		page.Items = append(page.Items, ChangeItem{
			Seq:     r.RowID,
			ID:      r.ID,
			Deleted: r.Deleted,
			Rev:     r.Mvcc(),
		})
		if r.RowID > page.LastSeq {
			page.LastSeq = r.RowID
		}
	}
	return page, nil
}

// LastSeq returns the highest row id committed to this store so far,
// used to seed a subscriber's starting cursor.
func (s *DocStore) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.file.DB().QueryRowContext(ctx, `SELECT MAX(row_id) FROM documents`).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq.Int64, nil
}
