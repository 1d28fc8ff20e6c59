// read.go implements the Link Store's read surface: point lookups, the
// filtered list used by clients, the maintained-counter Count, and the
// insertion-ordered cursor the view engine's map pass walks (§4.3, §4.4.1).
// Grounded on the teacher's internal/store/read.go query-building shape.
package linkstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ByID returns the current head revision of a link.
func (s *LinkStore) ByID(ctx context.Context, id string) (*Revision, error) {
	row := s.file.DB().QueryRowContext(ctx, `SELECT `+selectCols+` FROM links WHERE id = ? AND rev_head = 1`, id)
	return s.scanOne(row)
}

// Exists reports whether a link with this id has an active (non-tombstoned)
// head revision.
func (s *LinkStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.file.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM links WHERE id = ? AND rev_head = 1 AND deleted = 0`, id).Scan(&n)
	return n > 0, err
}

// History returns all revisions of a link, newest first.
func (s *LinkStore) History(ctx context.Context, id string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.file.DB().QueryContext(ctx, `SELECT `+selectCols+` FROM links WHERE id = ? ORDER BY rev DESC LIMIT ?`, id, limit)
	if err != nil {
		return nil, err
	}
	return s.scanMany(rows)
}

// List returns head links matching filter, ordered by row_id ascending
// (§4.3 "list(filters)").
func (s *LinkStore) List(ctx context.Context, filter ListFilter) ([]Revision, error) {
	var where []string
	var args []any

	where = append(where, "rev_head = 1")
	if !filter.IncludeDeleted {
		where = append(where, "deleted = 0")
	}
	if filter.ContextID != "" {
		where = append(where, "context_id = ?")
		args = append(args, filter.ContextID)
	}
	if filter.Since > 0 {
		where = append(where, "row_id > ?")
		args = append(args, filter.Since)
	}
	if filter.To > 0 {
		where = append(where, "row_id <= ?")
		args = append(args, filter.To)
	}
	switch filter.AuthorityMatch {
	case AuthorityEquals:
		where = append(where, "authority = ?")
		args = append(args, filter.Authority)
	case AuthorityContains:
		where = append(where, "authority LIKE ?")
		args = append(args, "%"+filter.Authority+"%")
	case AuthorityStartsWith:
		where = append(where, "authority LIKE ?")
		args = append(args, filter.Authority+"%")
	case AuthorityPresent:
		where = append(where, "authority != ''")
	}

	query := `SELECT ` + selectCols + ` FROM links WHERE ` + strings.Join(where, " AND ") + ` ORDER BY row_id ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.file.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	all, err := s.scanMany(rows)
	if err != nil {
		return nil, err
	}
	if filter.Kind == "" {
		return all, nil
	}
	out := all[:0]
	for _, r := range all {
		if r.Kind() == filter.Kind {
			out = append(out, r)
		}
	}
	return out, nil
}

// Count returns the maintained active/deleted totals for kind (§4.3
// "count(kind)"), avoiding a full-table scan.
func (s *LinkStore) Count(ctx context.Context, kind Kind) (active, deleted int64, err error) {
	err = s.file.DB().QueryRowContext(ctx, `SELECT active, deleted FROM link_totals WHERE kind = ?`, string(kind)).Scan(&active, &deleted)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	return active, deleted, err
}

// RowsAfter returns head-or-not link revisions inserted after since, in
// insertion order, for the view engine's map pass over a link collection
// acting as a parent (§4.4.1).
func (s *LinkStore) RowsAfter(ctx context.Context, since int64, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.file.DB().QueryContext(ctx, `SELECT `+selectCols+` FROM links WHERE row_id > ? ORDER BY row_id ASC LIMIT ?`, since, limit)
	if err != nil {
		return nil, err
	}
	return s.scanMany(rows)
}

// LastSeq returns the highest row_id written so far, 0 if empty.
func (s *LinkStore) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.file.DB().QueryRowContext(ctx, `SELECT MAX(row_id) FROM links`).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq.Int64, nil
}
