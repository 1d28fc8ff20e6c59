package attachstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/areggiori/dupin-go/internal/validate"
)

// Get returns the full attachment including content.
func (s *AttachStore) Get(ctx context.Context, docID, title string) (*Attachment, error) {
	var a Attachment
	a.DocID, a.Title = docID, title
	err := s.file.DB().QueryRowContext(ctx,
		`SELECT content_type, length, hash, content, created_at FROM attachments WHERE doc_id = ? AND title = ?`,
		docID, title,
	).Scan(&a.ContentType, &a.Length, &a.Hash, &a.Content, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, validate.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns metadata (no content) for every attachment on docID.
func (s *AttachStore) List(ctx context.Context, docID string) ([]Meta, error) {
	rows, err := s.file.DB().QueryContext(ctx,
		`SELECT doc_id, title, content_type, length, hash, created_at FROM attachments WHERE doc_id = ? ORDER BY title ASC`,
		docID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.DocID, &m.Title, &m.ContentType, &m.Length, &m.Hash, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
