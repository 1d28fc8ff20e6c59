package attachstore

import (
	"context"
	"fmt"

	"github.com/areggiori/dupin-go/internal/dhash"
	"github.com/areggiori/dupin-go/internal/validate"
)

// Put creates or overwrites the attachment (doc_id, title). No revisions
// are kept; an overwrite replaces the row in place (§3 "no revisions;
// overwriting replaces").
func (s *AttachStore) Put(ctx context.Context, docID, title, contentType string, content []byte) error {
	if err := validate.ID(docID); err != nil {
		return fmt.Errorf("doc_id: %w", err)
	}
	if title == "" {
		return fmt.Errorf("%w: title required", validate.ErrInvalidID)
	}
	if s.maxBody > 0 && int64(len(content)) > s.maxBody {
		return validate.ErrContentTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	hash := dhash.Content(content)

	_, err := s.file.DB().ExecContext(ctx, `INSERT INTO attachments
		(doc_id, title, content_type, length, hash, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id, title) DO UPDATE SET
			content_type = excluded.content_type,
			length = excluded.length,
			hash = excluded.hash,
			content = excluded.content,
			created_at = excluded.created_at`,
		docID, title, contentType, len(content), hash, content, nowMicro())
	return err
}

// Delete removes one attachment.
func (s *AttachStore) Delete(ctx context.Context, docID, title string) error {
	res, err := s.file.DB().ExecContext(ctx, `DELETE FROM attachments WHERE doc_id = ? AND title = ?`, docID, title)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return validate.ErrNotFound
	}
	return nil
}

// DeleteByDoc removes every attachment belonging to docID — the
// synchronous cascade a document delete triggers (§4.2, SPEC_FULL §C.3).
func (s *AttachStore) DeleteByDoc(ctx context.Context, docID string) error {
	_, err := s.file.DB().ExecContext(ctx, `DELETE FROM attachments WHERE doc_id = ?`, docID)
	return err
}
