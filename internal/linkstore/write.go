// write.go implements link creation, update, delete, and the cascade
// triggered when a link's context document is deleted (§4.2 fan-out,
// §4.3). Grounded on the teacher's internal/store/write.go transaction
// shape, generalised with the rev_head flag invariant 3 requires and the
// maintained per-kind totals invariant 5 requires.
package linkstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/areggiori/dupin-go/internal/dhash"
	"github.com/areggiori/dupin-go/internal/mvcc"
	"github.com/areggiori/dupin-go/internal/validate"
	"github.com/google/uuid"
)

// Create inserts revision 1 of a new link (§4.3: context_id and label are
// required; href classifies the kind).
func (s *LinkStore) Create(ctx context.Context, p CreateParams) (id, mvccTok string, err error) {
	if err := validate.ID(p.ContextID); err != nil {
		return "", "", fmt.Errorf("context_id: %w", err)
	}
	if p.Label == "" {
		return "", "", fmt.Errorf("%w: label required", validate.ErrInvalidID)
	}
	if p.Href == "" {
		return "", "", fmt.Errorf("%w: href required", validate.ErrInvalidID)
	}
	if err := validate.JSONBody(p.Body, s.maxBody); err != nil {
		return "", "", err
	}

	id = uuid.NewString()
	hash := dhash.Content(p.Body)
	now := time.Now().UnixMicro()
	kind := string((Revision{Href: p.Href}).Kind())

	err = s.file.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO links
			(id, rev, hash, context_id, label, href, rel, authority, expire_tm, body, deleted, rev_head, created_at)
			VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?, 0, 1, ?)`,
			id, hash, p.ContextID, p.Label, p.Href, p.Rel, p.Authority, p.ExpireTM, []byte(p.Body), now)
		if err != nil {
			return err
		}
		return bumpTotal(ctx, tx, kind, 1, 0)
	})
	if err != nil {
		return "", "", err
	}

	s.notifier.NotifyWrite(ctx, id, false)
	return id, mvcc.New(1, hash).String(), nil
}

// Update writes a new revision of an existing link, clearing rev_head on
// the prior head and setting it on the new one atomically (invariant 3).
func (s *LinkStore) Update(ctx context.Context, id, supplied string, p CreateParams) (newMvcc string, err error) {
	if err := validate.JSONBody(p.Body, s.maxBody); err != nil {
		return "", err
	}
	hash := dhash.Content(p.Body)
	now := time.Now().UnixMicro()

	var newRev int
	err = s.file.Tx(ctx, func(tx *sql.Tx) error {
		var curRev int
		var curHash string
		err := tx.QueryRowContext(ctx, `SELECT rev, hash FROM links WHERE id = ? AND rev_head = 1`, id).Scan(&curRev, &curHash)
		if err == sql.ErrNoRows {
			return validate.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := mvcc.CheckUpdate(supplied, mvcc.New(curRev, curHash).String()); err != nil {
			return err
		}
		newRev = curRev + 1
		if _, err := tx.ExecContext(ctx, `UPDATE links SET rev_head = 0 WHERE id = ? AND rev_head = 1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO links
			(id, rev, hash, context_id, label, href, rel, authority, expire_tm, body, deleted, rev_head, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 1, ?)`,
			id, newRev, hash, p.ContextID, p.Label, p.Href, p.Rel, p.Authority, p.ExpireTM, []byte(p.Body), now)
		return err
	})
	if err != nil {
		return "", err
	}
	s.notifier.NotifyWrite(ctx, id, false)
	return mvcc.New(newRev, hash).String(), nil
}

// Delete tombstones a link by id.
func (s *LinkStore) Delete(ctx context.Context, id, supplied string) (newMvcc string, err error) {
	var newRev int
	var hash string
	var kind string
	err = s.file.Tx(ctx, func(tx *sql.Tx) error {
		var curRev int
		var curHash, href string
		err := tx.QueryRowContext(ctx, `SELECT rev, hash, href FROM links WHERE id = ? AND rev_head = 1`, id).Scan(&curRev, &curHash, &href)
		if err == sql.ErrNoRows {
			return validate.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := mvcc.CheckUpdate(supplied, mvcc.New(curRev, curHash).String()); err != nil {
			return err
		}
		kind = string((Revision{Href: href}).Kind())
		hash = dhash.Content([]byte("null"))
		newRev = curRev + 1
		if _, err := tx.ExecContext(ctx, `UPDATE links SET rev_head = 0 WHERE id = ? AND rev_head = 1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO links
			(id, rev, hash, context_id, label, href, rel, authority, expire_tm, body, deleted, rev_head, created_at)
			SELECT ?, ?, ?, context_id, label, href, rel, authority, expire_tm, ?, 1, 1, ?
			FROM links WHERE id = ? AND rev = ?`,
			id, newRev, hash, []byte("null"), time.Now().UnixMicro(), id, curRev)
		if err != nil {
			return err
		}
		return bumpTotal(ctx, tx, kind, -1, 1)
	})
	if err != nil {
		return "", err
	}
	s.notifier.NotifyWrite(ctx, id, true)
	return mvcc.New(newRev, hash).String(), nil
}

// TombstoneByContext tombstones every active link whose context_id is id,
// the cascade a document delete triggers (§4.2 "for link stores — ...
// delete notifies the link store with context_id").
func (s *LinkStore) TombstoneByContext(ctx context.Context, contextID string) error {
	rows, err := s.file.DB().QueryContext(ctx, `SELECT id FROM links WHERE context_id = ? AND rev_head = 1 AND deleted = 0`, contextID)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		var curRev int
		var curHash string
		err := s.file.DB().QueryRowContext(ctx, `SELECT rev, hash FROM links WHERE id = ? AND rev_head = 1`, id).Scan(&curRev, &curHash)
		if err != nil {
			continue
		}
		if _, err := s.Delete(ctx, id, mvcc.New(curRev, curHash).String()); err != nil {
			return err
		}
	}
	return nil
}

// bumpTotal maintains invariant 5's per-kind counters inline with the
// write, avoiding a full-table scan for Count (§4.3).
func bumpTotal(ctx context.Context, tx *sql.Tx, kind string, activeDelta, deletedDelta int) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO link_totals (kind, active, deleted) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET active = active + ?, deleted = deleted + ?`,
		kind, max0(activeDelta), max0(deletedDelta), activeDelta, deletedDelta)
	return err
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
