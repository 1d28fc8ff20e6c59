// write.go implements document creation, update, and delete (§4.2).
//
// Grounded on the teacher's internal/store/write.go: the new revision
// number is computed as MAX(rev)+1 inside the same transaction that
// inserts the row, preventing the race the teacher's comment calls out
// for concurrent writers on one id.
package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/areggiori/dupin-go/internal/dhash"
	"github.com/areggiori/dupin-go/internal/mvcc"
	"github.com/areggiori/dupin-go/internal/relstore"
	"github.com/areggiori/dupin-go/internal/validate"
)

// Create inserts revision 1 of a new document. If opts.ID is empty, an id
// is generated (retrying on collision, §4.2 "generate_id").
func (s *DocStore) Create(ctx context.Context, body []byte, opts CreateOptions) (id, mvccTok string, err error) {
	if err := validate.JSONBody(body, s.maxBody); err != nil {
		return "", "", err
	}

	id = opts.ID
	if id == "" {
		id, err = s.GenerateID(ctx)
		if err != nil {
			return "", "", err
		}
	} else if err := validate.ID(id); err != nil {
		return "", "", err
	}

	hash := dhash.Content(body)
	now := time.Now().UnixMicro()

	err = s.file.Tx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ? LIMIT 1`, id).Scan(&exists); err == nil {
			return validate.ErrAlreadyExists
		} else if err != sql.ErrNoRows {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO documents (id, rev, hash, body, deleted, created_at)
			VALUES (?, 1, ?, ?, 0, ?)`, id, hash, []byte(body), now)
		return err
	})
	if err != nil {
		return "", "", err
	}

	mvccTok = mvcc.New(1, hash).String()
	s.notifier.NotifyWrite(ctx, id, false)
	return id, mvccTok, nil
}

// Update writes a new revision, enforcing invariant 2: supplied must equal
// the current token (§3).
func (s *DocStore) Update(ctx context.Context, id, supplied string, body []byte) (newMvcc string, err error) {
	if err := validate.ID(id); err != nil {
		return "", err
	}
	if err := validate.JSONBody(body, s.maxBody); err != nil {
		return "", err
	}

	hash := dhash.Content(body)
	now := time.Now().UnixMicro()

	var newRev int
	err = s.file.Tx(ctx, func(tx *sql.Tx) error {
		var curRev int
		var curHash string
		err := tx.QueryRowContext(ctx, `SELECT rev, hash FROM documents WHERE id = ? ORDER BY rev DESC LIMIT 1`, id).Scan(&curRev, &curHash)
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
		_, err = tx.ExecContext(ctx, `INSERT INTO documents (id, rev, hash, body, deleted, created_at)
			VALUES (?, ?, ?, ?, 0, ?)`, id, newRev, hash, []byte(body), now)
		return err
	})
	if err != nil {
		return "", err
	}

	s.notifier.NotifyWrite(ctx, id, false)
	return mvcc.New(newRev, hash).String(), nil
}

// Delete writes a tombstone revision (§3 "a document whose latest revision
// has deleted=true is a tombstone").
func (s *DocStore) Delete(ctx context.Context, id, supplied string) (newMvcc string, err error) {
	if err := validate.ID(id); err != nil {
		return "", err
	}
	now := time.Now().UnixMicro()
	hash := dhash.Content([]byte("null"))

	var newRev int
	err = s.file.Tx(ctx, func(tx *sql.Tx) error {
		var curRev int
		var curHash string
		var curDeleted int
		err := tx.QueryRowContext(ctx, `SELECT rev, hash, deleted FROM documents WHERE id = ? ORDER BY rev DESC LIMIT 1`, id).Scan(&curRev, &curHash, &curDeleted)
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
		_, err = tx.ExecContext(ctx, `INSERT INTO documents (id, rev, hash, body, deleted, created_at)
			VALUES (?, ?, ?, ?, 1, ?)`, id, newRev, hash, []byte("null"), now)
		return err
	})
	if err != nil {
		return "", err
	}

	s.notifier.NotifyWrite(ctx, id, true)
	return mvcc.New(newRev, hash).String(), nil
}

// GenerateID returns a random printable id that does not currently exist,
// retrying on collision (§4.2).
func (s *DocStore) GenerateID(ctx context.Context) (string, error) {
	const maxAttempts = 8
	for i := 0; i < maxAttempts; i++ {
		id, err := relstore.GenID()
		if err != nil {
			return "", err
		}
		exists, err := s.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("docstore: could not generate unique id after %d attempts", maxAttempts)
}

// Bulk applies each record independently (§4.2 "atomic w.r.t. each record,
// not across records"): one record's failure does not roll back another's
// success.
func (s *DocStore) Bulk(ctx context.Context, records []Record) []Result {
	out := make([]Result, len(records))
	for i, rec := range records {
		switch {
		case rec.Delete:
			mv, err := s.Delete(ctx, rec.ID, rec.Mvcc)
			out[i] = Result{ID: rec.ID, NewMvcc: mv, Err: err}
		case rec.Mvcc == "" && rec.ID == "":
			id, mv, err := s.Create(ctx, rec.Body, CreateOptions{})
			out[i] = Result{ID: id, NewMvcc: mv, Err: err}
		case rec.Mvcc == "":
			id, mv, err := s.Create(ctx, rec.Body, CreateOptions{ID: rec.ID})
			out[i] = Result{ID: id, NewMvcc: mv, Err: err}
		default:
			mv, err := s.Update(ctx, rec.ID, rec.Mvcc, rec.Body)
			out[i] = Result{ID: rec.ID, NewMvcc: mv, Err: err}
		}
	}
	return out
}
