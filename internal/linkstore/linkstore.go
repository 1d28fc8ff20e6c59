package linkstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/areggiori/dupin-go/internal/relstore"
	"github.com/areggiori/dupin-go/internal/validate"
)

// Notifier receives fan-out notifications after a successful commit
// (§4.2/§4.3 "Fans out to attached views"). Mirrors docstore.Notifier.
type Notifier interface {
	NotifyWrite(ctx context.Context, linkID string, deleted bool)
}

type noopNotifier struct{}

func (noopNotifier) NotifyWrite(context.Context, string, bool) {}

// ParentExistence checks whether a context_id's parent document exists
// and whether it is tombstoned — the Link Checker's dependency on the
// parent store (§4.5), injected so linkstore never imports docstore
// directly (registry wires the concrete implementation).
type ParentExistence interface {
	Exists(ctx context.Context, id string) (bool, error)
	IsTombstoned(ctx context.Context, id string) (bool, error)
}

// LinkStore implements the Link Store over one embedded file.
type LinkStore struct {
	file     *relstore.File
	name     string
	notifier Notifier
	maxBody  int64
}

// Options configures a LinkStore.
type Options struct {
	MaxBodyBytes int64
}

// Open opens or creates the link store's backing file and migrates it.
func Open(path, name string, opts Options) (*LinkStore, error) {
	f, err := relstore.Open(path, relstore.DefaultOptions())
	if err != nil {
		return nil, err
	}
	if err := relstore.Migrate(context.Background(), f.DB(), schemaSteps); err != nil {
		f.Close()
		return nil, err
	}
	return &LinkStore{file: f, name: name, notifier: noopNotifier{}, maxBody: opts.MaxBodyBytes}, nil
}

func (s *LinkStore) Name() string          { return s.name }
func (s *LinkStore) File() *relstore.File  { return s.file }
func (s *LinkStore) Close() error          { return s.file.Close() }

func (s *LinkStore) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

func scanRevision(row interface{ Scan(dest ...any) error }) (Revision, error) {
	var r Revision
	var deleted, revHead int
	var body []byte
	err := row.Scan(&r.RowID, &r.ID, &r.Rev, &r.Hash, &r.ContextID, &r.Label, &r.Href,
		&r.Rel, &r.Authority, &r.ExpireTM, &body, &deleted, &revHead, &r.CreatedAt)
	if err != nil {
		return Revision{}, err
	}
	r.Body = body
	r.Deleted = deleted != 0
	r.RevHead = revHead != 0
	return r, nil
}

const selectCols = `row_id, id, rev, hash, context_id, label, href, rel, authority, expire_tm, body, deleted, rev_head, created_at`

func (s *LinkStore) scanOne(row *sql.Row) (*Revision, error) {
	r, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, validate.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("linkstore: scan: %w", err)
	}
	return &r, nil
}

func (s *LinkStore) scanMany(rows *sql.Rows) ([]Revision, error) {
	defer rows.Close()
	var out []Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("linkstore: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
