package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/areggiori/dupin-go/internal/relstore"
	"github.com/areggiori/dupin-go/internal/validate"
)

// Notifier receives fan-out notifications after a successful commit
// (§4.2 "Fan-out on mutation"). The registry implements this per handle,
// looking up live dependents at call time (§9 "weak references"); a
// failing notifier must never fail the originating mutation (§7).
type Notifier interface {
	NotifyWrite(ctx context.Context, id string, deleted bool)
}

// noopNotifier is used before the registry wires a real one (e.g. in
// standalone tests of the store).
type noopNotifier struct{}

func (noopNotifier) NotifyWrite(context.Context, string, bool) {}

// DocStore implements the Document Store over one embedded file.
type DocStore struct {
	file       *relstore.File
	name       string
	notifier   Notifier
	maxBody    int64
}

// Options configures a DocStore.
type Options struct {
	MaxBodyBytes int64 // 0 means unlimited
}

// Open opens or creates the document store's backing file and migrates it
// to the current schema.
func Open(path, name string, opts Options) (*DocStore, error) {
	f, err := relstore.Open(path, relstore.DefaultOptions())
	if err != nil {
		return nil, err
	}
	if err := relstore.Migrate(context.Background(), f.DB(), schemaSteps); err != nil {
		f.Close()
		return nil, err
	}
	return &DocStore{file: f, name: name, notifier: noopNotifier{}, maxBody: opts.MaxBodyBytes}, nil
}

// Name returns the collection name (registry key).
func (s *DocStore) Name() string { return s.name }

// File exposes the backing embedded file for the registry, compactor, and
// change-feed notifier plumbing.
func (s *DocStore) File() *relstore.File { return s.file }

// Close releases the backing connection.
func (s *DocStore) Close() error { return s.file.Close() }

// SetNotifier wires the fan-out notifier; called once by the registry
// after Create/Open.
func (s *DocStore) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

func scanRevision(row interface{ Scan(dest ...any) error }) (Revision, error) {
	var r Revision
	var deleted int
	var body []byte
	err := row.Scan(&r.RowID, &r.ID, &r.Rev, &r.Hash, &body, &deleted, &r.CreatedAt)
	if err != nil {
		return Revision{}, err
	}
	r.Body = body
	r.Deleted = deleted != 0
	return r, nil
}

func (s *DocStore) scanOne(row *sql.Row) (*Revision, error) {
	r, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, validate.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: scan: %w", err)
	}
	return &r, nil
}

func (s *DocStore) scanMany(rows *sql.Rows) ([]Revision, error) {
	defer rows.Close()
	var out []Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("docstore: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
