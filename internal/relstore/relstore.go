// Package relstore provides the embedded relational file layer shared by
// every collection kind (document, link, attachment, view). One *File
// wraps one on-disk SQLite
// database, configured identically everywhere so WAL concurrency,
// busy-retry, and the domain collation behave the same for every kind.
//
// Grounded on the teacher's internal/store/sqlite_ops.go: WAL mode plus a
// bounded busy_timeout balances concurrency and durability, and Tx
// centralises the Begin/fn/Commit/Rollback ceremony so callers can't forget
// to roll back on error.
package relstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"fmt"
	"strings"

	// Register sqlite driver and install the domain collation (see
	// internal/collation's init).
	_ "github.com/areggiori/dupin-go/internal/collation"
	_ "modernc.org/sqlite"
)

// File wraps a single embedded SQLite file backing one collection.
type File struct {
	db          *sql.DB
	path        string
	busyTimeout int
}

// Options configures how a File's connection is opened.
type Options struct {
	// BusyTimeoutMS bounds how long a writer waits on contention before
	// the driver reports SQLite's own busy error (§5 "embedded-file
	// busy-retry"); that error is not mapped to ErrBusy.
	BusyTimeoutMS int
	// CacheSizeKB sets SQLite's page cache size (negative pragma units).
	CacheSizeKB int
}

// DefaultOptions mirrors the teacher's Open(): WAL, a 5s busy timeout, and
// synchronous=NORMAL (safe under WAL, far cheaper than FULL).
func DefaultOptions() Options {
	return Options{BusyTimeoutMS: 5000, CacheSizeKB: 2000}
}

// Open opens (creating if absent) the SQLite file at path with the
// engine's standard pragma set.
func Open(path string, opts Options) (*File, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("relstore: open %s: %w", path, err)
	}

	pragmas := []string{
		`PRAGMA journal_mode=WAL`,
		fmt.Sprintf(`PRAGMA busy_timeout=%d`, opts.BusyTimeoutMS),
		`PRAGMA synchronous=NORMAL`,
		`PRAGMA encoding='UTF-8'`,
		fmt.Sprintf(`PRAGMA cache_size=-%d`, opts.CacheSizeKB),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("relstore: %s: %w", p, err)
		}
	}

	return &File{db: db, path: path, busyTimeout: opts.BusyTimeoutMS}, nil
}

// DB exposes the underlying connection for callers (collection
// implementations, migrations, extensions) needing direct access.
func (f *File) DB() *sql.DB { return f.db }

// Path returns the on-disk path this File was opened from.
func (f *File) Path() string { return f.path }

// Close releases the connection.
func (f *File) Close() error { return f.db.Close() }

// Checkpoint flushes the WAL back into the main database file, truncating
// it — matching the teacher's checkpoint.go (clean-shutdown preference
// over crash-recovery speed).
func (f *File) Checkpoint(ctx context.Context) error {
	if _, err := f.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("relstore: checkpoint: %w", err)
	}
	return nil
}

// ReclaimSpace runs the embedded file's space-reclamation operation,
// invoked by the compactor after a batch comes back empty (§4.5).
func (f *File) ReclaimSpace(ctx context.Context) error {
	if _, err := f.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("relstore: vacuum: %w", err)
	}
	return nil
}

// Tx runs fn inside a transaction, committing on success and rolling back
// on error or panic. Mirrors the teacher's Tx helper one-for-one.
func (f *File) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("relstore: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("relstore: commit: %w", err)
	}
	return nil
}

// GenID creates an opaque, collision-resistant identifier for records
// whose id is not caller-supplied. The document store uses it for
// generated document ids; link ids come from uuid instead.
func GenID() (string, error) {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("relstore: generate id: %w", err)
	}
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)), nil
}
