package relstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/areggiori/dupin-go/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAppliesLadderInOrder(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(filepath.Join(dir, "t.db"), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	steps := []Step{
		{Version: 1, Stmts: []string{`CREATE TABLE widgets (id INTEGER PRIMARY KEY)`}},
		{Version: 2, Stmts: []string{`ALTER TABLE widgets ADD COLUMN name TEXT NOT NULL DEFAULT ''`}},
	}
	require.NoError(t, Migrate(context.Background(), f.DB(), steps))

	var version int
	require.NoError(t, f.DB().QueryRow(`PRAGMA user_version`).Scan(&version))
	assert.Equal(t, 2, version)

	_, err = f.DB().Exec(`INSERT INTO widgets (name) VALUES ('x')`)
	require.NoError(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(filepath.Join(dir, "t.db"), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	steps := []Step{{Version: 1, Stmts: []string{`CREATE TABLE widgets (id INTEGER PRIMARY KEY)`}}}
	require.NoError(t, Migrate(context.Background(), f.DB(), steps))
	require.NoError(t, Migrate(context.Background(), f.DB(), steps))
}

func TestMigrateRejectsFutureUserVersion(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(filepath.Join(dir, "t.db"), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	_, err = f.DB().Exec(`PRAGMA user_version=99`)
	require.NoError(t, err)

	err = Migrate(context.Background(), f.DB(), []Step{
		{Version: 1, Stmts: []string{`CREATE TABLE widgets (id INTEGER PRIMARY KEY)`}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrCorruptMetadata))
}

func TestTxRollsBackOnError(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(filepath.Join(dir, "t.db"), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	_, err = f.DB().Exec(`CREATE TABLE widgets (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = f.Tx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO widgets (id) VALUES (1)`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, f.DB().QueryRow(`SELECT COUNT(*) FROM widgets`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestTxCommitsOnSuccess(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(filepath.Join(dir, "t.db"), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	_, err = f.DB().Exec(`CREATE TABLE widgets (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	err = f.Tx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO widgets (id) VALUES (1)`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, f.DB().QueryRow(`SELECT COUNT(*) FROM widgets`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestGenIDIsUniqueAndLowercase(t *testing.T) {
	a, err := GenID()
	require.NoError(t, err)
	b, err := GenID()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, toLower(a))
}

func toLower(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}
