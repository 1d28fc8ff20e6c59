package docstore

import "github.com/areggiori/dupin-go/internal/relstore"

// schemaSteps is the document store's fixed migration ladder (§6). Each
// step is additive; the table is designed so that later steps only ever
// ALTER/CREATE INDEX, never rewrite existing columns, matching the
// teacher's "IF NOT EXISTS" idempotency discipline.
var schemaSteps = []relstore.Step{
	{Version: 1, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS documents (
			row_id     INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL,
			rev        INTEGER NOT NULL,
			hash       TEXT NOT NULL,
			body       BLOB NOT NULL,
			deleted    INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
	}},
	{Version: 2, Stmts: []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_id_rev ON documents(id, rev)`,
	}},
	{Version: 3, Stmts: []string{
		`CREATE INDEX IF NOT EXISTS documents_id_rowid ON documents(id, row_id)`,
	}},
	{Version: 4, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS doc_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		)`,
	}},
	{Version: 5, Stmts: []string{
		`CREATE INDEX IF NOT EXISTS documents_deleted ON documents(deleted)`,
	}},
}
