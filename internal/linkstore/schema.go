package linkstore

import "github.com/areggiori/dupin-go/internal/relstore"

var schemaSteps = []relstore.Step{
	{Version: 1, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS links (
			row_id     INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL,
			rev        INTEGER NOT NULL,
			hash       TEXT NOT NULL,
			context_id TEXT NOT NULL,
			label      TEXT NOT NULL,
			href       TEXT NOT NULL,
			rel        TEXT NOT NULL DEFAULT '',
			authority  TEXT NOT NULL DEFAULT '',
			expire_tm  INTEGER NOT NULL DEFAULT 0,
			body       BLOB NOT NULL,
			deleted    INTEGER NOT NULL DEFAULT 0,
			rev_head   INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
	}},
	{Version: 2, Stmts: []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS links_id_rev ON links(id, rev)`,
		`CREATE INDEX IF NOT EXISTS links_context ON links(context_id)`,
	}},
	{Version: 3, Stmts: []string{
		`CREATE INDEX IF NOT EXISTS links_rev_head ON links(id) WHERE rev_head = 1`,
	}},
	{Version: 4, Stmts: []string{
		`CREATE INDEX IF NOT EXISTS links_authority ON links(authority)`,
	}},
	{Version: 5, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS link_totals (
			kind    TEXT PRIMARY KEY,
			active  INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0
		)`,
	}},
	{Version: 6, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS link_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		)`,
	}},
}
