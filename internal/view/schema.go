package view

import "github.com/areggiori/dupin-go/internal/relstore"

var schemaSteps = []relstore.Step{
	{Version: 1, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS view_meta (
			id              INTEGER PRIMARY KEY CHECK (id = 1),
			name            TEXT NOT NULL,
			parent_kind     TEXT NOT NULL,
			parent_name     TEXT NOT NULL,
			map_source      TEXT NOT NULL,
			map_lang        TEXT NOT NULL,
			reduce_source   TEXT NOT NULL DEFAULT '',
			reduce_lang     TEXT NOT NULL DEFAULT '',
			output_name     TEXT NOT NULL DEFAULT '',
			state           TEXT NOT NULL DEFAULT 'idle',
			fail_msg        TEXT NOT NULL DEFAULT '',
			sync_map_id     INTEGER NOT NULL DEFAULT 0,
			sync_reduce_id  INTEGER NOT NULL DEFAULT 0,
			sync_rereduce   INTEGER NOT NULL DEFAULT 0,
			last_to_delete_id INTEGER NOT NULL DEFAULT 0
		)`,
	}},
	{Version: 2, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS rows (
			row_id INTEGER PRIMARY KEY AUTOINCREMENT,
			pid    TEXT NOT NULL,
			key    TEXT NOT NULL,
			value  BLOB NOT NULL
		)`,
	}},
	{Version: 3, Stmts: []string{
		`CREATE INDEX IF NOT EXISTS rows_key ON rows(key COLLATE DUPIN_DOMAIN)`,
	}},
	{Version: 4, Stmts: []string{
		`CREATE INDEX IF NOT EXISTS rows_pid ON rows(pid)`,
	}},
	{Version: 5, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS view_warning (
			id      INTEGER PRIMARY KEY CHECK (id = 1),
			message TEXT NOT NULL DEFAULT ''
		)`,
	}},
}
