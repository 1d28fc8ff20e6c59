package attachstore

import "github.com/areggiori/dupin-go/internal/relstore"

var schemaSteps = []relstore.Step{
	{Version: 1, Stmts: []string{
		`CREATE TABLE IF NOT EXISTS attachments (
			doc_id       TEXT NOT NULL,
			title        TEXT NOT NULL,
			content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
			length       INTEGER NOT NULL,
			hash         TEXT NOT NULL,
			content      BLOB NOT NULL,
			created_at   INTEGER NOT NULL,
			PRIMARY KEY (doc_id, title)
		)`,
	}},
	{Version: 2, Stmts: []string{
		`CREATE INDEX IF NOT EXISTS attachments_doc ON attachments(doc_id)`,
	}},
}
