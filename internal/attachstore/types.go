// Package attachstore implements the Attachment Store (§3, §4.2):
// binary blobs keyed by (doc_id, title), with no revisions — a write
// overwrites whatever was there. Grounded on the teacher's
// internal/store schema/notifier shape, generalised from markdown
// revisions to unversioned blob rows, and on original_source's
// dupin_attachment_db.c for the (doc_id, title) key and cascade-delete
// semantics recorded in SPEC_FULL.md §C.3.
package attachstore

import "time"

// Attachment is one stored blob.
type Attachment struct {
	DocID       string
	Title       string
	ContentType string
	Length      int64
	Hash        string
	Content     []byte
	CreatedAt   int64
}

// Meta is an Attachment without its Content, for listing.
type Meta struct {
	DocID       string
	Title       string
	ContentType string
	Length      int64
	Hash        string
	CreatedAt   int64
}

func nowMicro() int64 { return time.Now().UnixMicro() }
