// Package docstore implements the Document Store (§4.2): versioned JSON
// documents with MVCC update semantics, fanning out to attached
// attachment stores, link stores, and views on mutation.
//
// Grounded on the teacher's internal/store package (SQLiteStore, Document,
// the Reader/Writer interface split, the scanner/Tx helpers), generalised
// from llmd's path-addressed markdown documents to the spec's
// caller-or-generated id addressed, schemaless JSON documents.
package docstore

import (
	"encoding/json"

	"github.com/areggiori/dupin-go/internal/mvcc"
)

// Revision is one immutable version of a document (§3 "Document").
type Revision struct {
	RowID     int64           // embedded-file row id; also the change-feed sequence number
	ID        string          // document id
	Rev       int             // revision number, starts at 1, strictly increasing per id
	Hash      string          // content hash over Body
	Body      json.RawMessage // opaque JSON body (never includes synthetic "_"-fields)
	Deleted   bool            // true for a tombstone revision
	CreatedAt int64           // unix microseconds
}

// Mvcc renders the public "<rev>-<hash>" revision token (§3).
func (r Revision) Mvcc() string {
	return mvcc.New(r.Rev, r.Hash).String()
}

// Record is one input entry to Bulk(); its outcome is reported as a Result.
type Record struct {
	ID      string
	Body    json.RawMessage
	Delete  bool
	Mvcc    string // supplied mvcc; empty on create
}

// Result is the per-record outcome of Bulk (§4.2 "atomic w.r.t. each
// record, not across records").
type Result struct {
	ID      string
	NewMvcc string
	Err     error
}

// CreateOptions configures Create.
type CreateOptions struct {
	ID string // caller-supplied id; generated when empty
}

// ChangesFilter narrows a change-feed query (§4.6).
type ChangesFilter struct {
	// IDPrefix, when non-empty, restricts results to ids with this prefix.
	IDPrefix string
}

// ChangeItem is one row of a change-feed response (§4.6, §6 wire surface).
type ChangeItem struct {
	Seq     int64  `json:"seq"`
	ID      string `json:"id"`
	Deleted bool   `json:"deleted,omitempty"`
	Rev     string `json:"changes_rev"`
}

// ChangesPage is the response to Changes (§4.2, §4.6).
type ChangesPage struct {
	Items   []ChangeItem
	LastSeq int64
}
