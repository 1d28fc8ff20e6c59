// Package linkstore implements the Link Store (§4.3): versioned, typed
// directed edges whose context_id anchors them to a document in a parent
// store. Mirrors docstore's MVCC machinery but adds the link-specific
// fields (label, href, rel, authority, expire_tm) and the rev_head flag
// invariant 3 requires.
//
// Grounded on the teacher's internal/store/links.go (the Link type, the
// from/to/tag shape) generalised to the spec's context_id + label + href
// model, and on original_source/dupin_linkb.c for authority/expire_tm.
package linkstore

import (
	"encoding/json"

	"github.com/areggiori/dupin-go/internal/mvcc"
)

// Kind classifies a link by its href (§4.3).
type Kind string

const (
	KindWebLink      Kind = "web-link"
	KindRelationship Kind = "relationship"
)

// Revision is one immutable version of a link record (§3 "Link Record").
type Revision struct {
	RowID     int64
	ID        string
	Rev       int
	Hash      string
	ContextID string
	Label     string
	Href      string
	Rel       string
	Authority string
	ExpireTM  int64 // unix micros; 0 means no expiry
	Body      json.RawMessage
	Deleted   bool
	RevHead   bool
	CreatedAt int64
}

// Mvcc renders the public "<rev>-<hash>" revision token.
func (r Revision) Mvcc() string { return mvcc.New(r.Rev, r.Hash).String() }

// Kind classifies the link by its Href (§4.3): an absolute URI is a
// web-link, anything else is a relationship to another local document.
func (r Revision) Kind() Kind {
	if isAbsoluteURI(r.Href) {
		return KindWebLink
	}
	return KindRelationship
}

// CreateParams are the caller-supplied fields for a new link.
type CreateParams struct {
	ContextID string
	Label     string
	Href      string
	Rel       string
	Authority string
	ExpireTM  int64
	Body      json.RawMessage
}

// AuthorityMatch selects how List filters by authority (§4.3).
type AuthorityMatch int

const (
	AuthorityAny AuthorityMatch = iota
	AuthorityEquals
	AuthorityContains
	AuthorityStartsWith
	AuthorityPresent
)

// ListFilter narrows List (§4.3 "list(filters)").
type ListFilter struct {
	Since          int64
	To             int64
	ContextID      string
	Authority      string
	AuthorityMatch AuthorityMatch
	Kind           Kind // empty means no restriction
	IncludeDeleted bool
	Limit          int
}
