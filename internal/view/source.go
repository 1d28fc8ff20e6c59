// source.go adapts the document, link and view collections to the single
// ParentSource a view's map pass walks (§4.4.1 "input is the parent
// collection ordered by its insertion sequence"), keeping the view
// package ignorant of which concrete store kind feeds it.
package view

import (
	"context"
	"encoding/json"

	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/linkstore"
)

// ParentRow is one row of the parent collection as seen by the map pass:
// the raw body plus the synthetic fields §4.4.1 lists, already resolved
// for this row's kind.
type ParentRow struct {
	RowID     int64
	ID        string
	Body      json.RawMessage
	Deleted   bool
	Created   int64
	Mvcc      string
	IsLink    bool
	ContextID string
	Href      string
	Label     string
	Rel       string
	IsWebLink bool
}

// ParentSource is the upstream a view maps over: a document store, a
// link store, or another view's output rows.
type ParentSource interface {
	Kind() string // "document", "link", or "view"
	RowsAfter(ctx context.Context, since int64, limit int) ([]ParentRow, error)
	LastSeq(ctx context.Context) (int64, error)
}

// DocSource adapts a *docstore.DocStore to ParentSource.
type DocSource struct{ Store *docstore.DocStore }

func (d DocSource) Kind() string { return "document" }

func (d DocSource) RowsAfter(ctx context.Context, since int64, limit int) ([]ParentRow, error) {
	revs, err := d.Store.RowsAfter(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ParentRow, len(revs))
	for i, r := range revs {
		out[i] = ParentRow{
			RowID:   r.RowID,
			ID:      r.ID,
			Body:    r.Body,
			Deleted: r.Deleted,
			Created: r.CreatedAt,
			Mvcc:    r.Mvcc(),
		}
	}
	return out, nil
}

func (d DocSource) LastSeq(ctx context.Context) (int64, error) { return d.Store.LastSeq(ctx) }

// LinkSource adapts a *linkstore.LinkStore to ParentSource.
type LinkSource struct{ Store *linkstore.LinkStore }

func (l LinkSource) Kind() string { return "link" }

func (l LinkSource) RowsAfter(ctx context.Context, since int64, limit int) ([]ParentRow, error) {
	revs, err := l.Store.RowsAfter(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ParentRow, len(revs))
	for i, r := range revs {
		out[i] = ParentRow{
			RowID:     r.RowID,
			ID:        r.ID,
			Body:      r.Body,
			Deleted:   r.Deleted,
			Created:   r.CreatedAt,
			Mvcc:      r.Mvcc(),
			IsLink:    true,
			ContextID: r.ContextID,
			Href:      r.Href,
			Label:     r.Label,
			Rel:       r.Rel,
			IsWebLink: r.Kind() == linkstore.KindWebLink,
		}
	}
	return out, nil
}

func (l LinkSource) LastSeq(ctx context.Context) (int64, error) { return l.Store.LastSeq(ctx) }

// ViewSource adapts an upstream *View (its reduced or mapped rows) as the
// parent of a downstream, cascading view.
type ViewSource struct{ View *View }

func (v ViewSource) Kind() string { return "view" }

func (v ViewSource) RowsAfter(ctx context.Context, since int64, limit int) ([]ParentRow, error) {
	rows, err := v.View.rowsAfter(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ParentRow, len(rows))
	for i, r := range rows {
		var id string
		if len(r.Pid) > 0 {
			id = r.Pid[0]
		}
		out[i] = ParentRow{
			RowID: r.RowID,
			ID:    id,
			Body:  r.Value,
		}
	}
	return out, nil
}

func (v ViewSource) LastSeq(ctx context.Context) (int64, error) { return v.View.lastSeq(ctx) }
