// documents.go exposes document CRUD through the engine facade, the
// surface cmd/ and internal/mcpadmin build their document subcommands
// and tools on top of.
package engine

import (
	"context"
	"encoding/json"

	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/registry"
)

// PutDocument creates (mvcc == "") or updates (mvcc == current) a
// document, returning its new mvcc token (§4.2).
func (e *Engine) PutDocument(ctx context.Context, collection, id string, body json.RawMessage, mvcc string) (newID, newMvcc string, err error) {
	h, err := e.reg.Open(registry.KindDoc, collection)
	if err != nil {
		return "", "", err
	}
	defer e.reg.Release(h)

	if mvcc == "" && id == "" {
		return h.Doc().Create(ctx, body, docstore.CreateOptions{})
	}
	if mvcc == "" {
		return h.Doc().Create(ctx, body, docstore.CreateOptions{ID: id})
	}
	newMvcc, err = h.Doc().Update(ctx, id, mvcc, body)
	return id, newMvcc, err
}

// DeleteDocument tombstones a document.
func (e *Engine) DeleteDocument(ctx context.Context, collection, id, mvcc string) (newMvcc string, err error) {
	h, err := e.reg.Open(registry.KindDoc, collection)
	if err != nil {
		return "", err
	}
	defer e.reg.Release(h)
	return h.Doc().Delete(ctx, id, mvcc)
}

// GetDocument reads a document at its latest (rev == 0) or a specific
// revision.
func (e *Engine) GetDocument(ctx context.Context, collection, id string, rev int) (*docstore.Revision, error) {
	h, err := e.reg.Open(registry.KindDoc, collection)
	if err != nil {
		return nil, err
	}
	defer e.reg.Release(h)
	return h.Doc().Read(ctx, id, rev)
}

// BulkInsert applies records to collection independently (§6
// "bulk-insert"; §4.2 "per-record atomicity only").
func (e *Engine) BulkInsert(ctx context.Context, collection string, records []docstore.Record) ([]docstore.Result, error) {
	h, err := e.reg.Open(registry.KindDoc, collection)
	if err != nil {
		return nil, err
	}
	defer e.reg.Release(h)
	return h.Doc().Bulk(ctx, records), nil
}

// ChangesDump returns one page of collection's change feed (§6
// "changes-dump"; §4.6 "Normal" mode).
func (e *Engine) ChangesDump(ctx context.Context, collection string, since int64, limit int) (docstore.ChangesPage, error) {
	h, err := e.reg.Open(registry.KindDoc, collection)
	if err != nil {
		return docstore.ChangesPage{}, err
	}
	defer e.reg.Release(h)
	return h.Doc().Changes(ctx, since, limit, docstore.ChangesFilter{})
}
