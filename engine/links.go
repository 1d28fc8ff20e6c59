// links.go exposes link CRUD through the engine facade, the surface
// cmd/ and internal/mcpadmin build their link subcommands and tools on
// top of (§4.3).
package engine

import (
	"context"

	"github.com/areggiori/dupin-go/internal/linkstore"
	"github.com/areggiori/dupin-go/internal/registry"
)

// CreateLinkRecord creates a new link record in collection.
func (e *Engine) CreateLinkRecord(ctx context.Context, collection string, p linkstore.CreateParams) (id, mvcc string, err error) {
	h, err := e.reg.Open(registry.KindLink, collection)
	if err != nil {
		return "", "", err
	}
	defer e.reg.Release(h)
	return h.Link().Create(ctx, p)
}

// UpdateLinkRecord writes a new revision of an existing link.
func (e *Engine) UpdateLinkRecord(ctx context.Context, collection, id, mvcc string, p linkstore.CreateParams) (newMvcc string, err error) {
	h, err := e.reg.Open(registry.KindLink, collection)
	if err != nil {
		return "", err
	}
	defer e.reg.Release(h)
	return h.Link().Update(ctx, id, mvcc, p)
}

// DeleteLinkRecord tombstones a link record.
func (e *Engine) DeleteLinkRecord(ctx context.Context, collection, id, mvcc string) (newMvcc string, err error) {
	h, err := e.reg.Open(registry.KindLink, collection)
	if err != nil {
		return "", err
	}
	defer e.reg.Release(h)
	return h.Link().Delete(ctx, id, mvcc)
}

// GetLinkRecord returns a link's current head revision.
func (e *Engine) GetLinkRecord(ctx context.Context, collection, id string) (*linkstore.Revision, error) {
	h, err := e.reg.Open(registry.KindLink, collection)
	if err != nil {
		return nil, err
	}
	defer e.reg.Release(h)
	return h.Link().ByID(ctx, id)
}

// ListLinkRecords lists head links matching filter (§4.3 "list(filters)").
func (e *Engine) ListLinkRecords(ctx context.Context, collection string, filter linkstore.ListFilter) ([]linkstore.Revision, error) {
	h, err := e.reg.Open(registry.KindLink, collection)
	if err != nil {
		return nil, err
	}
	defer e.reg.Release(h)
	return h.Link().List(ctx, filter)
}

// CountLinks returns the maintained active/deleted totals for kind
// (§4.3 "count(kind, deleted?)").
func (e *Engine) CountLinks(ctx context.Context, collection string, kind linkstore.Kind) (active, deleted int64, err error) {
	h, err := e.reg.Open(registry.KindLink, collection)
	if err != nil {
		return 0, 0, err
	}
	defer e.reg.Release(h)
	return h.Link().Count(ctx, kind)
}
