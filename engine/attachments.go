// attachments.go exposes attachment CRUD through the engine facade
// (§3 "Attachment", §4.2 "attached attachment stores").
package engine

import (
	"context"

	"github.com/areggiori/dupin-go/internal/attachstore"
	"github.com/areggiori/dupin-go/internal/registry"
)

// PutAttachment creates or overwrites an attachment.
func (e *Engine) PutAttachment(ctx context.Context, collection, docID, title, contentType string, content []byte) error {
	h, err := e.reg.Open(registry.KindAtt, collection)
	if err != nil {
		return err
	}
	defer e.reg.Release(h)
	return h.Att().Put(ctx, docID, title, contentType, content)
}

// GetAttachment returns the full attachment including its content.
func (e *Engine) GetAttachment(ctx context.Context, collection, docID, title string) (*attachstore.Attachment, error) {
	h, err := e.reg.Open(registry.KindAtt, collection)
	if err != nil {
		return nil, err
	}
	defer e.reg.Release(h)
	return h.Att().Get(ctx, docID, title)
}

// ListAttachments returns metadata for every attachment on docID.
func (e *Engine) ListAttachments(ctx context.Context, collection, docID string) ([]attachstore.Meta, error) {
	h, err := e.reg.Open(registry.KindAtt, collection)
	if err != nil {
		return nil, err
	}
	defer e.reg.Release(h)
	return h.Att().List(ctx, docID)
}

// DeleteAttachment removes one attachment.
func (e *Engine) DeleteAttachment(ctx context.Context, collection, docID, title string) error {
	h, err := e.reg.Open(registry.KindAtt, collection)
	if err != nil {
		return err
	}
	defer e.reg.Release(h)
	return h.Att().Delete(ctx, docID, title)
}
