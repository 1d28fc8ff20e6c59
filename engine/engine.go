package engine

import (
	"context"
	"fmt"

	"github.com/areggiori/dupin-go/internal/checker"
	"github.com/areggiori/dupin-go/internal/econfig"
	"github.com/areggiori/dupin-go/internal/registry"
	"github.com/areggiori/dupin-go/internal/scripthost"
	"github.com/areggiori/dupin-go/internal/workerpool"
)

// Engine is the library entry point: one registry plus four worker pools
// (compact, check, map, reduce) that are started with the engine and
// drained by Close (§4.1, §5). Compact, Check, Sync and RebuildIndexes run
// on the caller's goroutine; nothing is submitted to the pools.
type Engine struct {
	reg *registry.Registry
	cfg econfig.Config

	compactPool *workerpool.Pool
	checkPool   *workerpool.Pool
	mapPool     *workerpool.Pool
	reducePool  *workerpool.Pool
}

// Open initializes the engine against cfg.RootDir, scanning for and
// reopening any collections already on disk (§4.1 "init").
func Open(cfg econfig.Config, host scripthost.Host) (*Engine, error) {
	reg, err := registry.Init(cfg, host)
	if err != nil {
		return nil, err
	}
	return &Engine{
		reg:         reg,
		cfg:         cfg,
		compactPool: workerpool.New(cfg.CompactWorkers, cfg.QueueDepth),
		checkPool:   workerpool.New(cfg.CheckWorkers, cfg.QueueDepth),
		mapPool:     workerpool.New(cfg.MapWorkers, cfg.QueueDepth),
		reducePool:  workerpool.New(cfg.ReduceWorkers, cfg.QueueDepth),
	}, nil
}

// Close drains every background pool and closes all open collection
// files (§4.1 "shutdown").
func (e *Engine) Close() {
	e.compactPool.Shutdown()
	e.checkPool.Shutdown()
	e.mapPool.Shutdown()
	e.reducePool.Shutdown()
	e.reg.Shutdown()
}

// Registry exposes the underlying registry for callers (cmd/,
// internal/mcpadmin) that need direct handle access beyond the
// administrative surface below.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// List returns the names of every collection of kind.
func (e *Engine) List(kind registry.Kind) []string { return e.reg.List(kind) }

// CreateDocument creates a new, empty document collection.
func (e *Engine) CreateDocument(name string) error {
	h, err := e.reg.CreateDoc(name)
	if err != nil {
		return err
	}
	e.reg.Release(h)
	return nil
}

// CreateLink creates a new link collection whose context_id resolves
// against parentDoc.
func (e *Engine) CreateLink(name, parentDoc string) error {
	h, err := e.reg.CreateLink(name, registry.CreateLinkParams{ParentDocName: parentDoc})
	if err != nil {
		return err
	}
	e.reg.Release(h)
	return nil
}

// CreateAttachmentStore creates a new attachment collection attached to
// parentDoc.
func (e *Engine) CreateAttachmentStore(name, parentDoc string) error {
	h, err := e.reg.CreateAtt(name, parentDoc)
	if err != nil {
		return err
	}
	e.reg.Release(h)
	return nil
}

// ViewParams configures a new view through the engine facade.
type ViewParams struct {
	ParentKind   registry.Kind
	ParentName   string
	MapSource    string
	MapLang      string
	ReduceSource string
	ReduceLang   string
	OutputName   string
}

// CreateView creates a new materialized view.
func (e *Engine) CreateView(name string, p ViewParams) error {
	h, err := e.reg.CreateView(name, registry.CreateViewParams{
		ParentKind:   p.ParentKind,
		ParentName:   p.ParentName,
		MapSource:    p.MapSource,
		MapLang:      p.MapLang,
		ReduceSource: p.ReduceSource,
		ReduceLang:   p.ReduceLang,
		OutputName:   p.OutputName,
	})
	if err != nil {
		return err
	}
	e.reg.Release(h)
	return nil
}

// Delete marks a collection for deletion; it unlinks once the last
// borrower releases it (§4.1 "delete").
func (e *Engine) Delete(ctx context.Context, kind registry.Kind, name string) error {
	h, err := e.reg.Open(kind, name)
	if err != nil {
		return err
	}
	e.reg.Delete(ctx, h)
	e.reg.Release(h)
	return nil
}

// Compact runs the compaction engine against one document or link
// collection (§4.5).
func (e *Engine) Compact(ctx context.Context, kind registry.Kind, name string) error {
	h, err := e.reg.Open(kind, name)
	if err != nil {
		return err
	}
	defer e.reg.Release(h)

	c := e.reg.Compactor(kind, name)
	switch kind {
	case registry.KindDoc:
		return c.Run(ctx, h.Doc())
	case registry.KindLink:
		return c.Run(ctx, h.Link())
	default:
		return fmt.Errorf("compact: unsupported kind %q", kind)
	}
}

// docParentAdapter implements linkstore.ParentExistence over a document
// store, the common case for the link checker (§4.5).
type docParentAdapter struct {
	h *registry.Handle
}

func (d docParentAdapter) Exists(ctx context.Context, id string) (bool, error) {
	return d.h.Doc().Exists(ctx, id)
}

func (d docParentAdapter) IsTombstoned(ctx context.Context, id string) (bool, error) {
	return d.h.Doc().IsTombstoned(ctx, id)
}

// Check runs the link integrity checker against one link collection,
// resolving context_id against its parent document collection (§4.5).
func (e *Engine) Check(ctx context.Context, linkName, parentDocName string) error {
	lh, err := e.reg.Open(registry.KindLink, linkName)
	if err != nil {
		return err
	}
	defer e.reg.Release(lh)

	dh, err := e.reg.Open(registry.KindDoc, parentDocName)
	if err != nil {
		return err
	}
	defer e.reg.Release(dh)

	ck := checker.New(docParentAdapter{h: dh})
	return ck.Run(ctx, lh.Link())
}

// Sync runs a view's map (and, if configured, reduce) pass to
// completion synchronously (§4.4.4 "sync_now").
func (e *Engine) Sync(ctx context.Context, viewName string) error {
	h, err := e.reg.Open(registry.KindView, viewName)
	if err != nil {
		return err
	}
	defer e.reg.Release(h)
	return h.View().SyncNow(ctx)
}

// RebuildIndexes re-runs a view's map/reduce pass from scratch by
// truncating its rows table and resetting its watermarks, then
// resyncing (§6 "rebuild-indexes"; a maintenance operation for schema or
// script changes the incremental sync cannot express).
func (e *Engine) RebuildIndexes(ctx context.Context, viewName string) error {
	h, err := e.reg.Open(registry.KindView, viewName)
	if err != nil {
		return err
	}
	defer e.reg.Release(h)

	if err := h.View().Truncate(ctx); err != nil {
		return err
	}
	return h.View().SyncNow(ctx)
}
