package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/areggiori/dupin-go/internal/attachstore"
	"github.com/areggiori/dupin-go/internal/changefeed"
	"github.com/areggiori/dupin-go/internal/compactor"
	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/econfig"
	"github.com/areggiori/dupin-go/internal/linkstore"
	"github.com/areggiori/dupin-go/internal/scripthost"
	"github.com/areggiori/dupin-go/internal/validate"
	"github.com/areggiori/dupin-go/internal/view"
)

// Registry owns one root directory and the four name->handle maps
// (§4.1, §2).
type Registry struct {
	mu   sync.RWMutex
	root string
	cfg  econfig.Config
	host scripthost.Host

	handles map[Kind]map[string]*Handle

	notifiers map[Kind]map[string]*changefeed.Notifier

	compactors map[string]*compactor.Compactor
}

// Init creates root_dir if absent, scans for existing collection files
// by suffix, opens each in read/write mode, and rebuilds parent/child
// pointers between derived collections (§4.1 "init").
func Init(cfg econfig.Config, host scripthost.Host) (*Registry, error) {
	if err := os.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %v", validate.ErrIO, cfg.RootDir, err)
	}

	r := &Registry{
		root:       cfg.RootDir,
		cfg:        cfg,
		host:       host,
		handles:    map[Kind]map[string]*Handle{KindDoc: {}, KindLink: {}, KindAtt: {}, KindView: {}},
		notifiers:  map[Kind]map[string]*changefeed.Notifier{KindDoc: {}, KindLink: {}, KindAtt: {}, KindView: {}},
		compactors: map[string]*compactor.Compactor{},
	}

	if err := r.scan(); err != nil {
		return nil, err
	}
	return r, nil
}

// scan discovers existing collection files by suffix and opens each one,
// then wires dependents in a second pass once every handle exists
// (§4.1 "rebuilds parent/child pointers").
func (r *Registry) scan() error {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return fmt.Errorf("%w: scan %s: %v", validate.ErrIO, r.root, err)
	}

	type found struct {
		name string
		kind Kind
	}
	var docs, links, atts, views []found

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
		name := strings.TrimSuffix(e.Name(), "."+ext)
		switch ext {
		case KindDoc.suffix():
			docs = append(docs, found{name, KindDoc})
		case KindLink.suffix():
			links = append(links, found{name, KindLink})
		case KindAtt.suffix():
			atts = append(atts, found{name, KindAtt})
		case KindView.suffix():
			views = append(views, found{name, KindView})
		}
	}

	for _, f := range docs {
		if _, err := r.openDocFile(f.name); err != nil {
			return err
		}
	}
	for _, f := range links {
		if _, err := r.openLinkFile(f.name); err != nil {
			return err
		}
	}
	for _, f := range atts {
		if _, err := r.openAttFile(f.name); err != nil {
			return err
		}
	}
	for _, f := range views {
		if _, err := r.reopenViewFile(f.name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) openDocFile(name string) (*Handle, error) {
	s, err := docstore.Open(fileName(r.root, name, KindDoc), name, docstore.Options{MaxBodyBytes: r.cfg.MaxBodyBytes})
	if err != nil {
		return nil, fmt.Errorf("%w: open document %s: %v", validate.ErrIO, name, err)
	}
	h := &Handle{kind: KindDoc, name: name, doc: s}
	s.SetNotifier(h)
	r.put(KindDoc, name, h)
	return h, nil
}

func (r *Registry) openLinkFile(name string) (*Handle, error) {
	s, err := linkstore.Open(fileName(r.root, name, KindLink), name, linkstore.Options{MaxBodyBytes: r.cfg.MaxBodyBytes})
	if err != nil {
		return nil, fmt.Errorf("%w: open link %s: %v", validate.ErrIO, name, err)
	}
	h := &Handle{kind: KindLink, name: name, link: s}
	s.SetNotifier(h)
	r.put(KindLink, name, h)
	return h, nil
}

func (r *Registry) openAttFile(name string) (*Handle, error) {
	s, err := attachstore.Open(fileName(r.root, name, KindAtt), name, attachstore.Options{MaxBodyBytes: r.cfg.MaxBodyBytes})
	if err != nil {
		return nil, fmt.Errorf("%w: open attachment %s: %v", validate.ErrIO, name, err)
	}
	h := &Handle{kind: KindAtt, name: name, att: s}
	r.put(KindAtt, name, h)
	return h, nil
}

// reopenViewFile rebuilds a view handle discovered at startup scan time:
// it peeks the file's persisted view_meta to learn its parent and
// map/reduce configuration (views are scanned after documents and links
// so the parent lookup below always succeeds for non-cascading views;
// a view-of-view chain resolves in file discovery order, which is a
// known limitation for deeply chained cascades).
func (r *Registry) reopenViewFile(name string) (*Handle, error) {
	path := fileName(r.root, name, KindView)
	meta, err := view.PeekMeta(path)
	if err != nil {
		return nil, fmt.Errorf("%w: peek view %s: %v", validate.ErrCorruptMetadata, name, err)
	}

	parentKind := Kind(meta.ParentKind)
	parent, err := r.Open(parentKind, meta.ParentName)
	if err != nil {
		return nil, fmt.Errorf("view %s parent %s/%s: %w", name, meta.ParentKind, meta.ParentName, err)
	}
	defer r.Release(parent)

	var src view.ParentSource
	switch parentKind {
	case KindDoc:
		src = view.DocSource{Store: parent.doc}
	case KindLink:
		src = view.LinkSource{Store: parent.link}
	case KindView:
		src = view.ViewSource{View: parent.view}
	default:
		return nil, fmt.Errorf("view %s: unsupported parent kind %q", name, meta.ParentKind)
	}

	var output *docstore.DocStore
	if meta.OutputName != "" {
		outH, err := r.Open(KindDoc, meta.OutputName)
		if err != nil {
			return nil, fmt.Errorf("view %s output %s: %w", name, meta.OutputName, err)
		}
		defer r.Release(outH)
		output = outH.doc
	}

	v, err := view.Open(path, name, view.Config{
		Parent:       src,
		Host:         r.host,
		MapSource:    meta.MapSource,
		MapLang:      meta.MapLang,
		ReduceSource: meta.ReduceSource,
		ReduceLang:   meta.ReduceLang,
		Output:       output,
	})
	if err != nil {
		return nil, err
	}

	h := &Handle{kind: KindView, name: name, view: v}
	r.put(KindView, name, h)
	parent.AddDependent(h)
	return h, nil
}

func (r *Registry) put(kind Kind, name string, h *Handle) {
	r.mu.Lock()
	r.handles[kind][name] = h
	r.notifiers[kind][name] = changefeed.New()
	r.compactors[string(kind)+"/"+name] = compactor.New()
	r.mu.Unlock()
}

// Notifier returns the change-feed notifier for (kind, name), used by
// long-poll/continuous feeds.
func (r *Registry) Notifier(kind Kind, name string) *changefeed.Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notifiers[kind][name]
}

// Compactor returns the shared Compactor for (kind, name).
func (r *Registry) Compactor(kind Kind, name string) *compactor.Compactor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.compactors[string(kind)+"/"+name]
}

// List returns a snapshot of collection names for kind (§4.1 "list").
func (r *Registry) List(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handles[kind]))
	for name := range r.handles[kind] {
		out = append(out, name)
	}
	return out
}

// Open borrows a handle by (kind, name) (§4.1 "open").
func (r *Registry) Open(kind Kind, name string) (*Handle, error) {
	r.mu.RLock()
	h, ok := r.handles[kind][name]
	r.mu.RUnlock()
	if !ok {
		return nil, validate.ErrNotFound
	}
	h.borrow()
	return h, nil
}

// Release returns a borrowed handle (§4.1 "Lifecycle").
func (r *Registry) Release(h *Handle) {
	h.release()
}

// CreateDoc creates a new document collection (§4.1 "create").
func (r *Registry) CreateDoc(name string) (*Handle, error) {
	if err := validate.Name(name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	if _, exists := r.handles[KindDoc][name]; exists {
		r.mu.Unlock()
		return nil, validate.ErrAlreadyExists
	}
	r.mu.Unlock()
	h, err := r.openDocFile(name)
	if err != nil {
		return nil, err
	}
	h.borrow()
	return h, nil
}

// CreateLinkParams configures a new link collection.
type CreateLinkParams struct {
	ParentDocName string
}

// CreateLink creates a new link collection attached to a document
// collection as its parent for context_id resolution (§4.3).
func (r *Registry) CreateLink(name string, p CreateLinkParams) (*Handle, error) {
	if err := validate.Name(name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	if _, exists := r.handles[KindLink][name]; exists {
		r.mu.Unlock()
		return nil, validate.ErrAlreadyExists
	}
	r.mu.Unlock()

	parent, err := r.Open(KindDoc, p.ParentDocName)
	if err != nil {
		return nil, fmt.Errorf("parent document collection %s: %w", p.ParentDocName, err)
	}
	defer r.Release(parent)

	h, err := r.openLinkFile(name)
	if err != nil {
		return nil, err
	}
	h.borrow()
	parent.AddDependent(h)
	return h, nil
}

// CreateAtt creates a new attachment collection attached to a document
// collection (§4.2 "attached attachment stores").
func (r *Registry) CreateAtt(name, parentDocName string) (*Handle, error) {
	if err := validate.Name(name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	if _, exists := r.handles[KindAtt][name]; exists {
		r.mu.Unlock()
		return nil, validate.ErrAlreadyExists
	}
	r.mu.Unlock()

	parent, err := r.Open(KindDoc, parentDocName)
	if err != nil {
		return nil, fmt.Errorf("parent document collection %s: %w", parentDocName, err)
	}
	defer r.Release(parent)

	h, err := r.openAttFile(name)
	if err != nil {
		return nil, err
	}
	h.borrow()
	parent.AddDependent(h)
	return h, nil
}

// CreateViewParams configures a new view.
type CreateViewParams struct {
	ParentKind   Kind
	ParentName   string
	MapSource    string
	MapLang      string
	ReduceSource string
	ReduceLang   string
	OutputName   string // optional output document collection
}

// CreateView creates a new view over an existing document, link, or
// view parent, optionally forwarding reduced output into a document
// collection (§4.4).
func (r *Registry) CreateView(name string, p CreateViewParams) (*Handle, error) {
	if err := validate.Name(name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	if _, exists := r.handles[KindView][name]; exists {
		r.mu.Unlock()
		return nil, validate.ErrAlreadyExists
	}
	r.mu.Unlock()

	parent, err := r.Open(p.ParentKind, p.ParentName)
	if err != nil {
		return nil, fmt.Errorf("parent collection %s/%s: %w", p.ParentKind, p.ParentName, err)
	}
	defer r.Release(parent)

	var src view.ParentSource
	switch p.ParentKind {
	case KindDoc:
		src = view.DocSource{Store: parent.doc}
	case KindLink:
		src = view.LinkSource{Store: parent.link}
	case KindView:
		src = view.ViewSource{View: parent.view}
	default:
		return nil, fmt.Errorf("view parent kind %q not supported", p.ParentKind)
	}

	var output *docstore.DocStore
	if p.OutputName != "" {
		outH, err := r.Open(KindDoc, p.OutputName)
		if err != nil {
			return nil, fmt.Errorf("output collection %s: %w", p.OutputName, err)
		}
		defer r.Release(outH)
		output = outH.doc
	}

	v, err := view.Open(fileName(r.root, name, KindView), name, view.Config{
		Parent:       src,
		Host:         r.host,
		MapSource:    p.MapSource,
		MapLang:      p.MapLang,
		ReduceSource: p.ReduceSource,
		ReduceLang:   p.ReduceLang,
		Output:       output,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	h, existed := r.handles[KindView][name]
	if !existed {
		h = &Handle{}
	}
	h.kind, h.name, h.view = KindView, name, v
	r.handles[KindView][name] = h
	r.notifiers[KindView][name] = changefeed.New()
	r.compactors["view/"+name] = compactor.New()
	r.mu.Unlock()

	h.borrow()
	parent.AddDependent(h)
	return h, nil
}

// Delete sets h's soft-delete flag; the file unlinks once the last
// borrower releases it (§4.1 "delete").
func (r *Registry) Delete(ctx context.Context, h *Handle) {
	h.onRelease = func() {
		r.mu.Lock()
		delete(r.handles[h.kind], h.name)
		delete(r.notifiers[h.kind], h.name)
		delete(r.compactors, string(h.kind)+"/"+h.name)
		r.mu.Unlock()

		var path string
		switch h.kind {
		case KindDoc:
			path = h.doc.File().Path()
			h.doc.Close()
		case KindLink:
			path = h.link.File().Path()
			h.link.Close()
		case KindAtt:
			path = h.att.File().Path()
			h.att.Close()
		case KindView:
			path = h.view.File().Path()
			h.view.Close()
		}
		os.Remove(path)
		os.Remove(path + "-wal")
		os.Remove(path + "-shm")
	}
	h.markForDeletion()
}

// Shutdown drains background pools (the caller is responsible for
// stopping any workerpool.Pool instances it created against this
// registry's handles) and closes every open file (§4.1 "shutdown").
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.handles {
		for _, h := range m {
			switch h.kind {
			case KindDoc:
				if h.doc != nil {
					h.doc.Close()
				}
			case KindLink:
				if h.link != nil {
					h.link.Close()
				}
			case KindAtt:
				if h.att != nil {
					h.att.Close()
				}
			case KindView:
				if h.view != nil {
					h.view.Close()
				}
			}
		}
	}
}
