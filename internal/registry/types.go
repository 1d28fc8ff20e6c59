// Package registry implements the Registry and Handle lifecycle (§4.1):
// one process-wide owner of a root directory and four name->handle maps
// (document, link, attachment, view collections), reference counting,
// soft-delete-then-unlink-on-last-release, and parent/child pointer
// rebuilding at startup.
//
// Grounded on the teacher's internal/store handle-cache shape (a
// process-wide map guarded by one lock, borrow/release around every
// operation) generalized to four collection kinds instead of one, plus
// the fan-out wiring §4.2/§4.3 describe (a store's Notifier is its own
// Handle, which keeps pointers to its dependents and skips any dependent
// marked for deletion at fan-out time, so a deleted dependent doesn't
// need to be unregistered from its parents).
package registry

import (
	"fmt"
	"sync"

	"github.com/areggiori/dupin-go/internal/attachstore"
	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/linkstore"
	"github.com/areggiori/dupin-go/internal/view"
)

// Kind enumerates the four collection kinds the registry manages
// (§2 "five mappings by name": DB, LinkB, AttB, views — the fifth
// mapping, worker pools, is not a named collection and lives on
// engine.Engine, not on Registry).
type Kind string

const (
	KindDoc  Kind = "document"
	KindLink Kind = "link"
	KindAtt  Kind = "attachment"
	KindView Kind = "view"
)

// suffix returns the on-disk filename suffix for kind (§6 "one file per
// collection named <name>.<suffix>").
func (k Kind) suffix() string {
	switch k {
	case KindDoc:
		return "document"
	case KindLink:
		return "link"
	case KindAtt:
		return "attachment"
	case KindView:
		return "view"
	default:
		return "unknown"
	}
}

// Handle is a Collection Handle (§3 "Lifecycle"): a connection to its
// backing file, a reference count, a soft-delete flag, an error/warning
// slot, and (for document/link stores) pointers to dependent handles
// for fan-out.
type Handle struct {
	mu sync.Mutex

	kind Kind
	name string

	refCount    int
	softDeleted bool

	warning string
	errMsg  string

	doc  *docstore.DocStore
	link *linkstore.LinkStore
	att  *attachstore.AttachStore
	view *view.View

	// dependents are the views/link stores/attachment stores that fan
	// out from this handle on write (§4.2 "Fan-out on mutation").
	dependents []*Handle

	onRelease func() // unlinks the file once refcount reaches 0 and softDeleted
}

func (h *Handle) Kind() Kind { return h.kind }
func (h *Handle) Name() string { return h.name }

// Doc returns the underlying document store, nil if this handle is not
// a document collection.
func (h *Handle) Doc() *docstore.DocStore { return h.doc }

// Link returns the underlying link store, nil otherwise.
func (h *Handle) Link() *linkstore.LinkStore { return h.link }

// Att returns the underlying attachment store, nil otherwise.
func (h *Handle) Att() *attachstore.AttachStore { return h.att }

// View returns the underlying view, nil otherwise.
func (h *Handle) View() *view.View { return h.view }

// borrow increments the reference count (§4.1 "open ... handle borrow
// (incremented refcount)").
func (h *Handle) borrow() {
	h.mu.Lock()
	h.refCount++
	h.mu.Unlock()
}

// release decrements the reference count and unlinks the backing file
// if it was marked for deletion and no borrower remains (§3 "Lifecycle",
// invariant 6).
func (h *Handle) release() {
	h.mu.Lock()
	h.refCount--
	shouldUnlink := h.softDeleted && h.refCount <= 0
	cb := h.onRelease
	h.mu.Unlock()
	if shouldUnlink && cb != nil {
		cb()
	}
}

// markForDeletion sets the soft-delete flag; the caller must still
// release its own borrow for the unlink to actually happen once the
// count reaches zero.
func (h *Handle) markForDeletion() {
	h.mu.Lock()
	h.softDeleted = true
	refCount := h.refCount
	cb := h.onRelease
	h.mu.Unlock()
	if refCount <= 0 && cb != nil {
		cb()
	}
}

// SetWarning records a non-fatal fan-out/background-worker failure
// without failing the originating mutation (§7 "Propagation").
func (h *Handle) SetWarning(msg string) {
	h.mu.Lock()
	h.warning = msg
	h.mu.Unlock()
}

// SetError records a fatal per-handle error.
func (h *Handle) SetError(msg string) {
	h.mu.Lock()
	h.errMsg = msg
	h.mu.Unlock()
}

// Warning returns the handle's current warning slot.
func (h *Handle) Warning() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.warning
}

// Error returns the handle's current error slot.
func (h *Handle) Error() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errMsg
}

func fileName(root, name string, k Kind) string {
	return fmt.Sprintf("%s/%s.%s", root, name, k.suffix())
}
