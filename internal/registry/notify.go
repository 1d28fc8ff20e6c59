// notify.go implements Handle's role as the fan-out Notifier every
// docstore/linkstore dependency is wired with (§4.2 "Fan-out on
// mutation"): attachment stores drop the deleted document's attachments,
// link stores get a context-id tombstone cascade on delete, and views get
// a dirty mark or a deletion-propagation notification. Dependents marked
// for deletion are skipped.
package registry

import (
	"context"

	"github.com/areggiori/dupin-go/internal/elog"
)

// NotifyWrite implements docstore.Notifier and linkstore.Notifier
// (identical method shape) by fanning out to h's registered dependents.
func (h *Handle) NotifyWrite(ctx context.Context, id string, deleted bool) {
	h.mu.Lock()
	deps := append([]*Handle(nil), h.dependents...)
	h.mu.Unlock()

	for _, dep := range deps {
		dep.mu.Lock()
		gone := dep.softDeleted
		dep.mu.Unlock()
		if gone {
			continue
		}
		switch dep.kind {
		case KindAtt:
			if deleted && h.kind == KindDoc {
				if err := dep.att.DeleteByDoc(ctx, id); err != nil {
					dep.SetWarning(err.Error())
					elog.Event("registry", "cascade-delete-attachments").Detail("doc", id).Write(err)
				}
			}
		case KindLink:
			if deleted && h.kind == KindDoc {
				if err := dep.link.TombstoneByContext(ctx, id); err != nil {
					dep.SetWarning(err.Error())
					elog.Event("registry", "cascade-tombstone-links").Detail("context_id", id).Write(err)
				}
			}
		case KindView:
			dep.view.NotifyWrite(ctx, id, deleted)
		}
	}
}

// AddDependent registers dep as a fan-out target of h (§4.1 "rebuilds
// parent/child pointers between derived collections").
func (h *Handle) AddDependent(dep *Handle) {
	h.mu.Lock()
	h.dependents = append(h.dependents, dep)
	h.mu.Unlock()
}
