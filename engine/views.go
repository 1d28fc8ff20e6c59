// views.go exposes the view engine's read contract through the engine
// facade (§4.4.4 "get_list, get_total").
package engine

import (
	"context"

	"github.com/areggiori/dupin-go/internal/registry"
	"github.com/areggiori/dupin-go/internal/view"
)

// ViewList returns rows from a view ordered by the domain collation
// over key.
func (e *Engine) ViewList(ctx context.Context, name string, opts view.ListOptions) ([]view.Row, error) {
	h, err := e.reg.Open(registry.KindView, name)
	if err != nil {
		return nil, err
	}
	defer e.reg.Release(h)
	return h.View().GetList(ctx, opts)
}

// ViewTotal returns a view's current row count.
func (e *Engine) ViewTotal(ctx context.Context, name string) (int64, error) {
	h, err := e.reg.Open(registry.KindView, name)
	if err != nil {
		return 0, err
	}
	defer e.reg.Release(h)
	return h.View().GetTotal(ctx)
}

// ViewState returns a view's current lifecycle state and failure
// message, if any (§4.4 "State machine per view").
func (e *Engine) ViewState(ctx context.Context, name string) (view.State, string, error) {
	h, err := e.reg.Open(registry.KindView, name)
	if err != nil {
		return "", "", err
	}
	defer e.reg.Release(h)
	return h.View().State(ctx)
}

// ViewWarning returns a view's last recorded script/forwarding warning,
// empty if none (§7 "a failing invocation ... the view's warning slot
// is set").
func (e *Engine) ViewWarning(ctx context.Context, name string) (string, error) {
	h, err := e.reg.Open(registry.KindView, name)
	if err != nil {
		return "", err
	}
	defer e.reg.Release(h)
	return h.View().Warning(ctx)
}
