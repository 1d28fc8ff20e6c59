// peek.go lets a caller read a view file's persisted configuration
// before it has resolved the ParentSource Open's Config requires — the
// registry's startup scan needs this to rebuild a view handle without
// re-specifying map/reduce sources that are already on disk.
package view

import (
	"context"

	"github.com/areggiori/dupin-go/internal/relstore"
)

// PeekMeta opens path (migrating it if new) just long enough to read its
// view_meta row, then closes it. Used by the registry to learn a view's
// parent_kind/parent_name/map_source/etc at startup before reopening it
// properly via Open.
func PeekMeta(path string) (Meta, error) {
	f, err := relstore.Open(path, relstore.DefaultOptions())
	if err != nil {
		return Meta{}, err
	}
	defer f.Close()
	if err := relstore.Migrate(context.Background(), f.DB(), schemaSteps); err != nil {
		return Meta{}, err
	}
	v := &View{file: f}
	return v.loadMeta(context.Background())
}
