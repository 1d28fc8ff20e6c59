package registry

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/econfig"
	"github.com/areggiori/dupin-go/internal/linkstore"
	"github.com/areggiori/dupin-go/internal/scripthost"
	"github.com/areggiori/dupin-go/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, host scripthost.Host) *Registry {
	t.Helper()
	dir := t.TempDir()
	cfg := econfig.Default()
	cfg.RootDir = dir
	r, err := Init(cfg, host)
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)
	return r
}

func TestCreateDocAndReopenAfterRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := econfig.Default()
	cfg.RootDir = dir
	host := scripthost.NewNative()

	r, err := Init(cfg, host)
	require.NoError(t, err)

	h, err := r.CreateDoc("orders")
	require.NoError(t, err)
	_, _, err = h.Doc().Create(context.Background(), []byte(`{"a":1}`), docstore.CreateOptions{})
	require.NoError(t, err)
	r.Release(h)
	r.Shutdown()

	r2, err := Init(cfg, host)
	require.NoError(t, err)
	t.Cleanup(r2.Shutdown)

	assert.Contains(t, r2.List(KindDoc), "orders")

	h2, err := r2.Open(KindDoc, "orders")
	require.NoError(t, err)
	defer r2.Release(h2)
	assert.NotNil(t, h2.Doc())
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	r := newTestRegistry(t, scripthost.NewNative())

	h, err := r.CreateDoc("orders")
	require.NoError(t, err)
	r.Release(h)

	_, err = r.CreateDoc("orders")
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrAlreadyExists)
}

func TestOpenUnknownNotFound(t *testing.T) {
	r := newTestRegistry(t, scripthost.NewNative())

	_, err := r.Open(KindDoc, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrNotFound)
}

func TestDeleteUnlinksOnLastRelease(t *testing.T) {
	r := newTestRegistry(t, scripthost.NewNative())

	h, err := r.CreateDoc("orders")
	require.NoError(t, err)

	path := h.Doc().File().Path()
	_, err = os.Stat(path)
	require.NoError(t, err)

	// Borrow once more so the delete can't unlink until both borrows
	// are released (§3 invariant 6).
	h2, err := r.Open(KindDoc, "orders")
	require.NoError(t, err)

	r.Delete(context.Background(), h)
	_, err = os.Stat(path)
	assert.NoError(t, err, "file should still exist while h2 holds a borrow")

	r.Release(h)
	_, err = os.Stat(path)
	assert.NoError(t, err, "file should still exist: h2's own borrow, taken before Delete, is outstanding")

	r.Release(h2)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file should be unlinked once every borrow is released")

	_, err = r.Open(KindDoc, "orders")
	assert.ErrorIs(t, err, validate.ErrNotFound)
}

func TestCascadeDeleteTombstonesLinksAndRemovesAttachments(t *testing.T) {
	r := newTestRegistry(t, scripthost.NewNative())
	ctx := context.Background()

	docH, err := r.CreateDoc("orders")
	require.NoError(t, err)
	defer r.Release(docH)

	linkH, err := r.CreateLink("orders-links", CreateLinkParams{ParentDocName: "orders"})
	require.NoError(t, err)
	defer r.Release(linkH)

	attH, err := r.CreateAtt("orders-atts", "orders")
	require.NoError(t, err)
	defer r.Release(attH)

	id, mv, err := docH.Doc().Create(ctx, []byte(`{}`), docstore.CreateOptions{})
	require.NoError(t, err)

	linkID, _, err := linkH.Link().Create(ctx, linkstore.CreateParams{
		ContextID: id, Label: "x", Href: "local:other",
	})
	require.NoError(t, err)

	require.NoError(t, attH.Att().Put(ctx, id, "a.txt", "text/plain", []byte("x")))

	_, err = docH.Doc().Delete(ctx, id, mv)
	require.NoError(t, err)

	rev, err := linkH.Link().ByID(ctx, linkID)
	require.NoError(t, err)
	assert.True(t, rev.Deleted, "document delete must cascade a tombstone to its dependent link")

	list, err := attH.Att().List(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, list, "document delete must cascade-remove its attachments")
}

func TestCreateViewWiresDependent(t *testing.T) {
	host := scripthost.NewNative()
	host.RegisterMap("by-t", func(doc json.RawMessage) ([]scripthost.KV, error) {
		var m map[string]any
		json.Unmarshal(doc, &m)
		key, _ := json.Marshal(m["t"])
		val, _ := json.Marshal(1)
		return []scripthost.KV{{Key: key, Value: val}}, nil
	})

	r := newTestRegistry(t, host)
	ctx := context.Background()

	docH, err := r.CreateDoc("orders")
	require.NoError(t, err)
	defer r.Release(docH)

	_, _, err = docH.Doc().Create(ctx, []byte(`{"t":"a"}`), docstore.CreateOptions{})
	require.NoError(t, err)

	viewH, err := r.CreateView("by-t", CreateViewParams{
		ParentKind: KindDoc,
		ParentName: "orders",
		MapSource:  "by-t",
		MapLang:    scripthost.NativeLang,
	})
	require.NoError(t, err)
	defer r.Release(viewH)

	require.NoError(t, viewH.View().SyncNow(ctx))
	total, err := viewH.View().GetTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// Writing a second document should mark the view dirty via fan-out.
	_, _, err = docH.Doc().Create(ctx, []byte(`{"t":"b"}`), docstore.CreateOptions{})
	require.NoError(t, err)
	assert.True(t, viewH.View().Dirty())
}
