package checker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/linkstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTombstonesDanglingLink(t *testing.T) {
	dir := t.TempDir()
	docs, err := docstore.Open(filepath.Join(dir, "docs.db"), "orders", docstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })

	links, err := linkstore.Open(filepath.Join(dir, "links.db"), "orders-links", linkstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = links.Close() })

	ctx := context.Background()
	docID, docMv, err := docs.Create(ctx, []byte(`{}`), docstore.CreateOptions{})
	require.NoError(t, err)

	linkID, _, err := links.Create(ctx, linkstore.CreateParams{ContextID: docID, Label: "x", Href: "local:other"})
	require.NoError(t, err)

	_, err = docs.Delete(ctx, docID, docMv)
	require.NoError(t, err)

	c := New(docs)
	require.NoError(t, c.Run(ctx, links))

	rev, err := links.ByID(ctx, linkID)
	require.NoError(t, err)
	assert.True(t, rev.Deleted)

	checkID, err := links.GetCheckID(ctx)
	require.NoError(t, err)
	assert.Greater(t, checkID, int64(0))
}

func TestRunLeavesBoundLinkAlone(t *testing.T) {
	dir := t.TempDir()
	docs, err := docstore.Open(filepath.Join(dir, "docs.db"), "orders", docstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })

	links, err := linkstore.Open(filepath.Join(dir, "links.db"), "orders-links", linkstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = links.Close() })

	ctx := context.Background()
	docID, _, err := docs.Create(ctx, []byte(`{}`), docstore.CreateOptions{})
	require.NoError(t, err)

	linkID, _, err := links.Create(ctx, linkstore.CreateParams{ContextID: docID, Label: "x", Href: "local:other"})
	require.NoError(t, err)

	c := New(docs)
	require.NoError(t, c.Run(ctx, links))

	rev, err := links.ByID(ctx, linkID)
	require.NoError(t, err)
	assert.False(t, rev.Deleted)
}

func TestRunTombstonesExpiredLink(t *testing.T) {
	dir := t.TempDir()
	docs, err := docstore.Open(filepath.Join(dir, "docs.db"), "orders", docstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })

	links, err := linkstore.Open(filepath.Join(dir, "links.db"), "orders-links", linkstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = links.Close() })

	ctx := context.Background()
	docID, _, err := docs.Create(ctx, []byte(`{}`), docstore.CreateOptions{})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour).UnixMicro()
	linkID, _, err := links.Create(ctx, linkstore.CreateParams{ContextID: docID, Label: "x", Href: "local:other", ExpireTM: past})
	require.NoError(t, err)

	c := New(docs)
	require.NoError(t, c.Run(ctx, links))

	rev, err := links.ByID(ctx, linkID)
	require.NoError(t, err)
	assert.True(t, rev.Deleted)
}
