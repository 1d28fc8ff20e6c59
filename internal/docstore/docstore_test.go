package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/areggiori/dupin-go/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *DocStore {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "docs.db"), "orders", Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAssignsRevisionOne(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, mv, err := s.Create(ctx, []byte(`{"a":1}`), CreateOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Contains(t, mv, "1-")

	rev, err := s.Read(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Rev)
	assert.JSONEq(t, `{"a":1}`, string(rev.Body))
	assert.False(t, rev.Deleted)
}

func TestCreateWithCallerID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _, err := s.Create(ctx, []byte(`{}`), CreateOptions{ID: "order-1"})
	require.NoError(t, err)
	assert.Equal(t, "order-1", id)
}

func TestCreateDuplicateIDConflicts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.Create(ctx, []byte(`{}`), CreateOptions{ID: "dup"})
	require.NoError(t, err)
	_, _, err = s.Create(ctx, []byte(`{}`), CreateOptions{ID: "dup"})
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrAlreadyExists)
}

func TestUpdateRequiresMatchingMvcc(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, mv, err := s.Create(ctx, []byte(`{"v":1}`), CreateOptions{})
	require.NoError(t, err)

	_, err = s.Update(ctx, id, "bogus-token", []byte(`{"v":2}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrInvalidMvcc)

	newMv, err := s.Update(ctx, id, mv, []byte(`{"v":2}`))
	require.NoError(t, err)
	assert.NotEqual(t, mv, newMv)

	rev, err := s.Read(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, rev.Rev)
	assert.JSONEq(t, `{"v":2}`, string(rev.Body))
}

func TestUpdateUnknownIDNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Update(ctx, "missing", "1-0123456789abcdef0123456789abcdef", []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrNotFound)
}

func TestDeleteWritesTombstone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, mv, err := s.Create(ctx, []byte(`{"v":1}`), CreateOptions{})
	require.NoError(t, err)

	_, err = s.Delete(ctx, id, mv)
	require.NoError(t, err)

	rev, err := s.Read(ctx, id, 0)
	require.NoError(t, err)
	assert.True(t, rev.Deleted)

	tombstoned, err := s.IsTombstoned(ctx, id)
	require.NoError(t, err)
	assert.True(t, tombstoned)
}

func TestDeleteConflictOnStaleToken(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, _, err := s.Create(ctx, []byte(`{}`), CreateOptions{})
	require.NoError(t, err)

	_, err = s.Delete(ctx, id, "9-0123456789abcdef0123456789abcdef")
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrConflict)
}

func TestReadSpecificRevisionIgnoresDeletedFlag(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, mv, err := s.Create(ctx, []byte(`{"v":1}`), CreateOptions{})
	require.NoError(t, err)
	_, err = s.Delete(ctx, id, mv)
	require.NoError(t, err)

	rev, err := s.Read(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Rev)
	assert.JSONEq(t, `{"v":1}`, string(rev.Body))
}

func TestExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	id, _, err := s.Create(ctx, []byte(`{}`), CreateOptions{})
	require.NoError(t, err)

	ok, err = s.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBulkIsPerRecordIndependent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, validMv, err := s.Create(ctx, []byte(`{"seed":true}`), CreateOptions{ID: "seed"})
	require.NoError(t, err)

	results := s.Bulk(ctx, []Record{
		{ID: "fresh", Body: []byte(`{"a":1}`)},
		{ID: "seed", Mvcc: "bad-token", Body: []byte(`{"a":2}`)},
		{ID: "seed", Mvcc: validMv, Body: []byte(`{"a":3}`)},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.ErrorIs(t, results[1].Err, validate.ErrInvalidMvcc)
	assert.NoError(t, results[2].Err)

	rev, err := s.Read(ctx, "seed", 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3}`, string(rev.Body))
}

func TestChangesAndLastSeqMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.Create(ctx, []byte(`{}`), CreateOptions{ID: "a"})
	require.NoError(t, err)
	_, _, err = s.Create(ctx, []byte(`{}`), CreateOptions{ID: "b"})
	require.NoError(t, err)

	page, err := s.Changes(ctx, 0, 0, ChangesFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, page.LastSeq, page.Items[len(page.Items)-1].Seq)

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, page.LastSeq, seq)

	page2, err := s.Changes(ctx, seq, 0, ChangesFilter{})
	require.NoError(t, err)
	assert.Empty(t, page2.Items)
}

func TestChangesIDPrefixFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.Create(ctx, []byte(`{}`), CreateOptions{ID: "order-1"})
	require.NoError(t, err)
	_, _, err = s.Create(ctx, []byte(`{}`), CreateOptions{ID: "invoice-1"})
	require.NoError(t, err)

	page, err := s.Changes(ctx, 0, 0, ChangesFilter{IDPrefix: "order-"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "order-1", page.Items[0].ID)
}

func TestCompactBatchRemovesSupersededRevisions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, mv, err := s.Create(ctx, []byte(`{"v":1}`), CreateOptions{})
	require.NoError(t, err)
	mv, err = s.Update(ctx, id, mv, []byte(`{"v":2}`))
	require.NoError(t, err)
	_, err = s.Update(ctx, id, mv, []byte(`{"v":3}`))
	require.NoError(t, err)

	deleted, lastRowID, err := s.CompactBatch(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Greater(t, lastRowID, int64(0))

	history, err := s.History(ctx, id, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, 3, history[0].Rev)
}

func TestCompactIDWatermark(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	v, err := s.GetCompactID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, s.SetCompactID(ctx, 42))
	v, err = s.GetCompactID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

type recordingNotifier struct {
	calls []string
}

func (n *recordingNotifier) NotifyWrite(_ context.Context, id string, deleted bool) {
	if deleted {
		n.calls = append(n.calls, id+":deleted")
	} else {
		n.calls = append(n.calls, id+":written")
	}
}

func TestNotifierFiresOnWriteAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	n := &recordingNotifier{}
	s.SetNotifier(n)

	id, mv, err := s.Create(ctx, []byte(`{}`), CreateOptions{})
	require.NoError(t, err)
	_, err = s.Delete(ctx, id, mv)
	require.NoError(t, err)

	assert.Equal(t, []string{id + ":written", id + ":deleted"}, n.calls)
}
