package view

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/scripthost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDocStore(t *testing.T, dir, name string) *docstore.DocStore {
	t.Helper()
	s, err := docstore.Open(filepath.Join(dir, name+".db"), name, docstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func emitKV(key, value any) scripthost.KV {
	k, _ := json.Marshal(key)
	v, _ := json.Marshal(value)
	return scripthost.KV{Key: k, Value: v}
}

func rowKeys(t *testing.T, rows []Row) []string {
	t.Helper()
	out := make([]string, len(rows))
	for i, r := range rows {
		var s string
		require.NoError(t, json.Unmarshal(r.Key, &s))
		out[i] = s
	}
	return out
}

func TestMapWithoutReduce(t *testing.T) {
	dir := t.TempDir()
	docs := openDocStore(t, dir, "docs")
	ctx := context.Background()

	idA1, _, err := docs.Create(ctx, []byte(`{"t":"a"}`), docstore.CreateOptions{})
	require.NoError(t, err)
	_, _, err = docs.Create(ctx, []byte(`{"t":"b"}`), docstore.CreateOptions{})
	require.NoError(t, err)
	_, _, err = docs.Create(ctx, []byte(`{"t":"a"}`), docstore.CreateOptions{})
	require.NoError(t, err)

	host := scripthost.NewNative()
	host.RegisterMap("by-t", func(doc json.RawMessage) ([]scripthost.KV, error) {
		var m map[string]any
		json.Unmarshal(doc, &m)
		return []scripthost.KV{emitKV(m["t"], 1)}, nil
	})

	v, err := Open(filepath.Join(dir, "by-t.view.db"), "by-t", Config{
		Parent: DocSource{Store: docs}, Host: host, MapSource: "by-t", MapLang: scripthost.NativeLang,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	require.NoError(t, v.SyncNow(ctx))

	rows, err := v.GetList(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "a", "b"}, rowKeys(t, rows))

	state, _, err := v.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)

	// Deleting one of the "a" docs then syncing drops its row.
	docMv, err := docs.Read(ctx, idA1, 0)
	require.NoError(t, err)
	_, err = docs.Delete(ctx, idA1, docMv.Mvcc())
	require.NoError(t, err)
	v.NotifyWrite(ctx, idA1, true)

	require.NoError(t, v.SyncNow(ctx))
	rows, err = v.GetList(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b"}, rowKeys(t, rows))
}

func sumReduce(keys json.RawMessage, values []json.RawMessage, rereduce bool) (json.RawMessage, error) {
	var total float64
	for _, v := range values {
		var n float64
		if err := json.Unmarshal(v, &n); err != nil {
			return nil, err
		}
		total += n
	}
	return json.Marshal(total)
}

func TestMapReduceSum(t *testing.T) {
	dir := t.TempDir()
	docs := openDocStore(t, dir, "docs")
	ctx := context.Background()

	_, _, err := docs.Create(ctx, []byte(`{"t":"a"}`), docstore.CreateOptions{})
	require.NoError(t, err)
	_, _, err = docs.Create(ctx, []byte(`{"t":"b"}`), docstore.CreateOptions{})
	require.NoError(t, err)
	_, _, err = docs.Create(ctx, []byte(`{"t":"a"}`), docstore.CreateOptions{})
	require.NoError(t, err)

	host := scripthost.NewNative()
	host.RegisterMap("by-t", func(doc json.RawMessage) ([]scripthost.KV, error) {
		var m map[string]any
		json.Unmarshal(doc, &m)
		return []scripthost.KV{emitKV(m["t"], 1)}, nil
	})
	host.RegisterReduce("sum", sumReduce)

	v, err := Open(filepath.Join(dir, "sum.view.db"), "sum", Config{
		Parent: DocSource{Store: docs}, Host: host,
		MapSource: "by-t", MapLang: scripthost.NativeLang,
		ReduceSource: "sum", ReduceLang: scripthost.NativeLang,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	require.NoError(t, v.SyncNow(ctx))

	rows, err := v.GetList(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byKey := map[string]float64{}
	for _, r := range rows {
		var k string
		var val float64
		require.NoError(t, json.Unmarshal(r.Key, &k))
		require.NoError(t, json.Unmarshal(r.Value, &val))
		byKey[k] = val
	}
	assert.Equal(t, 2.0, byKey["a"])
	assert.Equal(t, 1.0, byKey["b"])

	_, _, err = docs.Create(ctx, []byte(`{"t":"a"}`), docstore.CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, v.SyncNow(ctx))

	rows, err = v.GetList(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		var k string
		var val float64
		require.NoError(t, json.Unmarshal(r.Key, &k))
		require.NoError(t, json.Unmarshal(r.Value, &val))
		if k == "a" {
			assert.Equal(t, 3.0, val)
		}
	}
}

func TestCascadingView(t *testing.T) {
	dir := t.TempDir()
	docs := openDocStore(t, dir, "docs")
	ctx := context.Background()

	cities := []string{"nyc", "nyc", "sf", "nyc", "sf"}
	for _, c := range cities {
		body, _ := json.Marshal(map[string]string{"city": c})
		_, _, err := docs.Create(ctx, body, docstore.CreateOptions{})
		require.NoError(t, err)
	}

	host := scripthost.NewNative()
	host.RegisterMap("emit-city", func(doc json.RawMessage) ([]scripthost.KV, error) {
		var m map[string]any
		json.Unmarshal(doc, &m)
		return []scripthost.KV{emitKV(m["_id"], m["city"])}, nil
	})

	v1, err := Open(filepath.Join(dir, "v1.view.db"), "v1", Config{
		Parent: DocSource{Store: docs}, Host: host, MapSource: "emit-city", MapLang: scripthost.NativeLang,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = v1.Close() })
	require.NoError(t, v1.SyncNow(ctx))

	host.RegisterMap("count-by-city", func(doc json.RawMessage) ([]scripthost.KV, error) {
		var city string
		json.Unmarshal(doc, &city)
		return []scripthost.KV{emitKV(city, 1)}, nil
	})
	host.RegisterReduce("sum", sumReduce)

	v2, err := Open(filepath.Join(dir, "v2.view.db"), "v2", Config{
		Parent: ViewSource{View: v1}, Host: host,
		MapSource: "count-by-city", MapLang: scripthost.NativeLang,
		ReduceSource: "sum", ReduceLang: scripthost.NativeLang,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = v2.Close() })
	require.NoError(t, v2.SyncNow(ctx))

	rows, err := v2.GetList(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var total float64
	for _, r := range rows {
		var val float64
		require.NoError(t, json.Unmarshal(r.Value, &val))
		total += val
	}
	assert.Equal(t, float64(len(cities)), total)
}

func TestDeletionPropagationDefersMaxRow(t *testing.T) {
	dir := t.TempDir()
	docs := openDocStore(t, dir, "docs")
	ctx := context.Background()

	host := scripthost.NewNative()
	host.RegisterMap("multi-emit", func(doc json.RawMessage) ([]scripthost.KV, error) {
		var m map[string]any
		json.Unmarshal(doc, &m)
		id := m["_id"]
		return []scripthost.KV{emitKV(id, 1), emitKV(id, 2)}, nil
	})

	v, err := Open(filepath.Join(dir, "multi.view.db"), "multi", Config{
		Parent: DocSource{Store: docs}, Host: host, MapSource: "multi-emit", MapLang: scripthost.NativeLang,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	id, mv, err := docs.Create(ctx, []byte(`{}`), docstore.CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, v.SyncNow(ctx))

	rows, err := v.GetList(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, err = docs.Delete(ctx, id, mv)
	require.NoError(t, err)
	v.NotifyWrite(ctx, id, true)

	// Immediately after propagateDelete, one row remains flagged via
	// last_to_delete_id rather than deleted outright (§4.4.3).
	meta, err := v.loadMeta(ctx)
	require.NoError(t, err)
	assert.NotZero(t, meta.LastToDeleteID)

	rows, err = v.GetList(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// Next successful map insertion clears the flagged row atomically.
	_, _, err = docs.Create(ctx, []byte(`{}`), docstore.CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, v.SyncNow(ctx))

	rows, err = v.GetList(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestScriptErrorSetsWarningNotFailure(t *testing.T) {
	dir := t.TempDir()
	docs := openDocStore(t, dir, "docs")
	ctx := context.Background()

	_, _, err := docs.Create(ctx, []byte(`{"ok":true}`), docstore.CreateOptions{})
	require.NoError(t, err)

	host := scripthost.NewNative()
	host.RegisterMap("bad", func(doc json.RawMessage) ([]scripthost.KV, error) {
		return nil, assertErr
	})

	v, err := Open(filepath.Join(dir, "bad.view.db"), "bad", Config{
		Parent: DocSource{Store: docs}, Host: host, MapSource: "bad", MapLang: scripthost.NativeLang,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	require.NoError(t, v.SyncNow(ctx))

	warn, err := v.Warning(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, warn)

	state, _, err := v.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestTruncateResetsWatermarks(t *testing.T) {
	dir := t.TempDir()
	docs := openDocStore(t, dir, "docs")
	ctx := context.Background()

	_, _, err := docs.Create(ctx, []byte(`{"t":"a"}`), docstore.CreateOptions{})
	require.NoError(t, err)

	host := scripthost.NewNative()
	host.RegisterMap("by-t", func(doc json.RawMessage) ([]scripthost.KV, error) {
		var m map[string]any
		json.Unmarshal(doc, &m)
		return []scripthost.KV{emitKV(m["t"], 1)}, nil
	})

	v, err := Open(filepath.Join(dir, "by-t2.view.db"), "by-t2", Config{
		Parent: DocSource{Store: docs}, Host: host, MapSource: "by-t", MapLang: scripthost.NativeLang,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	require.NoError(t, v.SyncNow(ctx))
	total, err := v.GetTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, v.Truncate(ctx))
	total, err = v.GetTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	meta, err := v.loadMeta(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), meta.SyncMapID)
}

type sentinelErr struct{ msg string }

func (e *sentinelErr) Error() string { return e.msg }

var assertErr = &sentinelErr{"map function exploded"}
