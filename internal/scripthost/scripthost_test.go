package scripthost

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileUnknownNameErrors(t *testing.T) {
	h := NewNative()
	_, err := h.Compile("nope", NativeLang)
	require.Error(t, err)
}

func TestCompileWrongLangErrors(t *testing.T) {
	h := NewNative()
	h.RegisterMap("id", func(doc json.RawMessage) ([]KV, error) { return nil, nil })
	_, err := h.Compile("id", "javascript")
	require.Error(t, err)
}

func TestInvokeMapReturnsEmittedPairs(t *testing.T) {
	h := NewNative()
	h.RegisterMap("twice", func(doc json.RawMessage) ([]KV, error) {
		return []KV{
			{Key: json.RawMessage(`"a"`), Value: json.RawMessage(`1`)},
			{Key: json.RawMessage(`"b"`), Value: json.RawMessage(`2`)},
		}, nil
	})
	fn, err := h.Compile("twice", NativeLang)
	require.NoError(t, err)

	kvs, err := h.InvokeMap(fn, json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Len(t, kvs, 2)
	assert.Equal(t, json.RawMessage(`"a"`), kvs[0].Key)
}

func TestInvokeMapOnReduceOnlyFunctionErrors(t *testing.T) {
	h := NewNative()
	h.RegisterReduce("sum", func(keys json.RawMessage, values []json.RawMessage, rereduce bool) (json.RawMessage, error) {
		return json.RawMessage(`0`), nil
	})
	fn, err := h.Compile("sum", NativeLang)
	require.NoError(t, err)

	_, err = h.InvokeMap(fn, json.RawMessage(`{}`))
	require.Error(t, err)
}

func TestInvokeReduceRoundtrip(t *testing.T) {
	h := NewNative()
	h.RegisterReduce("count", func(keys json.RawMessage, values []json.RawMessage, rereduce bool) (json.RawMessage, error) {
		return json.Marshal(len(values))
	})
	fn, err := h.Compile("count", NativeLang)
	require.NoError(t, err)

	out, err := h.InvokeReduce(fn, nil, []json.RawMessage{[]byte("1"), []byte("2"), []byte("3")}, false)
	require.NoError(t, err)
	assert.JSONEq(t, `3`, string(out))
}

func TestCompiledFnReportsLang(t *testing.T) {
	h := NewNative()
	h.RegisterMap("id", func(doc json.RawMessage) ([]KV, error) { return nil, nil })
	fn, err := h.Compile("id", NativeLang)
	require.NoError(t, err)
	assert.Equal(t, NativeLang, fn.Lang())
}
