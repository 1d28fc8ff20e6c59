package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameValid(t *testing.T) {
	for _, n := range []string{"a", "orders", "my-collection", "collection.v2"} {
		assert.NoErrorf(t, Name(n), "expected %q to be valid", n)
	}
}

func TestNameInvalid(t *testing.T) {
	cases := map[string]error{
		"":               ErrInvalidName,
		"_reserved":      ErrInvalidName,
		"has/slash":      ErrInvalidName,
		"has\\backslash": ErrInvalidName,
		"has\x00null":    ErrInvalidName,
	}
	for n, wantErr := range cases {
		err := Name(n)
		require.Errorf(t, err, "expected error for %q", n)
		assert.Truef(t, errors.Is(err, wantErr), "wrong sentinel for %q: %v", n, err)
	}
}

func TestNameTooLong(t *testing.T) {
	err := Name(strings.Repeat("a", MaxNameLength+1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidName))
}

func TestIDValid(t *testing.T) {
	for _, id := range []string{"doc1", "order-42", "a b c"} {
		assert.NoErrorf(t, ID(id), "expected %q to be valid", id)
	}
}

func TestIDInvalid(t *testing.T) {
	cases := []string{"", "_synthetic", "bad\x00char"}
	for _, id := range cases {
		err := ID(id)
		require.Errorf(t, err, "expected error for %q", id)
		assert.True(t, errors.Is(err, ErrInvalidID))
	}
}

func TestJSONBodyValid(t *testing.T) {
	assert.NoError(t, JSONBody([]byte(`{"a":1}`), 0))
	assert.NoError(t, JSONBody([]byte(`[1,2,3]`), 0))
	assert.NoError(t, JSONBody([]byte(`"just a string"`), 0))
}

func TestJSONBodyInvalidSyntax(t *testing.T) {
	err := JSONBody([]byte(`{not json`), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
}

func TestJSONBodyTooLarge(t *testing.T) {
	err := JSONBody([]byte(`{"a":1}`), 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrContentTooLarge))
}

func TestJSONBodyNoLimitWhenZero(t *testing.T) {
	big := []byte(`{"a":"` + strings.Repeat("x", 10000) + `"}`)
	assert.NoError(t, JSONBody(big, 0))
}
