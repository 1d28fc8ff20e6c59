package mvcc

import (
	"errors"
	"testing"

	"github.com/areggiori/dupin-go/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndString(t *testing.T) {
	tok := New(3, "0123456789abcdef0123456789abcdef")
	assert.Equal(t, "3-0123456789abcdef0123456789abcdef", tok.String())
}

func TestParseValid(t *testing.T) {
	hash := "0123456789abcdef0123456789abcdef"
	tok, err := Parse("1-" + hash)
	require.NoError(t, err)
	assert.Equal(t, 1, tok.Rev)
	assert.Equal(t, hash, tok.Hash)
}

func TestParseRoundTrip(t *testing.T) {
	hash := "ffffffffffffffffffffffffffffffff"
	tok, err := Parse((Token{Rev: 42, Hash: hash}).String())
	require.NoError(t, err)
	assert.Equal(t, 42, tok.Rev)
	assert.Equal(t, hash, tok.Hash)
}

func TestParseInvalid(t *testing.T) {
	hash := "0123456789abcdef0123456789abcdef"
	cases := []string{
		"",
		"no-dash-missing",
		"-" + hash,
		"1-",
		"0-" + hash,
		"-1-" + hash,
		"1-tooshort",
		"1-" + hash + "ZZ",
		"1-0123456789ABCDEF0123456789abcdef",
	}
	for _, s := range cases {
		_, err := Parse(s)
		require.Errorf(t, err, "expected error for %q", s)
		assert.Truef(t, errors.Is(err, validate.ErrInvalidMvcc), "expected ErrInvalidMvcc for %q, got %v", s, err)
	}
}

func TestCheckUpdateEmptySupplied(t *testing.T) {
	err := CheckUpdate("", "1-0123456789abcdef0123456789abcdef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrConflict))
}

func TestCheckUpdateMismatch(t *testing.T) {
	err := CheckUpdate("1-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "2-bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrConflict))
}

func TestCheckUpdateMatch(t *testing.T) {
	cur := "2-bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	err := CheckUpdate(cur, cur)
	assert.NoError(t, err)
}
