// Package mvcc implements the revision-token grammar shared by the document
// store and the link store: "<rev>-<hash>" where rev is a strictly
// increasing integer starting at 1 and hash is a fixed-width hex digest of
// the revision's body.
//
// The token is opaque to callers: it is compared for equality only, never
// parsed by consumers outside the engine. Parsing here exists solely to
// validate the grammar at the write boundary (§7 InvalidMvcc).
package mvcc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/areggiori/dupin-go/internal/validate"
)

// HashHexLen is the fixed width of the hex-encoded content hash (blake2b-128).
const HashHexLen = 32

// Token is a parsed "<rev>-<hash>" revision token.
type Token struct {
	Rev  int
	Hash string
}

// String renders the token in its public "<rev>-<hash>" form.
func (t Token) String() string {
	return fmt.Sprintf("%d-%s", t.Rev, t.Hash)
}

// New constructs a token from a revision number and content hash.
func New(rev int, hash string) Token {
	return Token{Rev: rev, Hash: hash}
}

// Parse validates and decomposes a "<rev>-<hash>" token.
func Parse(s string) (Token, error) {
	i := strings.IndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return Token{}, fmt.Errorf("%w: %q", validate.ErrInvalidMvcc, s)
	}
	rev, err := strconv.Atoi(s[:i])
	if err != nil || rev < 1 {
		return Token{}, fmt.Errorf("%w: bad revision in %q", validate.ErrInvalidMvcc, s)
	}
	hash := s[i+1:]
	if len(hash) != HashHexLen {
		return Token{}, fmt.Errorf("%w: bad hash width in %q", validate.ErrInvalidMvcc, s)
	}
	for _, r := range hash {
		if !isHex(r) {
			return Token{}, fmt.Errorf("%w: non-hex hash in %q", validate.ErrInvalidMvcc, s)
		}
	}
	return Token{Rev: rev, Hash: hash}, nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// CheckUpdate implements invariant 2 (§3): a supplied token must equal the
// current token to advance; callers pass the empty string only on create.
// A non-empty token that does not parse fails with ErrInvalidMvcc.
func CheckUpdate(supplied, current string) error {
	if supplied == "" {
		return fmt.Errorf("%w: mvcc required for update", validate.ErrConflict)
	}
	if _, err := Parse(supplied); err != nil {
		return err
	}
	if supplied != current {
		return fmt.Errorf("%w: supplied %q != current %q", validate.ErrConflict, supplied, current)
	}
	return nil
}
