// name.go validates collection names for the registry.
//
// Design: a collection name is a non-empty, printable string with no
// embedded path separator and no reserved leading underscore.
// Bounded by the filesystem's own path-component limit.
package validate

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxNameLength is the filesystem-imposed bound on a collection name.
const MaxNameLength = 255

// Name validates a collection name, as used by Registry.Create/Open/Delete.
func Name(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name too long", ErrInvalidName)
	}
	if strings.HasPrefix(name, "_") {
		return fmt.Errorf("%w: reserved leading underscore", ErrInvalidName)
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: embedded path separator", ErrInvalidName)
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: non-printable character", ErrInvalidName)
		}
	}
	return nil
}

// ID validates a caller-supplied document or link id.
//
// Rules mirror Name: printable, non-empty, no reserved leading underscore
// (the engine reserves "_"-prefixed field names for synthetic projection
// fields, so ids sharing that prefix would be ambiguous in map output).
func ID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidID)
	}
	if strings.HasPrefix(id, "_") {
		return fmt.Errorf("%w: reserved leading underscore", ErrInvalidID)
	}
	for _, r := range id {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: non-printable character", ErrInvalidID)
		}
	}
	return nil
}
