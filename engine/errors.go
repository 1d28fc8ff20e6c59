// Package engine is the library entry point wrapping the registry:
// top-level Open/Create/Delete collection operations plus the
// administrative interface (§6 "list, create, delete, compact, check,
// sync, rebuild-indexes, bulk-insert, changes-dump") that cmd/ and
// internal/mcpadmin both depend on.
package engine

import "github.com/areggiori/dupin-go/internal/validate"

// Sentinel errors re-exported at the library boundary (§7, SPEC_FULL.md
// §A "Error handling"), so callers never need to import internal/validate
// directly.
var (
	ErrNotFound        = validate.ErrNotFound
	ErrAlreadyExists   = validate.ErrAlreadyExists
	ErrConflict        = validate.ErrConflict
	ErrInvalidName     = validate.ErrInvalidName
	ErrInvalidID       = validate.ErrInvalidID
	ErrInvalidMvcc     = validate.ErrInvalidMvcc
	ErrInvalidJSON     = validate.ErrInvalidJSON
	ErrContentTooLarge = validate.ErrContentTooLarge
	ErrIO              = validate.ErrIO
	ErrCorruptMetadata = validate.ErrCorruptMetadata
	ErrScript          = validate.ErrScript
	ErrBusy            = validate.ErrBusy
	ErrInternal        = validate.ErrInternal
)
