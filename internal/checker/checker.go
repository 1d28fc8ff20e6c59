// Package checker implements the Link Integrity Checker (§4.5): for
// each non-tombstoned link past check_id, resolve context_id against
// the parent collection and tombstone the link if the parent is gone.
// SPEC_FULL.md §C.2 extends this with expired-link tombstoning
// (original_source's dupin_linkb.c expire_tm field), folded into the
// same sweep since both are "retire this link" decisions made on the
// same row.
//
// Grounded on the teacher's internal/store background-sweep shape,
// generalized to the parent-lookup indirection linkstore.ParentExistence
// already defines.
package checker

import (
	"context"
	"errors"
	"time"

	"github.com/areggiori/dupin-go/internal/linkstore"
	"github.com/areggiori/dupin-go/internal/validate"
)

// DefaultBatchSize is the row-id batch size a check pass walks.
const DefaultBatchSize = 500

// Target is the link store a Checker runs against.
type Target interface {
	RowsAfter(ctx context.Context, since int64, limit int) ([]linkstore.Revision, error)
	LastSeq(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id, supplied string) (string, error)
	GetCheckID(ctx context.Context) (int64, error)
	SetCheckID(ctx context.Context, v int64) error
}

// Checker runs link-integrity and expiry sweeps over one link store.
type Checker struct {
	Parent linkstore.ParentExistence
}

// New constructs a Checker bound to parent, the store whose ids a
// relationship's context_id (or href, when it targets another document)
// is validated against.
func New(parent linkstore.ParentExistence) *Checker {
	return &Checker{Parent: parent}
}

// Run walks target from its persisted check_id to the end, tombstoning
// any link whose context_id's parent is itself tombstoned or absent, and
// any link whose expire_tm has passed (SPEC_FULL §C.2).
func (c *Checker) Run(ctx context.Context, target Target) error {
	since, err := target.GetCheckID(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UnixMicro()

	for {
		batch, err := target.RowsAfter(ctx, since, DefaultBatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		for _, rev := range batch {
			if !rev.Deleted {
				if err := c.checkOne(ctx, target, rev, now); err != nil {
					return err
				}
			}
			if rev.RowID > since {
				since = rev.RowID
			}
		}
		if err := target.SetCheckID(ctx, since); err != nil {
			return err
		}
		if len(batch) < DefaultBatchSize {
			return nil
		}
	}
}

func (c *Checker) checkOne(ctx context.Context, target Target, rev linkstore.Revision, now int64) error {
	if rev.ExpireTM != 0 && rev.ExpireTM <= now {
		_, err := target.Delete(ctx, rev.ID, rev.Mvcc())
		return ignoreConflictOrNotFound(err)
	}

	exists, err := c.Parent.Exists(ctx, rev.ContextID)
	if err != nil {
		return err
	}
	if exists {
		tomb, err := c.Parent.IsTombstoned(ctx, rev.ContextID)
		if err != nil {
			return err
		}
		if !tomb {
			return nil
		}
	}
	_, err = target.Delete(ctx, rev.ID, rev.Mvcc())
	return ignoreConflictOrNotFound(err)
}

// ignoreConflictOrNotFound swallows races where another writer already
// updated or removed the link between the read and this tombstone write:
// the checker's job is to eventually retire dangling links, not to win a
// race against a legitimate concurrent update.
func ignoreConflictOrNotFound(err error) error {
	if err == nil || errors.Is(err, validate.ErrConflict) || errors.Is(err, validate.ErrNotFound) {
		return nil
	}
	return err
}
