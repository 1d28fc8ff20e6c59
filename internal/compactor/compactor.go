// Package compactor implements the compaction engine (§4.5): reclaiming
// space from superseded document/link revisions and tombstones. Grounded
// on the teacher's internal/store/vacuum.go (batch walk + VACUUM) and
// generalized to the spec's per-collection compact_id watermark and
// "redo after finish" single-compactor-per-collection rule.
package compactor

import (
	"context"
	"sync"

	"github.com/areggiori/dupin-go/internal/relstore"
)

// DefaultBatchSize is the row-id batch size a compaction pass walks.
const DefaultBatchSize = 500

// Target is whatever a compactor runs against: a document store or a
// link store, both of which implement CompactBatch/GetCompactID/
// SetCompactID already.
type Target interface {
	Name() string
	File() *relstore.File
	CompactBatch(ctx context.Context, since int64, limit int) (deleted int, lastRowID int64, err error)
	GetCompactID(ctx context.Context) (int64, error)
	SetCompactID(ctx context.Context, v int64) error
}

// Compactor runs at most one compaction pass at a time per target; a
// request arriving while one is in flight merely sets a redo flag
// (§4.5 "requests while running merely set a 'redo after finish' flag").
type Compactor struct {
	mu      sync.Mutex
	running bool
	redo    bool
}

// New constructs a Compactor. One Compactor instance should be shared by
// every caller of Run for a given collection (the registry keeps one per
// handle).
func New() *Compactor { return &Compactor{} }

// Run walks target in batches until a batch comes back empty, then reclaims
// space and advances compact_id. If Run is already in flight for this
// Compactor, the call instead flags a redo and returns immediately; the
// in-flight run will loop again once it finishes.
func (c *Compactor) Run(ctx context.Context, target Target) error {
	c.mu.Lock()
	if c.running {
		c.redo = true
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	for {
		if err := c.runOnce(ctx, target); err != nil {
			return err
		}
		c.mu.Lock()
		again := c.redo
		c.redo = false
		c.mu.Unlock()
		if !again {
			return nil
		}
	}
}

func (c *Compactor) runOnce(ctx context.Context, target Target) error {
	since, err := target.GetCompactID(ctx)
	if err != nil {
		return err
	}
	for {
		_, lastRowID, err := target.CompactBatch(ctx, since, DefaultBatchSize)
		if err != nil {
			return err
		}
		if lastRowID == 0 {
			break
		}
		since = lastRowID
		if err := target.SetCompactID(ctx, since); err != nil {
			return err
		}
	}
	return target.File().ReclaimSpace(ctx)
}
