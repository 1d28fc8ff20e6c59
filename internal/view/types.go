// Package view implements the map/reduce/re-reduce View Engine (§4.4),
// the core of the core: an incremental map pass over an upstream
// collection, a grouped reduce with re-reduce convergence, deletion
// propagation, and optional cascading into an output document
// collection. Grounded on the teacher's internal/store background-sync
// shape (watermark-driven resumable passes) and on original_source's
// dupin_view.c for the map/reduce/re-reduce state machine and the
// last_to_delete_id deferred-deletion trick (SPEC_FULL.md §C.4).
package view

import (
	"encoding/json"
	"sync"
)

// State is a view's lifecycle state (§4.4 "State machine per view").
type State string

const (
	StateIdle      State = "idle"
	StateMapping   State = "mapping"
	StateReducing  State = "reducing"
	StateReReduce  State = "rereducing"
	StateFailed    State = "failed"
)

// DefaultBatchSize is N in "in batches of N (default 100)" (§4.4.1).
const DefaultBatchSize = 100

// Meta is a view's persisted configuration and watermarks (§3
// "Collection metadata", §4.4 "Watermarks persisted in the view's
// metadata").
type Meta struct {
	Name         string
	ParentKind   string // "document" | "link" | "view"
	ParentName   string
	MapSource    string
	MapLang      string
	ReduceSource string // empty means no reduce
	ReduceLang   string
	OutputName   string // empty means no output collection

	State   State
	FailMsg string

	SyncMapID      int64
	SyncReduceID   int64
	SyncRereduce   bool
	LastToDeleteID int64
}

// Row is one materialized view row (§3 "View Row").
type Row struct {
	RowID int64
	Pid   []string
	Key   json.RawMessage
	Value json.RawMessage
}

// runState is the non-persisted, in-process bookkeeping the reduce
// worker uses to implement the re-reduce checkpoint-skip rule (§4.4.2
// "two consecutive re-reduce passes report the same offending key").
type runState struct {
	mu               sync.Mutex
	lastOffendingKey string
	running          bool
	dirty            bool
	quit             bool
}
