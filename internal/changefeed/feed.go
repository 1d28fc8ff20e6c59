// feed.go implements the three change feed modes (§4.6): normal
// (one-shot), long-poll (block until new rows or timeout), and
// continuous/comet (keep delivering rows plus a heartbeat).
package changefeed

import (
	"context"
	"time"
)

// Page is one change-feed response page.
type Page[T any] struct {
	Items   []T
	LastSeq int64
}

// Source is whatever a Feed polls for new rows: docstore and linkstore
// both already expose a Changes-shaped query.
type Source[T any] interface {
	Changes(ctx context.Context, since int64, limit int) (Page[T], error)
}

// Feed composes a Source with its collection's Notifier to implement
// long-poll and continuous delivery without busy-polling.
type Feed[T any] struct {
	Source   Source[T]
	Notifier *Notifier
}

// Poll is the normal, one-shot mode: returns immediately with whatever is
// available past since.
func (f *Feed[T]) Poll(ctx context.Context, since int64, limit int) (Page[T], error) {
	return f.Source.Changes(ctx, since, limit)
}

// LongPoll blocks up to timeout for new rows past since, waking early if
// the collection's notifier fires (§4.6 "block up to timeout ms; wake
// when the collection's internal notifier fires on any write").
func (f *Feed[T]) LongPoll(ctx context.Context, since int64, limit int, timeout time.Duration) (Page[T], error) {
	page, err := f.Source.Changes(ctx, since, limit)
	if err != nil || len(page.Items) > 0 {
		return page, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.Notifier.Wait():
		return f.Source.Changes(ctx, since, limit)
	case <-timer.C:
		return page, nil
	case <-ctx.Done():
		return Page[T]{LastSeq: since}, nil
	}
}

// Continuous delivers pages to handler as they become available, plus a
// heartbeat call (handler(nil page with LastSeq unchanged... represented
// here as a nil error, empty Items call) every heartbeat interval, until
// ctx is cancelled (§4.6 "keep the connection open... deliver the new
// rows and a heartbeat every heartbeat ms").
func (f *Feed[T]) Continuous(ctx context.Context, since int64, limit int, heartbeat time.Duration, handler func(Page[T]) error) error {
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		page, err := f.Source.Changes(ctx, since, limit)
		if err != nil {
			return err
		}
		if len(page.Items) > 0 {
			if err := handler(page); err != nil {
				return err
			}
			since = page.LastSeq
			continue
		}

		select {
		case <-f.Notifier.Wait():
			continue
		case <-ticker.C:
			if err := handler(Page[T]{LastSeq: since}); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
