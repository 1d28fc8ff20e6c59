package changefeed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyWakesWaiter(t *testing.T) {
	n := New()
	waitCh := n.Wait()

	done := make(chan struct{})
	go func() {
		<-waitCh
		close(done)
	}()

	n.Notify()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by Notify")
	}
}

func TestCloseUnblocksWaiters(t *testing.T) {
	n := New()
	waitCh := n.Wait()
	n.Close()

	select {
	case <-waitCh:
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock existing waiter")
	}

	// A Wait() call after Close also returns an already-closed channel.
	select {
	case <-n.Wait():
	case <-time.After(time.Second):
		t.Fatal("Wait after Close should return a closed channel")
	}
}

func TestNotifyAfterCloseIsNoop(t *testing.T) {
	n := New()
	n.Close()
	assert.NotPanics(t, func() { n.Notify() })
}

type fakeSource struct {
	mu    sync.Mutex
	items []int
}

func (f *fakeSource) push(v int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, v)
}

func (f *fakeSource) Changes(ctx context.Context, since int64, limit int) (Page[int], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	var lastSeq int64
	for i, v := range f.items {
		seq := int64(i + 1)
		if seq > since {
			out = append(out, v)
		}
		lastSeq = seq
	}
	return Page[int]{Items: out, LastSeq: lastSeq}, nil
}

func TestPollReturnsImmediately(t *testing.T) {
	src := &fakeSource{items: []int{1, 2, 3}}
	f := &Feed[int]{Source: src, Notifier: New()}

	page, err := f.Poll(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, page.Items)
	assert.Equal(t, int64(3), page.LastSeq)
}

func TestLongPollReturnsEmptyOnTimeout(t *testing.T) {
	src := &fakeSource{}
	f := &Feed[int]{Source: src, Notifier: New()}

	start := time.Now()
	page, err := f.LongPoll(context.Background(), 0, 0, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLongPollWakesOnNotify(t *testing.T) {
	src := &fakeSource{}
	notifier := New()
	f := &Feed[int]{Source: src, Notifier: notifier}

	go func() {
		time.Sleep(20 * time.Millisecond)
		src.push(42)
		notifier.Notify()
	}()

	page, err := f.LongPoll(context.Background(), 0, 0, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 42, page.Items[0])
}

func TestLongPollCancelledByContext(t *testing.T) {
	src := &fakeSource{}
	f := &Feed[int]{Source: src, Notifier: New()}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	page, err := f.LongPoll(ctx, 0, 0, 5*time.Second)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestContinuousDeliversAndHeartbeats(t *testing.T) {
	src := &fakeSource{}
	notifier := New()
	f := &Feed[int]{Source: src, Notifier: notifier}

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var delivered []int
	var heartbeats int

	go func() {
		time.Sleep(15 * time.Millisecond)
		src.push(1)
		notifier.Notify()
	}()

	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	err := f.Continuous(ctx, 0, 0, 20*time.Millisecond, func(p Page[int]) error {
		mu.Lock()
		defer mu.Unlock()
		if len(p.Items) == 0 {
			heartbeats++
		} else {
			delivered = append(delivered, p.Items...)
		}
		return nil
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1}, delivered)
	assert.Greater(t, heartbeats, 0)
}
