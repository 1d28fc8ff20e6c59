// Package cliprogress provides CLI progress indicators for long-running
// administrative operations (bulk-insert, compact, check, sync). Output
// goes to stderr to keep stdout clean for piping; TTY detection ensures
// proper formatting in both interactive and scripted usage.
//
// Grounded on the teacher's internal/progress package (Progress/Spinner
// shape, minItems threshold, stderr + term.IsTerminal gating), adapted
// from item-count progress over markdown writes to record-count
// progress over bulk-insert results and a spinner bracketing the
// blocking maintenance calls (compact/check/sync/rebuild-indexes).
package cliprogress

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// minItems is the minimum number of items before showing progress; for
// small batches progress adds noise without benefit.
const minItems = 5

// Progress tracks and displays bulk-insert progress.
type Progress struct {
	w       io.Writer
	label   string
	total   int
	current int
	isTTY   bool
}

// New creates a progress reporter that writes to stderr. If total is
// less than minItems, updates are suppressed.
func New(label string, total int) *Progress {
	return &Progress{
		w:     os.Stderr,
		label: label,
		total: total,
		isTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Increment advances the progress counter by one.
func (p *Progress) Increment() {
	p.current++
}

// Print writes the current progress to stderr. On TTY it overwrites the
// line in place; for non-TTY or small totals it is a no-op.
func (p *Progress) Print() {
	if p.total < minItems || !p.isTTY {
		return
	}
	pct := 0
	if p.total > 0 {
		pct = (p.current * 100) / p.total
	}
	fmt.Fprintf(p.w, "\r%s... %d/%d (%d%%)", p.label, p.current, p.total, pct)
}

// Done clears the progress line, if any was shown.
func (p *Progress) Done() {
	if p.total < minItems || !p.isTTY {
		return
	}
	fmt.Fprintf(p.w, "\r%s\r", "                                                  ")
}

// Spinner displays an indeterminate spinner around one blocking call.
type Spinner struct {
	w       io.Writer
	label   string
	frame   int
	isTTY   bool
	frames  []string
	running bool
}

// NewSpinner creates a spinner that writes to stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		w:      os.Stderr,
		label:  label,
		isTTY:  term.IsTerminal(int(os.Stderr.Fd())),
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start displays the spinner.
func (s *Spinner) Start() {
	if !s.isTTY {
		return
	}
	s.running = true
	fmt.Fprintf(s.w, "%s %s...", s.frames[0], s.label)
}

// Tick advances the spinner animation by one frame.
func (s *Spinner) Tick() {
	if !s.isTTY || !s.running {
		return
	}
	s.frame = (s.frame + 1) % len(s.frames)
	fmt.Fprintf(s.w, "\r%s %s...", s.frames[s.frame], s.label)
}

// Stop clears the spinner line.
func (s *Spinner) Stop() {
	if !s.isTTY || !s.running {
		return
	}
	s.running = false
	fmt.Fprintf(s.w, "\r%s\r", "                                        ")
}

// Run starts the spinner, ticks it every interval in a background
// goroutine while fn runs, and stops it once fn returns.
func Run(label string, fn func() error) error {
	s := NewSpinner(label)
	s.Start()
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
	err := fn()
	close(done)
	s.Stop()
	return err
}
