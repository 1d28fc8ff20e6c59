// Package histdiff computes unified-style diffs between two revisions
// of a document or link record, surfacing the content divergence behind
// an MVCC conflict (§3 "Revision token").
//
// Grounded on the teacher's internal/diff package (diffmatchpatch-based
// line diff with semantic cleanup and collapsed equal-run context),
// generalised from comparing two markdown file versions to comparing
// two JSON revision bodies.
package histdiff

import (
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines shown before/after a
// change; longer equal runs are collapsed with "...".
const contextLines = 3

// Result holds one diff's formatted output.
type Result struct {
	OldLabel string
	NewLabel string
	Body     string
}

// Compute diffs oldContent against newContent, labelling each side.
func Compute(oldContent, newContent, oldLabel, newLabel string) Result {
	dmp := diffmatchpatch.New()
	d := dmp.DiffMain(oldContent, newContent, false)
	d = dmp.DiffCleanupSemantic(d)

	return Result{
		OldLabel: oldLabel,
		NewLabel: newLabel,
		Body:     format(d),
	}
}

func format(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				b.WriteString("+ " + l + "\n")
			}
		case diffmatchpatch.DiffEqual:
			if len(lines) > 2*contextLines {
				for i := 0; i < contextLines; i++ {
					b.WriteString("  " + lines[i] + "\n")
				}
				b.WriteString("  ...\n")
				for i := len(lines) - contextLines; i < len(lines); i++ {
					b.WriteString("  " + lines[i] + "\n")
				}
			} else {
				for _, l := range lines {
					b.WriteString("  " + l + "\n")
				}
			}
		}
	}
	return b.String()
}

// Colourise adds ANSI colours to a formatted diff body for TTY output.
func Colourise(d string) string {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		reset = "\033[0m"
	)
	var b strings.Builder
	for _, line := range strings.Split(d, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "):
			b.WriteString(red + line + reset + "\n")
		case strings.HasPrefix(line, "+ "):
			b.WriteString(green + line + reset + "\n")
		default:
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Format returns the diff with a "--- old\n+++ new" header, optionally
// colourised.
func (r Result) Format(colour bool) string {
	header := "--- " + r.OldLabel + "\n+++ " + r.NewLabel + "\n"
	if colour {
		return header + Colourise(r.Body)
	}
	return header + r.Body
}

// ParseVersionRange parses a "v1:v2" revision range, e.g. "1:3".
func ParseVersionRange(s string) (v1, v2 int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, strconvErr(s)
	}
	v1, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	v2, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return v1, v2, nil
}

func strconvErr(s string) error {
	return &rangeError{s}
}

type rangeError struct{ s string }

func (e *rangeError) Error() string {
	return "invalid version range " + strconv.Quote(e.s) + " (expected v1:v2)"
}
