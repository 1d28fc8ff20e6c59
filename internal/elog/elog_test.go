package elog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteEmitsInfoOnSuccess(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelDebug)

	Event("view", "map-pass").Detail("view", "by-t").Detail("rows", 3).Write(nil)

	out := buf.String()
	assert.Contains(t, out, "view.map-pass")
	assert.Contains(t, out, "view=by-t")
	assert.Contains(t, out, "rows=3")
	assert.Contains(t, out, "level=INFO")
}

func TestWriteEmitsWarnWithErrOnFailure(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelDebug)

	Event("registry", "cascade-tombstone-links").Write(assertErr)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.True(t, strings.Contains(out, "err="))
}

type sentinelErr struct{}

func (sentinelErr) Error() string { return "boom" }

var assertErr = sentinelErr{}
