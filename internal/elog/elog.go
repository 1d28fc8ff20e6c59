// Package elog is the engine's fluent structured-event logger, in the
// shape of the teacher's internal/log package (Event(source,
// action).Detail(k,v).Write(err)) but backed by log/slog against a
// plain io.Writer rather than a dedicated SQLite audit log: this trail
// is operational (fan-out failures, view warnings, checker activity),
// not a user-facing history log, matching the teacher's own MCP server
// (slog.New(slog.NewTextHandler(...))).
package elog

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	logger  = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// SetOutput redirects every subsequent Event to w, using level as the
// handler's minimum level. Tests typically call this with an
// io.Discard or a bytes.Buffer.
func SetOutput(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Builder accumulates detail key/value pairs for one event before it is
// written.
type Builder struct {
	source, action string
	attrs          []any
}

// Event starts a new log event identified by source (the collection or
// subsystem name) and action (the operation).
func Event(source, action string) *Builder {
	return &Builder{source: source, action: action}
}

// Detail appends one key/value pair to the event.
func (b *Builder) Detail(key string, value any) *Builder {
	b.attrs = append(b.attrs, key, value)
	return b
}

// Write emits the event at Info level if err is nil, Warn otherwise, with
// the error attached as a "err" attribute.
func (b *Builder) Write(err error) {
	mu.RLock()
	l := logger
	mu.RUnlock()

	attrs := b.attrs
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, "err", err.Error())
	}
	l.Log(nil, level, b.source+"."+b.action, attrs...)
}
