// Package testutil sends slog output to the test log and keeps it for
// assertions.
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Entry is one logged record with its attributes flattened to strings.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Recorder collects entries logged through the handlers it hands out.
type Recorder struct {
	t       testing.TB
	mu      sync.Mutex
	entries []Entry
}

// Entries returns a copy of everything logged so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Find returns the first entry with msg.
func (r *Recorder) Find(msg string) (Entry, bool) {
	for _, e := range r.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

// NewTestLogger returns a debug-level logger writing to t.Log, so output
// shows only for failed tests or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	logger, _ := NewRecorder(t)
	return logger
}

// NewRecorder is NewTestLogger plus the recorder behind it.
func NewRecorder(t testing.TB) (*slog.Logger, *Recorder) {
	t.Helper()
	rec := &Recorder{t: t}
	return slog.New(&recordHandler{rec: rec}), rec
}

type recordHandler struct {
	rec    *Recorder
	attrs  []slog.Attr
	prefix string
}

func (h *recordHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: make(map[string]string)}
	var line strings.Builder
	fmt.Fprintf(&line, "%s %s", r.Level, r.Message)
	add := func(key string, v slog.Value) {
		e.Attrs[key] = v.String()
		fmt.Fprintf(&line, " %s=%s", key, v)
	}
	for _, a := range h.attrs {
		add(a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(h.prefix+a.Key, a.Value)
		return true
	})

	h.rec.mu.Lock()
	h.rec.entries = append(h.rec.entries, e)
	h.rec.mu.Unlock()

	h.rec.t.Helper()
	h.rec.t.Log(line.String())
	return nil
}

func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr(nil), h.attrs...), prefixed(h.prefix, attrs)...)
	return &cp
}

func (h *recordHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

// prefixed bakes the current group into attrs added by WithAttrs.
func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}
