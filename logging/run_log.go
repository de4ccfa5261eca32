package logging

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultMaxRuns bounds how many runs a RunLog remembers.
const DefaultMaxRuns = 20

// Entry is one captured log record.
type Entry struct {
	Time       time.Time      `json:"time"`
	Level      string         `json:"level"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// RunLog keeps the log lines of the most recent runs, keyed by run ID.
// It is safe for concurrent use.
type RunLog struct {
	mu      sync.RWMutex
	maxRuns int
	order   []string
	entries map[string][]Entry
}

// NewRunLog creates a RunLog remembering at most maxRuns runs. A
// non-positive maxRuns uses DefaultMaxRuns.
func NewRunLog(maxRuns int) *RunLog {
	if maxRuns <= 0 {
		maxRuns = DefaultMaxRuns
	}
	return &RunLog{
		maxRuns: maxRuns,
		entries: make(map[string][]Entry),
	}
}

// Logger returns a logger that writes through base and also records every
// line, at any level, under runID.
func (l *RunLog) Logger(base *slog.Logger, runID string) *slog.Logger {
	l.mu.Lock()
	if _, ok := l.entries[runID]; !ok {
		l.order = append(l.order, runID)
		l.entries[runID] = nil
		for len(l.order) > l.maxRuns {
			delete(l.entries, l.order[0])
			l.order = l.order[1:]
		}
	}
	l.mu.Unlock()

	return slog.New(&captureHandler{next: base.Handler(), log: l, runID: runID})
}

// Entries returns a copy of the lines recorded for runID.
func (l *RunLog) Entries(runID string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries[runID])
}

// Runs lists the remembered run IDs, oldest first.
func (l *RunLog) Runs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.order)
}

func (l *RunLog) add(runID string, e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Evicted runs stop recording.
	if _, ok := l.entries[runID]; !ok {
		return
	}
	l.entries[runID] = append(l.entries[runID], e)
}

// captureHandler records every record into a RunLog and forwards the ones
// the wrapped handler accepts.
type captureHandler struct {
	next   slog.Handler
	log    *RunLog
	runID  string
	attrs  []slog.Attr
	prefix string
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *captureHandler) Handle(ctx context.Context, r slog.Record) error {
	e := Entry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
	}
	if n := len(h.attrs) + r.NumAttrs(); n > 0 {
		e.Attributes = make(map[string]any, n)
	}
	for _, a := range h.attrs {
		e.Attributes[a.Key] = plainValue(a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		e.Attributes[h.prefix+a.Key] = plainValue(a.Value)
		return true
	})
	h.log.add(h.runID, e)

	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	c.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &c
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.next = h.next.WithGroup(name)
	c.prefix = h.prefix + name + "."
	return &c
}

// plainValue turns a slog.Value into something encoding/json can print.
func plainValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindGroup:
		group := make(map[string]any, len(v.Group()))
		for _, a := range v.Group() {
			group[a.Key] = plainValue(a.Value)
		}
		return group
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}
