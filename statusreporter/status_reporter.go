// Package statusreporter produces the short status messages shown to the
// user after an operation ("✅ Aktivitet gemt!", "⚠️ ..."). A status is a
// value with an expiry; it is cleared once the expiry has passed.
package statusreporter

import (
	"io"
	"log/slog"
	"time"
)

// DefaultTTL is how long a status stays visible.
const DefaultTTL = 3 * time.Second

// Kind classifies a status message.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
)

// Status is a transient user-visible message.
type Status struct {
	Kind      Kind      `json:"kind,omitempty"`
	Text      string    `json:"text,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the status should still be shown at now.
func (s Status) Active(now time.Time) bool {
	return s.Text != "" && now.Before(s.ExpiresAt)
}

// Expire returns the zero Status once s is no longer active.
func (s Status) Expire(now time.Time) Status {
	if s.Active(now) {
		return s
	}
	return Status{}
}

// StatusReporter creates statuses and logs each of them.
//
// THREAD SAFETY:
// StatusReporter holds no mutable state and can be shared between goroutines.
type StatusReporter struct {
	logger *slog.Logger
	ttl    time.Duration
}

// Option configures a StatusReporter.
type Option func(*StatusReporter)

// WithTTL sets how long statuses stay active.
func WithTTL(ttl time.Duration) Option {
	return func(r *StatusReporter) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// New creates a StatusReporter. A nil logger discards log output.
func New(logger *slog.Logger, opts ...Option) *StatusReporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &StatusReporter{logger: logger, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TTL returns the configured lifetime of a status.
func (r *StatusReporter) TTL() time.Duration {
	return r.ttl
}

// Success reports a completed operation.
func (r *StatusReporter) Success(text string, now time.Time) Status {
	r.logger.Info(text, "status", KindSuccess)
	return Status{Kind: KindSuccess, Text: "✅ " + text, ExpiresAt: now.Add(r.ttl)}
}

// Warn reports an operation that did not happen and why.
func (r *StatusReporter) Warn(text string, now time.Time) Status {
	r.logger.Warn(text, "status", KindWarning)
	return Status{Kind: KindWarning, Text: "⚠️ " + text, ExpiresAt: now.Add(r.ttl)}
}
