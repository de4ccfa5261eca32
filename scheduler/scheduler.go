// Package scheduler exports the activity collection on a cron schedule.
//
// Example usage:
//
//	s, err := scheduler.New("0 6 * * 1-5", planner, "/srv/planner/out", scheduler.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	s.Start(ctx) // Returns immediately, runs in background
//	<-ctx.Done()
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nomis52/goplan/app"
	"github.com/nomis52/goplan/export"
	"github.com/nomis52/goplan/logging"
)

// ErrInvalidCronSpec is returned when the cron specification cannot be parsed.
var ErrInvalidCronSpec = errors.New("invalid cron spec")

// maxHistory bounds how many finished runs are remembered.
const maxHistory = 20

// Planner is the part of app.Planner the scheduler drives.
type Planner interface {
	Reload(ctx context.Context) error
	ExportFile(s app.State, dir string) (app.State, export.Result, error)
}

// Run describes one scheduled export.
type Run struct {
	ID       string        `json:"id"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Result   export.Result `json:"result"`
	// Skipped is set when there was nothing to export.
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Scheduler writes a PDF export into a directory whenever its cron
// schedule fires.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	planner  Planner
	dir      string
	logger   *slog.Logger
	runs     *logging.RunLog
	now      func() time.Time

	mu      sync.Mutex
	seq     int   // protected by mu
	history []Run // protected by mu
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithRunLog records the log lines of every run in runs.
func WithRunLog(runs *logging.RunLog) Option {
	return func(s *Scheduler) {
		s.runs = runs
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// ParseSpec parses a standard 5-field cron expression or a descriptor such
// as @daily.
func ParseSpec(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidCronSpec, err)
	}
	return schedule, nil
}

// New creates a Scheduler that exports into dir on spec.
// Returns ErrInvalidCronSpec if the specification cannot be parsed.
func New(spec string, planner Planner, dir string, opts ...Option) (*Scheduler, error) {
	schedule, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		spec:     spec,
		schedule: schedule,
		planner:  planner,
		dir:      dir,
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runs == nil {
		s.runs = logging.NewRunLog(maxHistory)
	}
	return s, nil
}

// Start launches a goroutine that runs exports on schedule.
// Returns immediately. The goroutine exits when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.Loop(ctx)
}

// Loop runs exports on schedule until ctx is cancelled.
func (s *Scheduler) Loop(ctx context.Context) {
	s.logger.Info("export schedule started", "schedule", s.spec, "dir", s.dir, "next_run", s.NextRun())
	for {
		next := s.schedule.Next(s.now())
		wait := next.Sub(s.now())

		s.logger.Debug("waiting for next scheduled export", "next_run", next, "wait_duration", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("export schedule stopped")
			return
		case <-timer.C:
			s.RunOnce(ctx)
		}
	}
}

// NextRun returns the next scheduled run time from now.
func (s *Scheduler) NextRun() time.Time {
	return s.schedule.Next(s.now())
}

// RunOnce performs one export immediately and records it in the history.
// An empty collection is skipped, not treated as a failure.
func (s *Scheduler) RunOnce(ctx context.Context) Run {
	s.mu.Lock()
	s.seq++
	run := Run{ID: fmt.Sprintf("export-%d", s.seq), Started: s.now()}
	s.mu.Unlock()

	logger := s.runs.Logger(s.logger, run.ID).With("run", run.ID)
	logger.Info("starting scheduled export")

	if err := s.planner.Reload(ctx); err != nil {
		// Export what is in memory rather than nothing.
		logger.Warn("could not reload activities", "error", err)
	}

	_, res, err := s.planner.ExportFile(app.NewState(), s.dir)
	switch {
	case errors.Is(err, export.ErrNoRecords):
		run.Skipped = true
		logger.Info("scheduled export skipped, no activities saved")
	case err != nil:
		run.Error = err.Error()
		logger.Warn("scheduled export failed", "error", err)
	default:
		run.Result = res
		logger.Info("scheduled export written", "path", res.Path, "records", res.Records, "pages", res.Pages)
	}
	run.Finished = s.now()

	s.mu.Lock()
	s.history = append(s.history, run)
	if len(s.history) > maxHistory {
		s.history = slices.Delete(s.history, 0, len(s.history)-maxHistory)
	}
	s.mu.Unlock()
	return run
}

// History returns the most recent runs, oldest first.
func (s *Scheduler) History() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Logs returns the log lines captured during a run.
func (s *Scheduler) Logs(runID string) []logging.Entry {
	return s.runs.Entries(runID)
}
