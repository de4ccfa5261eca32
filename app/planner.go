package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nomis52/goplan/catalog"
	"github.com/nomis52/goplan/export"
	"github.com/nomis52/goplan/record"
	"github.com/nomis52/goplan/statusreporter"
	"github.com/nomis52/goplan/store"
	"github.com/nomis52/goplan/suggest"
)

// Status texts shown to the user.
const (
	msgSaved            = "Aktivitet gemt!"
	msgTitleRequired    = "Indtast en titel for aktiviteten"
	msgGoalRequired     = "Vælg en praktik/kompetencemål"
	msgCapacity         = "Maksimum %d aktiviteter tilladt"
	msgSaveFailed       = "Aktiviteten kunne ikke gemmes"
	msgDeleteFailed     = "Aktiviteten kunne ikke slettes"
	msgNothingToExport  = "Ingen aktiviteter at eksportere"
	msgExportFailed     = "PDF-eksporten mislykkedes"
	msgMissingSelection = "Vælg praktik og mindst ét mål først"
	msgSuggestFailed    = "Forslag kunne ikke hentes"
)

// Planner performs the operations of the planner that have side effects:
// saving and deleting records, exporting and fetching suggestions. Each
// operation takes the current State and returns the next one.
//
// Errors that the user can fix (missing title, full collection, nothing to
// export) are reported twice: as a warning status on the returned State,
// which is otherwise unchanged, and as the returned error.
type Planner struct {
	store     *store.Store
	catalog   *catalog.Catalog
	exporter  *export.Exporter
	status    *statusreporter.StatusReporter
	requester *suggest.Requester
	metrics   *Metrics
	variant   record.Variant
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithVariant selects which fields saved records carry.
func WithVariant(v record.Variant) Option {
	return func(p *Planner) {
		p.variant = v
	}
}

// WithExporter sets the PDF exporter.
func WithExporter(e *export.Exporter) Option {
	return func(p *Planner) {
		p.exporter = e
	}
}

// WithStatusReporter sets how statuses are created.
func WithStatusReporter(r *statusreporter.StatusReporter) Option {
	return func(p *Planner) {
		p.status = r
	}
}

// WithRequester sets where suggestions come from.
func WithRequester(r *suggest.Requester) Option {
	return func(p *Planner) {
		p.requester = r
	}
}

// WithMetrics sets the metrics to update.
func WithMetrics(m *Metrics) Option {
	return func(p *Planner) {
		p.metrics = m
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// NewPlanner creates a Planner over an opened store and a loaded catalog.
func NewPlanner(st *store.Store, cat *catalog.Catalog, opts ...Option) *Planner {
	p := &Planner{
		store:   st,
		catalog: cat,
		variant: record.PlacementVariant,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.exporter == nil {
		p.exporter = export.New(export.WithVariant(p.variant), export.WithLogger(p.logger))
	}
	if p.status == nil {
		p.status = statusreporter.New(p.logger)
	}
	if p.requester == nil {
		p.requester = suggest.NewRequester(suggest.NewStaticSource(suggest.DefaultDelay), p.logger)
	}
	if p.metrics == nil {
		p.metrics = nopMetrics()
	}
	p.metrics.records.Set(float64(st.Len()))
	return p
}

// Variant returns the variant records are built with.
func (p *Planner) Variant() record.Variant {
	return p.variant
}

// Placements lists the catalog keys in sorted order.
func (p *Planner) Placements() []string {
	return p.catalog.Keys()
}

// Goals returns the selectable goal statements for a catalog key.
func (p *Planner) Goals(placement string) []string {
	return p.catalog.Statements(placement)
}

// Records returns a snapshot of the saved collection.
func (p *Planner) Records() []record.Activity {
	return p.store.Records()
}

// Reload re-reads the collection from storage, picking up changes made by
// other processes.
func (p *Planner) Reload(ctx context.Context) error {
	if err := p.store.Reload(ctx); err != nil {
		return fmt.Errorf("reloading activities: %w", err)
	}
	p.metrics.records.Set(float64(p.store.Len()))
	return nil
}

// Save stores the draft as a new record. On success the form is cleared,
// keeping the selected placement, and a success status is set.
func (p *Planner) Save(ctx context.Context, s State) (State, error) {
	now := p.now()

	rec, err := s.Draft.Build(p.variant, now)
	if err != nil {
		return p.rejectSave(s, err, now), err
	}
	if err := p.store.Append(ctx, rec); err != nil {
		return p.rejectSave(s, err, now), fmt.Errorf("saving activity: %w", err)
	}

	p.metrics.saved.Inc()
	p.metrics.records.Set(float64(p.store.Len()))
	p.logger.Info("activity saved", "id", rec.ID, "title", rec.Title, "records", p.store.Len())

	s = ClearForm(s)
	s.Status = p.status.Success(msgSaved, now)
	return s, nil
}

func (p *Planner) rejectSave(s State, err error, now time.Time) State {
	var reason, text string
	switch {
	case errors.Is(err, record.ErrTitleRequired):
		reason, text = reasonTitle, msgTitleRequired
	case errors.Is(err, record.ErrGoalRequired):
		reason, text = reasonGoal, msgGoalRequired
	case errors.Is(err, store.ErrCapacity):
		reason, text = reasonCapacity, fmt.Sprintf(msgCapacity, p.store.Cap())
	default:
		reason, text = reasonStorage, msgSaveFailed
		p.logger.Error("failed to save activity", "error", err)
	}
	p.metrics.reject(reason)

	s = s.clone()
	s.Status = p.status.Warn(text, now)
	return s
}

// Delete removes the record with the given id. Deleting an id that is not
// stored is a no-op and reports false.
func (p *Planner) Delete(ctx context.Context, s State, id int64) (State, bool, error) {
	removed, err := p.store.Delete(ctx, id)
	if err != nil {
		p.logger.Error("failed to delete activity", "id", id, "error", err)
		s = s.clone()
		s.Status = p.status.Warn(msgDeleteFailed, p.now())
		return s, false, fmt.Errorf("deleting activity %d: %w", id, err)
	}
	if removed {
		p.metrics.deleted.Inc()
		p.metrics.records.Set(float64(p.store.Len()))
		p.logger.Info("activity deleted", "id", id)
	}
	return s, removed, nil
}

// Export writes the saved collection as a PDF to w.
func (p *Planner) Export(s State, w io.Writer) (State, export.Result, error) {
	return p.export(s, func(records []record.Activity) (export.Result, error) {
		return p.exporter.Export(w, records)
	})
}

// ExportFile writes the saved collection as a PDF into dir.
func (p *Planner) ExportFile(s State, dir string) (State, export.Result, error) {
	return p.export(s, func(records []record.Activity) (export.Result, error) {
		return p.exporter.ExportFile(dir, records)
	})
}

func (p *Planner) export(s State, write func([]record.Activity) (export.Result, error)) (State, export.Result, error) {
	records := p.store.Records()
	if len(records) == 0 {
		s = s.clone()
		s.Status = p.status.Warn(msgNothingToExport, p.now())
		return s, export.Result{}, export.ErrNoRecords
	}

	res, err := write(records)
	if err != nil {
		p.logger.Error("failed to export activities", "error", err)
		s = s.clone()
		s.Status = p.status.Warn(msgExportFailed, p.now())
		return s, export.Result{}, fmt.Errorf("exporting activities: %w", err)
	}

	p.metrics.exports.Inc()
	p.metrics.pages.Set(float64(res.Pages))
	return s, res, nil
}

// RequestSuggestions starts fetching suggestions for the selected placement
// and goals. Any request still running is abandoned. done receives the
// result from another goroutine; pass it to ReceiveSuggestions.
func (p *Planner) RequestSuggestions(ctx context.Context, s State, done func(suggest.Result)) (State, error) {
	req := suggest.Request{Placement: s.Draft.Placement, Goals: s.Draft.Goals}
	seq, err := p.requester.Request(ctx, req, done)
	if err != nil {
		s = s.clone()
		s.Status = p.status.Warn(msgMissingSelection, p.now())
		return s, err
	}

	s = s.clone()
	s.Loading = true
	s.Suggestions = nil
	s.SuggestionSeq = seq
	return s, nil
}

// ReceiveSuggestions applies a finished request. Results of requests other
// than the one s is waiting for are ignored.
func (p *Planner) ReceiveSuggestions(s State, res suggest.Result) State {
	if !s.Loading || res.Seq != s.SuggestionSeq {
		return s
	}
	s = s.clone()
	s.Loading = false
	if res.Err != nil {
		s.Status = p.status.Warn(msgSuggestFailed, p.now())
		return s
	}
	s.Suggestions = res.Suggestions
	return s
}

// AwaitSuggestions requests suggestions and blocks until they arrive or ctx
// is done.
func (p *Planner) AwaitSuggestions(ctx context.Context, s State) (State, error) {
	results := make(chan suggest.Result, 1)
	s, err := p.RequestSuggestions(ctx, s, func(res suggest.Result) { results <- res })
	if err != nil {
		return s, err
	}

	select {
	case res := <-results:
		return p.ReceiveSuggestions(s, res), res.Err
	case <-ctx.Done():
		p.requester.Cancel()
		s = s.clone()
		s.Loading = false
		return s, ctx.Err()
	}
}
