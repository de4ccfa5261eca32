// Package export renders the activity collection as a paginated PDF.
//
// Records are turned into layout blocks (see Blocks), paginated by the
// layout engine and drawn with fpdf using the Helvetica core font. The
// output only depends on the records: the document dates are taken from
// the newest record, so exporting the same collection twice gives the same
// bytes.
//
// The core font only covers cp1252, which includes the Danish letters.
// Characters outside it, such as arrows, emoji or CJK text, are measured
// and drawn as ".", so the layout stays consistent but the text is lost.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nomis52/goplan/layout"
	"github.com/nomis52/goplan/record"
)

const (
	// DefaultTitle is printed at the top of the first page.
	DefaultTitle = "Pædagogiske Aktiviteter"
	// DefaultFilename is the name of the exported artifact.
	DefaultFilename = "paedagogiske-aktiviteter.pdf"
	// DefaultPageWidth is the A4 width in millimetres.
	DefaultPageWidth = 210.0

	// fileMode is applied to the exported file; CreateTemp makes it 0600.
	fileMode = 0644
)

// ErrNoRecords is returned when asked to export an empty collection.
var ErrNoRecords = errors.New("no activities to export")

// Result describes a finished export.
type Result struct {
	// Path is set by ExportFile.
	Path    string
	Pages   int
	Records int
	Bytes   int64
}

// Exporter lays out and renders activity collections.
type Exporter struct {
	title     string
	filename  string
	variant   record.Variant
	geometry  layout.Geometry
	pageWidth float64
	policy    layout.BreakPolicy
	logger    *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(e *Exporter) {
		e.title = title
	}
}

// WithFilename sets the artifact filename used by ExportFile.
func WithFilename(name string) Option {
	return func(e *Exporter) {
		e.filename = name
	}
}

// WithVariant selects which record fields are printed.
func WithVariant(v record.Variant) Option {
	return func(e *Exporter) {
		e.variant = v
	}
}

// WithGeometry overrides the page geometry.
func WithGeometry(g layout.Geometry) Option {
	return func(e *Exporter) {
		e.geometry = g
	}
}

// WithPageWidth overrides the physical page width.
func WithPageWidth(w float64) Option {
	return func(e *Exporter) {
		e.pageWidth = w
	}
}

// WithBreakPolicy selects the page-break policy.
func WithBreakPolicy(p layout.BreakPolicy) Option {
	return func(e *Exporter) {
		e.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		title:     DefaultTitle,
		filename:  DefaultFilename,
		variant:   record.PlacementVariant,
		geometry:  layout.DefaultGeometry(),
		pageWidth: DefaultPageWidth,
		policy:    layout.BreakCoarse,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Filename returns the artifact filename.
func (e *Exporter) Filename() string {
	return e.filename
}

func (e *Exporter) engine(d *pdfDocument) *layout.Engine {
	return layout.NewEngine(d,
		layout.WithGeometry(e.geometry),
		layout.WithBreakPolicy(e.policy))
}

// Paginate lays out records without rendering them.
func (e *Exporter) Paginate(records []record.Activity) layout.Document {
	d := newPDFDocument(e.pageWidth, e.geometry.PageHeight)
	return e.engine(d).Paginate(e.title, Blocks(records, e.variant))
}

// Export renders records as a PDF into w. The records slice is not retained.
func (e *Exporter) Export(w io.Writer, records []record.Activity) (Result, error) {
	if len(records) == 0 {
		return Result{}, ErrNoRecords
	}
	records = record.CloneAll(records)

	d := newPDFDocument(e.pageWidth, e.geometry.PageHeight)
	d.setMetadata(e.title, documentDate(records))

	doc := e.engine(d).Paginate(e.title, Blocks(records, e.variant))
	if err := d.draw(doc); err != nil {
		return Result{}, fmt.Errorf("rendering pdf: %w", err)
	}

	cw := &countingWriter{w: w}
	if err := d.pdf.Output(cw); err != nil {
		return Result{}, fmt.Errorf("writing pdf: %w", err)
	}

	res := Result{Pages: len(doc.Pages), Records: len(records), Bytes: cw.n}
	e.logger.Info("activities exported", "records", res.Records, "pages", res.Pages, "bytes", res.Bytes)
	return res, nil
}

// ExportFile renders records into dir/<filename>, replacing any previous
// export atomically.
func (e *Exporter) ExportFile(dir string, records []record.Activity) (Result, error) {
	if len(records) == 0 {
		return Result{}, ErrNoRecords
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+e.filename+"-*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	res, err := e.Export(tmp, records)
	if err != nil {
		tmp.Close()
		return Result{}, err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close temp file: %w", err)
	}

	res.Path = filepath.Join(dir, e.filename)
	if err := os.Rename(tmp.Name(), res.Path); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", res.Path, err)
	}
	return res, nil
}

// documentDate is the newest creation time, so the PDF metadata is stable.
func documentDate(records []record.Activity) time.Time {
	var newest time.Time
	for _, a := range records {
		if a.CreatedAt.After(newest) {
			newest = a.CreatedAt
		}
	}
	if newest.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return newest.UTC()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
