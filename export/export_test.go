package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/goplan/layout"
	"github.com/nomis52/goplan/record"
)

func sampleRecords(n int) []record.Activity {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]record.Activity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, record.Activity{
			ID:          base.Add(time.Duration(i) * time.Minute).UnixMilli(),
			Placement:   "1. praktik",
			Goals:       []string{"Leg og læring", "Kommunikation"},
			Title:       fmt.Sprintf("Aktivitet %d", i+1),
			Description: strings.Repeat("Børnene undersøger naturen med lupper og kameraer. ", 1+i%4),
			TargetGroup: "3-5 årige børn",
			Duration:    "45 minutter",
			Materials:   "Lupper, indsamlingsbøtter, notesbøger, kamera",
			Evaluation:  "Portfolio-dokumentation og refleksionssamtaler",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestExport_WritesPDF(t *testing.T) {
	e := New()
	var buf bytes.Buffer

	res, err := e.Export(&buf, sampleRecords(3))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, int64(buf.Len()), res.Bytes)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 1, res.Pages)
}

func TestExport_Idempotent(t *testing.T) {
	e := New()
	records := sampleRecords(12)

	var first, second bytes.Buffer
	_, err := e.Export(&first, records)
	require.NoError(t, err)
	_, err = e.Export(&second, records)
	require.NoError(t, err)

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestExport_EmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	_, err := New().Export(&buf, nil)
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Zero(t, buf.Len())

	_, err = New().ExportFile(t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestExport_PagesMatchLayout(t *testing.T) {
	e := New()
	prev := 0
	for _, n := range []int{1, 5, 10, 20, 50} {
		records := sampleRecords(n)
		doc := e.Paginate(records)

		res, err := e.Export(&bytes.Buffer{}, records)
		require.NoError(t, err)
		assert.Equal(t, len(doc.Pages), res.Pages)
		assert.GreaterOrEqual(t, res.Pages, prev)
		prev = res.Pages

		headings := doc.Headings()
		require.Len(t, headings, n)
		for i, h := range headings {
			assert.Equal(t, fmt.Sprintf("%d. Aktivitet %d", i+1, i+1), h)
		}
	}
	assert.Greater(t, prev, 1)
}

func TestExport_WrappedLinesFitWidth(t *testing.T) {
	e := New()
	records := sampleRecords(1)
	records[0].Description = strings.Repeat("Wampum mammut ", 60)

	d := newPDFDocument(DefaultPageWidth, 297)
	doc := layout.NewEngine(d).Paginate(DefaultTitle, Blocks(records, record.PlacementVariant))

	g := layout.DefaultGeometry()
	for _, p := range doc.Pages {
		for _, l := range p.Lines {
			if l.Kind == layout.LineBody {
				assert.LessOrEqual(t, d.StringWidth(l.Text, g.BodySize), g.TextWidth)
			}
		}
	}
	assert.Equal(t, e.Paginate(records), doc)
}

func TestExportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	e := New(WithFilename("plan.pdf"))

	res, err := e.ExportFile(dir, sampleRecords(2))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plan.pdf"), res.Path)
	assert.Equal(t, 2, res.Records)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, int64(len(data)))

	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestPDFMeasurer(t *testing.T) {
	d := newPDFDocument(DefaultPageWidth, 297)

	assert.Greater(t, d.StringWidth("WWWW", 12), d.StringWidth("iiii", 12))
	assert.InDelta(t, 2*d.StringWidth("abc", 12), d.StringWidth("abc", 24), 1e-9)
	assert.Greater(t, d.StringWidth("æøå", 12), 0.0)
	assert.Zero(t, d.StringWidth("", 12))
}

func TestPDFMeasurer_OutsideCodePage(t *testing.T) {
	d := newPDFDocument(DefaultPageWidth, 297)

	assert.Equal(t, "....", d.tr("日本語→"))
	assert.InDelta(t, d.StringWidth("....", 12), d.StringWidth("日本語→", 12), 1e-9)
}

func TestExport_FitPolicyAddsPages(t *testing.T) {
	records := sampleRecords(30)
	coarse := New().Paginate(records)
	fit := New(WithBreakPolicy(layout.BreakFit)).Paginate(records)

	assert.GreaterOrEqual(t, len(fit.Pages), len(coarse.Pages))
	g := layout.DefaultGeometry()
	for _, p := range fit.Placements {
		if p.Y > g.MarginTop+g.TitleHeight {
			assert.LessOrEqual(t, p.End(), g.BreakAt())
		}
	}
}
