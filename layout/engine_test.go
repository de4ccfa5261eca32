package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioGeometry breaks once the cursor passes 230 and uses 10 unit lines.
func scenarioGeometry() Geometry {
	return Geometry{
		PageHeight:      260,
		MarginTop:       20,
		MarginLeft:      20,
		BottomThreshold: 30,
		TextWidth:       100,
		TitleSize:       20,
		HeadingSize:     16,
		HeadingHeight:   10,
		BodySize:        12,
		LineHeight:      10,
		BlockSpacing:    10,
	}
}

// hundredHigh is a block of heading + 8 lines + spacing = 100 units.
func hundredHigh(n int) Block {
	b := Block{Heading: fmt.Sprintf("%d. block", n)}
	for i := 0; i < 8; i++ {
		b.Items = append(b.Items, Item{Text: fmt.Sprintf("line %d", i)})
	}
	return b
}

func TestEngine_CoarseBreakAllowsOverflow(t *testing.T) {
	e := NewEngine(runeMeasurer{perRune: 1}, WithGeometry(scenarioGeometry()))
	blocks := []Block{hundredHigh(1), hundredHigh(2), hundredHigh(3), hundredHigh(4)}

	for _, b := range blocks {
		require.Equal(t, 100.0, e.BlockHeight(b))
	}

	doc := e.Paginate("", blocks)

	require.Len(t, doc.Placements, 4)
	assert.Equal(t, Placement{Page: 0, Y: 20, Height: 100}, doc.Placements[0])
	assert.Equal(t, Placement{Page: 0, Y: 120, Height: 100}, doc.Placements[1])
	// 220 is not past 230, so block 3 starts on page one and runs to 320.
	assert.Equal(t, Placement{Page: 0, Y: 220, Height: 100}, doc.Placements[2])
	assert.Equal(t, 320.0, doc.Placements[2].End())
	// The cursor is now past the threshold, so block 4 opens page two.
	assert.Equal(t, Placement{Page: 1, Y: 20, Height: 100}, doc.Placements[3])
	assert.Len(t, doc.Pages, 2)

	// The last line of block 3 is drawn below the page bottom.
	last := doc.Pages[0].Lines[len(doc.Pages[0].Lines)-1]
	assert.Equal(t, 300.0, last.Y)
}

func TestEngine_FitBreak(t *testing.T) {
	e := NewEngine(runeMeasurer{perRune: 1},
		WithGeometry(scenarioGeometry()),
		WithBreakPolicy(BreakFit))

	doc := e.Paginate("", []Block{hundredHigh(1), hundredHigh(2), hundredHigh(3)})

	require.Len(t, doc.Placements, 3)
	assert.Equal(t, Placement{Page: 0, Y: 20, Height: 100}, doc.Placements[0])
	assert.Equal(t, Placement{Page: 0, Y: 120, Height: 100}, doc.Placements[1])
	assert.Equal(t, Placement{Page: 1, Y: 20, Height: 100}, doc.Placements[2])
	for _, p := range doc.Placements {
		assert.LessOrEqual(t, p.End(), scenarioGeometry().BreakAt()+scenarioGeometry().BlockSpacing)
	}
}

func TestEngine_FitBreakKeepsOversizedBlockOnEmptyPage(t *testing.T) {
	g := scenarioGeometry()
	e := NewEngine(runeMeasurer{perRune: 1}, WithGeometry(g), WithBreakPolicy(BreakFit))

	huge := Block{Heading: "1. huge", Items: []Item{{Text: strings.Repeat("x ", 2000), Wrap: true}}}
	doc := e.Paginate("", []Block{huge})

	assert.Len(t, doc.Pages, 1)
	assert.Equal(t, 0, doc.Placements[0].Page)
}

func TestEngine_Title(t *testing.T) {
	e := NewEngine(runeMeasurer{perRune: 1})
	g := e.Geometry()

	doc := e.Paginate("Pædagogiske Aktiviteter", []Block{{Heading: "1. Leg"}})

	require.Len(t, doc.Pages, 1)
	lines := doc.Pages[0].Lines
	require.Len(t, lines, 2)
	assert.Equal(t, Line{Kind: LineTitle, X: 20, Y: 20, Size: 20, Text: "Pædagogiske Aktiviteter"}, lines[0])
	assert.Equal(t, Line{Kind: LineHeading, X: 20, Y: 40, Size: 16, Text: "1. Leg"}, lines[1])
	assert.Equal(t, g.MarginTop+g.TitleHeight, doc.Placements[0].Y)
}

func TestEngine_EmptyInput(t *testing.T) {
	e := NewEngine(runeMeasurer{perRune: 1})

	doc := e.Paginate("Titel", nil)
	assert.Len(t, doc.Pages, 1)
	assert.Empty(t, doc.Placements)
	assert.Empty(t, doc.Headings())
}

func TestEngine_WrappedItemsAdvanceByLineCount(t *testing.T) {
	g := scenarioGeometry()
	g.TextWidth = 10
	e := NewEngine(runeMeasurer{perRune: 1}, WithGeometry(g))

	b := Block{
		Heading: "1. wrap",
		Items: []Item{
			{Text: "aaa bbb ccc ddd", Wrap: true}, // 2 lines
			{Text: "scalar line that is far too wide"},
			{Text: "", Wrap: true},
			{Text: ""},
		},
	}
	assert.Equal(t, g.HeadingHeight+3*g.LineHeight+g.BlockSpacing, e.BlockHeight(b))

	doc := e.Paginate("", []Block{b})
	lines := doc.Pages[0].Lines
	require.Len(t, lines, 4)
	assert.Equal(t, "aaa bbb", lines[1].Text)
	assert.Equal(t, "ccc ddd", lines[2].Text)
	assert.Equal(t, "scalar line that is far too wide", lines[3].Text)
	assert.Equal(t, []float64{20, 30, 40, 50}, []float64{lines[0].Y, lines[1].Y, lines[2].Y, lines[3].Y})
}

func TestEngine_PageCountMonotonicAndOrdered(t *testing.T) {
	e := NewEngine(runeMeasurer{perRune: 2})

	var blocks []Block
	prevPages := 0
	for n := 1; n <= 40; n++ {
		b := Block{
			Heading: fmt.Sprintf("%d. aktivitet", n),
			Items: []Item{
				{Text: "Praktik: 1. praktik"},
				{Text: "Beskrivelse: " + strings.Repeat("ord ", n*3), Wrap: true},
			},
		}
		blocks = append(blocks, b)

		doc := e.Paginate("Titel", blocks)
		assert.GreaterOrEqual(t, len(doc.Pages), prevPages)
		prevPages = len(doc.Pages)

		headings := doc.Headings()
		require.Len(t, headings, n)
		for i, h := range headings {
			assert.True(t, strings.HasPrefix(h, fmt.Sprintf("%d. ", i+1)), h)
		}
	}
	assert.Greater(t, prevPages, 1)
}

func TestEngine_Idempotent(t *testing.T) {
	e := NewEngine(glyphMeasurer{})
	blocks := []Block{hundredHigh(1), {Heading: "2. x", Items: []Item{{Text: strings.Repeat("mw ", 100), Wrap: true}}}}

	assert.Equal(t, e.Paginate("T", blocks), e.Paginate("T", blocks))
}

func TestGeometry_Validate(t *testing.T) {
	assert.NoError(t, DefaultGeometry().Validate())
	assert.NoError(t, scenarioGeometry().Validate())

	bad := DefaultGeometry()
	bad.TextWidth = 0
	assert.Error(t, bad.Validate())

	bad = DefaultGeometry()
	bad.MarginTop = 250
	assert.Error(t, bad.Validate())
}

func TestParseBreakPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    BreakPolicy
		wantErr bool
	}{
		{in: "", want: BreakCoarse},
		{in: "coarse", want: BreakCoarse},
		{in: "FIT", want: BreakFit},
		{in: "exact", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBreakPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
