// Package layout paginates activity blocks into positioned text lines.
//
// The engine walks blocks in order with a vertical cursor. Before each block
// it checks whether the cursor has passed the bottom threshold and, if so,
// starts a new page. Long fields are wrapped with Wrap, which uses the same
// Measurer as the renderer, so the line count that advances the cursor is
// the line count that gets drawn.
//
// Example usage:
//
//	engine := layout.NewEngine(measurer)
//	doc := engine.Paginate("Pædagogiske Aktiviteter", blocks)
//	for _, page := range doc.Pages {
//		for _, line := range page.Lines {
//			draw(line.X, line.Y, line.Size, line.Text)
//		}
//	}
package layout

import (
	"fmt"
	"strings"
)

// BreakPolicy decides when the engine starts a new page.
type BreakPolicy int

const (
	// BreakCoarse checks once per block whether the cursor left by the
	// previous block is already below the threshold. A block that starts
	// above the threshold is laid out on the current page even if it runs
	// past the bottom margin.
	BreakCoarse BreakPolicy = iota
	// BreakFit starts a new page whenever the block would not end above the
	// threshold, unless the page is still empty.
	BreakFit
)

// String returns the config name of the policy.
func (p BreakPolicy) String() string {
	switch p {
	case BreakCoarse:
		return "coarse"
	case BreakFit:
		return "fit"
	default:
		return "unknown"
	}
}

// ParseBreakPolicy converts a config value to a BreakPolicy.
func ParseBreakPolicy(s string) (BreakPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "coarse":
		return BreakCoarse, nil
	case "fit":
		return BreakFit, nil
	default:
		return BreakCoarse, fmt.Errorf("unknown break policy %q", s)
	}
}

// Geometry holds page dimensions, font sizes and line advances, all in the
// renderer's unit (millimetres for A4 output).
type Geometry struct {
	PageHeight      float64 `yaml:"page_height"`
	MarginTop       float64 `yaml:"margin_top"`
	MarginLeft      float64 `yaml:"margin_left"`
	BottomThreshold float64 `yaml:"bottom_threshold"`
	TextWidth       float64 `yaml:"text_width"`

	TitleSize   float64 `yaml:"title_size"`
	TitleHeight float64 `yaml:"title_height"`

	HeadingSize   float64 `yaml:"heading_size"`
	HeadingHeight float64 `yaml:"heading_height"`

	BodySize   float64 `yaml:"body_size"`
	LineHeight float64 `yaml:"line_height"`

	BlockSpacing float64 `yaml:"block_spacing"`
}

// DefaultGeometry returns the A4 portrait layout in millimetres.
func DefaultGeometry() Geometry {
	return Geometry{
		PageHeight:      297,
		MarginTop:       20,
		MarginLeft:      20,
		BottomThreshold: 60,
		TextWidth:       170,
		TitleSize:       20,
		TitleHeight:     20,
		HeadingSize:     16,
		HeadingHeight:   10,
		BodySize:        12,
		LineHeight:      7,
		BlockSpacing:    10,
	}
}

// BreakAt is the cursor position past which a new page is started.
func (g Geometry) BreakAt() float64 {
	return g.PageHeight - g.BottomThreshold
}

// Validate checks that the geometry can hold text.
func (g Geometry) Validate() error {
	if g.PageHeight <= 0 {
		return fmt.Errorf("page height must be positive")
	}
	if g.TextWidth <= 0 {
		return fmt.Errorf("text width must be positive")
	}
	if g.MarginTop < 0 || g.MarginLeft < 0 || g.BottomThreshold < 0 {
		return fmt.Errorf("margins must not be negative")
	}
	if g.MarginTop >= g.BreakAt() {
		return fmt.Errorf("top margin %.1f leaves no room above break line %.1f", g.MarginTop, g.BreakAt())
	}
	if g.BodySize <= 0 || g.HeadingSize <= 0 {
		return fmt.Errorf("font sizes must be positive")
	}
	return nil
}

// Item is one field line of a block.
type Item struct {
	Text string
	// Wrap marks long fields; scalar items always occupy a single line.
	Wrap bool
}

// Block is the unit the engine keeps together: a heading and its items.
type Block struct {
	Heading string
	Items   []Item
}

// LineKind tells the renderer which font size a line is drawn with.
type LineKind int

const (
	LineBody LineKind = iota
	LineHeading
	LineTitle
)

// Line is text positioned on a page. Y is the baseline.
type Line struct {
	Kind LineKind
	X    float64
	Y    float64
	Size float64
	Text string
}

// Page is a sequence of positioned lines.
type Page struct {
	Lines []Line
}

// Placement records where a block landed.
type Placement struct {
	Page   int // zero-based
	Y      float64
	Height float64
}

// End returns the cursor after the block, spacing included.
func (p Placement) End() float64 {
	return p.Y + p.Height
}

// Document is the paginated result.
type Document struct {
	Pages      []Page
	Placements []Placement // one per block, in input order
}

// Headings returns the heading texts in document order.
func (d Document) Headings() []string {
	var out []string
	for _, p := range d.Pages {
		for _, l := range p.Lines {
			if l.Kind == LineHeading {
				out = append(out, l.Text)
			}
		}
	}
	return out
}
