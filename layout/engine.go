package layout

// Engine lays out blocks onto pages.
type Engine struct {
	measurer Measurer
	geometry Geometry
	policy   BreakPolicy
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithGeometry overrides the default page geometry.
func WithGeometry(g Geometry) EngineOption {
	return func(e *Engine) {
		e.geometry = g
	}
}

// WithBreakPolicy overrides the default BreakCoarse policy.
func WithBreakPolicy(p BreakPolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// NewEngine creates an engine that measures text with m.
func NewEngine(m Measurer, opts ...EngineOption) *Engine {
	e := &Engine{
		measurer: m,
		geometry: DefaultGeometry(),
		policy:   BreakCoarse,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Geometry returns the engine's page geometry.
func (e *Engine) Geometry() Geometry {
	return e.geometry
}

// WrapBody wraps text at body size to the usable width.
func (e *Engine) WrapBody(text string) []string {
	return Wrap(e.measurer, text, e.geometry.BodySize, e.geometry.TextWidth)
}

// BlockHeight is the vertical space b takes, spacing included.
func (e *Engine) BlockHeight(b Block) float64 {
	g := e.geometry
	h := g.HeadingHeight
	for _, it := range b.Items {
		h += float64(e.itemLines(it)) * g.LineHeight
	}
	return h + g.BlockSpacing
}

func (e *Engine) itemLines(it Item) int {
	if !it.Wrap {
		if it.Text == "" {
			return 0
		}
		return 1
	}
	return len(e.WrapBody(it.Text))
}

// Paginate lays out the title and blocks. An empty block list yields a
// single page holding only the title.
func (e *Engine) Paginate(title string, blocks []Block) Document {
	g := e.geometry
	st := &pager{geometry: g, pages: []Page{{}}, y: g.MarginTop}

	if title != "" {
		st.emit(Line{Kind: LineTitle, X: g.MarginLeft, Y: st.y, Size: g.TitleSize, Text: title})
		st.y += g.TitleHeight
	}

	placements := make([]Placement, 0, len(blocks))
	for _, b := range blocks {
		height := e.BlockHeight(b)
		if e.needsBreak(st, height) {
			st.newPage()
		}

		placements = append(placements, Placement{Page: len(st.pages) - 1, Y: st.y, Height: height})

		st.emit(Line{Kind: LineHeading, X: g.MarginLeft, Y: st.y, Size: g.HeadingSize, Text: b.Heading})
		st.y += g.HeadingHeight

		for _, it := range b.Items {
			var lines []string
			if it.Wrap {
				lines = e.WrapBody(it.Text)
			} else if it.Text != "" {
				lines = []string{it.Text}
			}
			for _, l := range lines {
				st.emit(Line{Kind: LineBody, X: g.MarginLeft, Y: st.y, Size: g.BodySize, Text: l})
				st.y += g.LineHeight
			}
		}
		st.y += g.BlockSpacing
	}

	return Document{Pages: st.pages, Placements: placements}
}

func (e *Engine) needsBreak(st *pager, height float64) bool {
	switch e.policy {
	case BreakFit:
		return !st.empty() && st.y+height > e.geometry.BreakAt()
	default:
		return st.y > e.geometry.BreakAt()
	}
}

// pager is the cursor state while paginating.
type pager struct {
	geometry Geometry
	pages    []Page
	y        float64
}

func (p *pager) emit(l Line) {
	last := &p.pages[len(p.pages)-1]
	last.Lines = append(last.Lines, l)
}

func (p *pager) empty() bool {
	return len(p.pages[len(p.pages)-1].Lines) == 0
}

func (p *pager) newPage() {
	p.pages = append(p.pages, Page{})
	p.y = p.geometry.MarginTop
}
