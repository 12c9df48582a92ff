package reporting

import (
	"github.com/rs/zerolog/log"
)

// Measurer reports how wide a string renders in the report font.
type Measurer interface {
	TextWidth(text string, font Font) float64
}

// Layout is the context every renderer receives: the document being built,
// the current page and the cursor on it. A Layout is single-use and must
// not be shared between goroutines.
type Layout struct {
	doc     *Document
	page    *Page
	y       float64
	measure Measurer
	policy  BreakPolicy
}

// NewLayout starts laying out doc on its first page. A nil measurer falls
// back to the PDF font metrics. doc must not be finalized.
func NewLayout(doc *Document, m Measurer) *Layout {
	if m == nil {
		m = NewPDFMeasurer()
	}
	l := &Layout{
		doc:     doc,
		measure: m,
		policy:  BreakPolicy{SafeMarginThreshold: doc.Style.SafeMarginThreshold},
	}
	l.NewPage()
	return l
}

// Document returns the document being built.
func (l *Layout) Document() *Document { return l.doc }

// Page returns the page currently written to.
func (l *Layout) Page() *Page { return l.page }

// Style returns the shared page geometry.
func (l *Layout) Style() Style { return l.doc.Style }

// Y returns the cursor position on the current page.
func (l *Layout) Y() float64 { return l.y }

// Advance moves the cursor down and returns the new position.
func (l *Layout) Advance(amount float64) float64 {
	return l.moveTo(l.y + amount)
}

// RemainingSpace is the vertical room left above the bottom margin.
func (l *Layout) RemainingSpace() float64 {
	return l.doc.Style.ContentBottom() - l.y
}

// AtTop reports whether the cursor sits at the top margin of the page.
func (l *Layout) AtTop() bool {
	return l.y <= l.doc.Style.MarginTop
}

// NewPage appends a fresh page and resets the cursor to the top margin.
func (l *Layout) NewPage() {
	l.mustBeOpen()
	l.page = l.doc.addPage()
	l.y = l.doc.Style.MarginTop
	l.page.HighWater = l.y
	if l.page.Number > 1 {
		log.Debug().Int("page", l.page.Number).Msg("Report page break")
	}
}

// Emit places a block, starting a new page first when the policy says the
// block will not fit. It returns the cursor position after the block.
func (l *Layout) Emit(b Block) float64 {
	l.mustBeOpen()
	if l.policy.NeedsBreak(l, b.Height(l)) {
		l.NewPage()
	}
	return b.Render(l)
}

// BeginSection starts a new page when less than the safe margin is left.
// It reports whether a break was taken.
func (l *Layout) BeginSection() bool {
	if l.policy.SectionNeedsBreak(l) {
		l.NewPage()
		return true
	}
	return false
}

// ForceBreak starts a new page unless the current one is still untouched.
func (l *Layout) ForceBreak() {
	if l.fresh() {
		return
	}
	l.NewPage()
}

// TextWidth measures text in the given font.
func (l *Layout) TextWidth(text string, font Font) float64 {
	return l.measure.TextWidth(text, font)
}

func (l *Layout) moveTo(y float64) float64 {
	l.mustBeOpen()
	l.y = y
	if y > l.page.HighWater {
		l.page.HighWater = y
	}
	return l.y
}

func (l *Layout) draw(ins ...Instruction) {
	l.mustBeOpen()
	l.page.content = append(l.page.content, ins...)
}

// mustBeOpen panics once the footer pass has stamped the page count.
func (l *Layout) mustBeOpen() {
	if l.doc.finalized {
		panic(ErrLayoutFinalized)
	}
}

// fresh reports whether nothing has been drawn on the current page and the
// cursor is still at the top margin.
func (l *Layout) fresh() bool {
	return l.page.Empty() && l.AtTop()
}
