package reporting

import (
	"strings"
	"time"
)

const (
	ptToMM      = 25.4 / 72
	lineSpacing = 1.15

	headerBannerHeight = 42.0
	headerAccentHeight = 2.0
	headerGap          = 8.0
	headerLogoHeight   = 26.0

	cardHeight = 28.0
	cardGutter = 6.0
	cardGap    = 8.0
	cardRadius = 3.0
	cardInset  = 8.0

	sectionTitleHeight = 16.0
	sectionRuleLength  = 46.0

	customerHeadingHeight = 8.0
	customerContactHeight = 6.0

	ellipsis = "..."
)

// Block is one unit of content laid out atomically. Height is the estimate
// the break policy compares against the remaining space; Render draws the
// block at the cursor and returns the new cursor position.
type Block interface {
	Height(l *Layout) float64
	Render(l *Layout) float64
}

// HeaderBlock is the banner at the top of the first page.
type HeaderBlock struct {
	Title    string
	Subtitle string
	Date     time.Time // zero means today
}

// Height only admits the banner on an untouched page.
func (h HeaderBlock) Height(l *Layout) float64 {
	if !l.fresh() {
		return requiresFreshPage
	}
	return headerBannerHeight + headerAccentHeight + headerGap
}

// Render draws the banner flush with the page top and returns the cursor
// below it.
func (h HeaderBlock) Render(l *Layout) float64 {
	s := l.Style()
	b := l.Document().Branding
	pageWidth := s.PageWidth
	right := pageWidth - s.MarginRight

	// Banner and accent strip
	l.draw(
		Rect{Role: RoleBanner, X: 0, Y: 0, W: pageWidth, H: headerBannerHeight, Fill: true, FillColor: colorBanner},
		Rect{Role: RoleBanner, X: 0, Y: headerBannerHeight, W: pageWidth, H: headerAccentHeight, Fill: true, FillColor: colorAccent},
	)

	textX := s.MarginLeft
	if len(b.Logo) > 0 {
		top := (headerBannerHeight - headerLogoHeight) / 2
		l.draw(Image{Role: RoleLogo, X: s.MarginLeft, Y: top, H: headerLogoHeight})
		textX += headerLogoHeight + 6
	}

	name := b.BusinessName
	if name == "" {
		name = DefaultBusinessName
	}
	date := h.Date
	if date.IsZero() {
		date = time.Now()
	}

	l.draw(
		TextRun{Role: RoleBanner, X: textX, Y: 18, Text: name, Font: Font{Style: "B", Size: 18}, Color: colorWhite},
		TextRun{Role: RoleBanner, X: textX, Y: 28, Text: h.Title, Font: Font{Size: 11}, Color: colorWhite},
		TextRun{Role: RoleBanner, X: right, Y: 18, Text: "Generated: " + FormatDate(date), Font: Font{Size: 9}, Color: colorWhite, Align: AlignRight},
	)
	if h.Subtitle != "" {
		l.draw(TextRun{Role: RoleBanner, X: right, Y: 28, Text: h.Subtitle, Font: Font{Size: 9}, Color: colorWhite, Align: AlignRight})
	}

	return l.moveTo(headerBannerHeight + headerAccentHeight + headerGap)
}

// Card is one labelled figure in a summary row.
type Card struct {
	Label string
	Value string
}

// SummaryCardRow lays out cards side by side across the printable width.
type SummaryCardRow struct {
	Cards []Card
}

func (r SummaryCardRow) Height(*Layout) float64 {
	if len(r.Cards) == 0 {
		return 0
	}
	return cardHeight + cardGap
}

func (r SummaryCardRow) Render(l *Layout) float64 {
	if len(r.Cards) == 0 {
		return l.Y()
	}
	s := l.Style()
	y := l.Y()
	regions := CardRegions(len(r.Cards), s.MarginLeft, s.PrintableWidth(), cardGutter)

	for i, card := range r.Cards {
		reg := regions[i]
		textWidth := reg.W - 2*cardInset
		labelFont := Font{Size: 8}
		valueFont := Font{Style: "B", Size: 14}

		l.draw(
			Rect{Role: RoleCard, X: reg.X, Y: y, W: reg.W, H: cardHeight, Radius: cardRadius, Fill: true, FillColor: CardColor(i)},
			TextRun{Role: RoleCard, X: reg.X + cardInset, Y: y + 10, Text: fitText(l, card.Label, labelFont, textWidth), Font: labelFont, Color: colorWhite},
			TextRun{Role: RoleCard, X: reg.X + cardInset, Y: y + 22, Text: fitText(l, card.Value, valueFont, textWidth), Font: valueFont, Color: colorWhite},
		)
	}

	return l.Advance(cardHeight + cardGap)
}

// Region is a horizontal span on the page.
type Region struct {
	X float64
	W float64
}

// CardRegions splits width into k equal regions starting at left, separated
// by gutter. The regions and the k-1 gutters together cover width exactly.
func CardRegions(k int, left, width, gutter float64) []Region {
	if k <= 0 {
		return nil
	}
	w := (width - float64(k-1)*gutter) / float64(k)
	regions := make([]Region, k)
	for i := range regions {
		regions[i] = Region{X: left + float64(i)*(w+gutter), W: w}
	}
	return regions
}

// CardColor is the accent for the card at index i; the palette repeats.
func CardColor(i int) [3]int {
	n := len(cardPalette)
	return cardPalette[((i%n)+n)%n]
}

// SectionTitle is a heading with a short accent rule under it.
type SectionTitle struct {
	Text string
}

func (t SectionTitle) Height(*Layout) float64 {
	return sectionTitleHeight
}

func (t SectionTitle) Render(l *Layout) float64 {
	s := l.Style()
	y := l.Y()
	l.draw(
		TextRun{Role: RoleSectionTitle, X: s.MarginLeft, Y: y + 6, Text: t.Text, Font: Font{Style: "B", Size: 13}, Color: colorTextDark},
		Line{Role: RoleSectionTitle, X1: s.MarginLeft, Y1: y + 9, X2: s.MarginLeft + sectionRuleLength, Y2: y + 9, Color: colorAccent, Width: 1},
	)
	return l.Advance(sectionTitleHeight)
}

// FreeText is one or more lines of running text. With Wrap set each line is
// broken to the printable width first.
type FreeText struct {
	Lines      []string
	Font       Font
	Color      [3]int
	LineHeight float64
	Wrap       bool
}

func (t FreeText) lineHeight() float64 {
	if t.LineHeight > 0 {
		return t.LineHeight
	}
	return t.Font.Size * ptToMM * lineSpacing
}

func (t FreeText) lines(l *Layout) []string {
	if !t.Wrap {
		return t.Lines
	}
	var out []string
	for _, line := range t.Lines {
		out = append(out, wrapText(l, line, t.Font, l.Style().PrintableWidth())...)
	}
	return out
}

func (t FreeText) Height(l *Layout) float64 {
	return t.lineHeight() * float64(len(t.lines(l)))
}

// Render draws the lines, continuing on a new page if the text runs past the
// bottom margin.
func (t FreeText) Render(l *Layout) float64 {
	s := l.Style()
	lh := t.lineHeight()
	for _, line := range t.lines(l) {
		if l.policy.NeedsBreak(l, lh) {
			l.NewPage()
		}
		l.draw(TextRun{Role: RoleText, X: s.MarginLeft, Y: baseline(l.Y(), lh, t.Font.Size), Text: line, Font: t.Font, Color: t.Color})
		l.Advance(lh)
	}
	return l.Y()
}

// CustomerGroup is one customer's sub-heading, contact line and the nested
// table of products they bought.
type CustomerGroup struct {
	Name     string
	Contact  string
	Products Table
}

func (g CustomerGroup) headingHeight() float64 {
	if g.Contact == "" {
		return customerHeadingHeight
	}
	return customerHeadingHeight + customerContactHeight
}

// Height covers the heading plus the product table's header and first row
// so a heading is never stranded at the foot of a page.
func (g CustomerGroup) Height(l *Layout) float64 {
	rowH := g.Products.rowHeight()
	h := g.headingHeight() + rowH
	if len(g.Products.Rows) > 0 {
		h += rowH
	}
	return h
}

func (g CustomerGroup) Render(l *Layout) float64 {
	s := l.Style()
	y := l.Y()
	l.draw(TextRun{Role: RoleCustomerHeading, X: s.MarginLeft, Y: y + 4, Text: g.Name, Font: Font{Style: "B", Size: 10}, Color: colorTextDark})
	if g.Contact != "" {
		font := Font{Size: 8}
		l.draw(TextRun{Role: RoleCustomerHeading, X: s.MarginLeft, Y: y + 10, Text: fitText(l, g.Contact, font, s.PrintableWidth()), Font: font, Color: colorTextMuted})
	}
	l.Advance(g.headingHeight())
	return g.Products.Render(l)
}

// ContactLine joins whatever contact details a customer has.
func ContactLine(c CustomerPurchases) string {
	var parts []string
	if c.Phone != "" {
		parts = append(parts, "Phone: "+c.Phone)
	}
	if c.Email != "" {
		parts = append(parts, "Email: "+c.Email)
	}
	if c.GSTIN != "" {
		parts = append(parts, "GSTIN: "+c.GSTIN)
	}
	if c.Address != "" {
		parts = append(parts, "Address: "+c.Address)
	}
	return strings.Join(parts, "  |  ")
}

// baseline places text of the given point size vertically centred in a box
// of height boxH starting at top.
func baseline(top, boxH, size float64) float64 {
	return top + boxH/2 + size*ptToMM*0.35
}

// fitText shortens text with an ellipsis until it fits width.
func fitText(l *Layout, text string, font Font, width float64) string {
	if width <= 0 || l.TextWidth(text, font) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if l.TextWidth(candidate, font) <= width {
			return candidate
		}
	}
	return ellipsis
}

// wrapText breaks text into lines no wider than width, on spaces. A single
// word wider than width gets a line of its own.
func wrapText(l *Layout, text string, font Font, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if l.TextWidth(candidate, font) <= width {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = w
		}
		lines = append(lines, current)
	}
	return lines
}
