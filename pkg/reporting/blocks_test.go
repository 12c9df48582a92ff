package reporting

import (
	"math"
	"strings"
	"testing"
)

func TestCardRegions_CoverPrintableWidth(t *testing.T) {
	style := DefaultStyle()
	width := style.PrintableWidth()

	for k := 1; k <= 4; k++ {
		regions := CardRegions(k, style.MarginLeft, width, cardGutter)
		if len(regions) != k {
			t.Fatalf("k=%d: got %d regions", k, len(regions))
		}

		total := float64(k-1) * cardGutter
		for i, r := range regions {
			total += r.W
			if math.Abs(r.W-regions[0].W) > 1e-9 {
				t.Errorf("k=%d: region %d width %v differs from %v", k, i, r.W, regions[0].W)
			}
			if i > 0 {
				prev := regions[i-1]
				if gap := r.X - (prev.X + prev.W); math.Abs(gap-cardGutter) > 1e-9 {
					t.Errorf("k=%d: gutter before region %d is %v", k, i, gap)
				}
			}
		}
		if math.Abs(total-width) > 1e-9 {
			t.Errorf("k=%d: regions and gutters cover %v, want %v", k, total, width)
		}
		if regions[0].X != style.MarginLeft {
			t.Errorf("k=%d: first region starts at %v", k, regions[0].X)
		}
		last := regions[k-1]
		if math.Abs(last.X+last.W-(style.PageWidth-style.MarginRight)) > 1e-9 {
			t.Errorf("k=%d: last region ends at %v", k, last.X+last.W)
		}
	}

	if CardRegions(0, 0, 100, 6) != nil {
		t.Error("expected no regions for zero cards")
	}
}

func TestCardColor_CyclesPalette(t *testing.T) {
	for i := 0; i < 2*len(cardPalette); i++ {
		if CardColor(i) != cardPalette[i%len(cardPalette)] {
			t.Errorf("CardColor(%d) = %v", i, CardColor(i))
		}
	}
	if CardColor(-1) != cardPalette[len(cardPalette)-1] {
		t.Errorf("CardColor(-1) = %v", CardColor(-1))
	}
}

func TestSummaryCardRow_Render(t *testing.T) {
	l := newTestLayout()
	start := l.Y()
	row := SummaryCardRow{Cards: []Card{{"A", "1"}, {"B", "2"}, {"C", "3"}, {"D", "4"}, {"E", "5"}}}
	y := l.Emit(row)

	if y != start+cardHeight+cardGap {
		t.Errorf("cursor after cards = %v", y)
	}
	rects := pageRects(l.Page(), RoleCard)
	if len(rects) != 5 {
		t.Fatalf("got %d cards, want 5", len(rects))
	}
	for i, r := range rects {
		if r.FillColor != CardColor(i) {
			t.Errorf("card %d colour %v, want %v", i, r.FillColor, CardColor(i))
		}
		if r.Radius != cardRadius {
			t.Errorf("card %d is not rounded", i)
		}
	}
	if rects[4].FillColor != rects[0].FillColor {
		t.Error("palette did not wrap for the fifth card")
	}

	if got := l.Emit(SummaryCardRow{}); got != y {
		t.Errorf("empty card row moved the cursor to %v", got)
	}
}

func TestSectionTitle_Render(t *testing.T) {
	l := newTestLayout()
	y := l.Emit(SectionTitle{Text: "Top Selling Products"})
	if y != l.Style().MarginTop+sectionTitleHeight {
		t.Errorf("cursor after title = %v", y)
	}
	titles := textRuns(l.Document().Pages(), RoleSectionTitle)
	if len(titles) != 1 || titles[0].Text != "Top Selling Products" {
		t.Errorf("unexpected titles %+v", titles)
	}
}

func TestFreeText_WrapsToPrintableWidth(t *testing.T) {
	l := newTestLayout()
	words := make([]string, 30)
	for i := range words {
		words[i] = "abcdefghi"
	}
	ft := FreeText{Lines: []string{strings.Join(words, " ")}, Font: Font{Size: 10}, LineHeight: 5, Wrap: true}

	// 2mm per rune at 10pt leaves room for nine words per 182mm line.
	if got := len(ft.lines(l)); got != 4 {
		t.Fatalf("wrapped into %d lines, want 4", got)
	}
	if got := ft.Height(l); got != 20 {
		t.Errorf("height = %v, want 20", got)
	}
	start := l.Y()
	if y := l.Emit(ft); y != start+20 {
		t.Errorf("cursor after text = %v, want %v", y, start+20)
	}
}

func TestFitText(t *testing.T) {
	l := newTestLayout()
	font := Font{Size: 10}
	if got := fitText(l, "short", font, 100); got != "short" {
		t.Errorf("fitText kept %q", got)
	}
	if got := fitText(l, "abcdefghij", font, 10); got != "ab..." {
		t.Errorf("fitText = %q, want ab...", got)
	}
}

func TestContactLine(t *testing.T) {
	c := CustomerPurchases{Phone: "98765", GSTIN: "33ABC"}
	if got := ContactLine(c); got != "Phone: 98765  |  GSTIN: 33ABC" {
		t.Errorf("ContactLine = %q", got)
	}
	if got := ContactLine(CustomerPurchases{Name: "Nobody"}); got != "" {
		t.Errorf("ContactLine with no details = %q", got)
	}
}

func TestCustomerGroup_KeepsHeadingWithFirstRow(t *testing.T) {
	l := newTestLayout()
	l.Emit(SectionTitle{Text: "Intro"})

	g := CustomerGroup{
		Name:     "Murugan Constructions",
		Contact:  "Phone: 98765",
		Products: customerProductsTable([]CustomerProduct{{ProductName: "Cement", Quantity: amount(10)}}),
	}
	// Leave room for the heading alone.
	l.Advance(l.RemainingSpace() - g.headingHeight() - 1)
	l.Emit(g)

	if l.Document().PageCount() != 2 {
		t.Fatal("customer heading was stranded at the foot of the page")
	}
	if !hasText(l.Document().Pages()[1:], RoleCustomerHeading, "Murugan") {
		t.Error("customer heading not moved to the new page")
	}
}
