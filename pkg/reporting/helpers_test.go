package reporting

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// fixedMeasurer gives every rune the same advance so layouts are predictable.
type fixedMeasurer struct{}

func (fixedMeasurer) TextWidth(text string, font Font) float64 {
	return float64(utf8.RuneCountInString(text)) * font.Size * 0.2
}

var testDate = time.Date(2026, time.October, 19, 10, 30, 0, 0, time.UTC)

func testOptions() BuildOptions {
	return BuildOptions{
		Style:       DefaultStyle(),
		Branding:    DefaultBranding(),
		GeneratedAt: testDate,
		Measurer:    fixedMeasurer{},
	}
}

func newTestLayout() *Layout {
	doc := NewDocument("Test", DefaultStyle(), DefaultBranding())
	return NewLayout(doc, fixedMeasurer{})
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func dailySeries(n int) []DailySales {
	series := make([]DailySales, n)
	start := testDate.AddDate(0, 0, -n)
	for i := range series {
		series[i] = DailySales{
			Date:            start.AddDate(0, 0, i).Format("2006-01-02"),
			OrderCount:      int64(i%7 + 1),
			Revenue:         amount(int64(1000 * (i + 1))),
			AmountCollected: amount(int64(800 * (i + 1))),
		}
	}
	return series
}

func sampleInput() *ReportInput {
	last := testDate.AddDate(0, 0, -2)
	return &ReportInput{
		Summary: SalesSummary{TotalRevenue: amount(1250000), TotalPaid: amount(1100000), TotalOrders: 86},
		Series:  dailySeries(5),
		TopProducts: []ProductRank{
			{Name: "TMT Bar 12mm", QuantitySold: amount(420), Revenue: amount(310000)},
			{Name: "GI Pipe 1 inch", QuantitySold: amount(150), Revenue: amount(96000)},
		},
		CategoryStats:  []CategoryCount{{Category: "steel", Count: 42}, {Category: "", Count: 3}},
		StockMovements: []StockMovement{{MovementType: "stock_in", Count: 12, TotalQuantity: amount(900)}},
		UserStats:      []RoleCount{{Role: "admin", Count: 2}, {Role: "sales_staff", Count: 5}},
		Customers: []CustomerPurchases{
			{
				Name: "Murugan Constructions", Phone: "9876543210", GSTIN: "33ABCDE1234F1Z5",
				TotalOrders: 4, TotalSpent: amount(220000), LastOrderDate: &last,
				Products: []CustomerProduct{
					{ProductName: "TMT Bar 12mm", Quantity: amount(100), UnitPrice: amount(740), TotalAmount: amount(74000)},
				},
			},
			{Name: "Walk-in", TotalOrders: 1, TotalSpent: amount(1500)},
		},
	}
}

// textRuns collects the text runs with the given role across all pages.
func textRuns(pages []*Page, role Role) []TextRun {
	var out []TextRun
	for _, p := range pages {
		for _, ins := range p.Instructions() {
			if tr, ok := ins.(TextRun); ok && tr.Role == role {
				out = append(out, tr)
			}
		}
	}
	return out
}

func pageRects(p *Page, role Role) []Rect {
	var out []Rect
	for _, ins := range p.Instructions() {
		if r, ok := ins.(Rect); ok && r.Role == role {
			out = append(out, r)
		}
	}
	return out
}

func hasText(pages []*Page, role Role, substr string) bool {
	for _, tr := range textRuns(pages, role) {
		if strings.Contains(tr.Text, substr) {
			return true
		}
	}
	return false
}
