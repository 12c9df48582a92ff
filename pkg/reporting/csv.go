package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CSVGenerator writes the same sections as the PDF reports as plain CSV
// blocks for spreadsheet use. Amounts are raw numbers with two decimals.
type CSVGenerator struct{}

// NewCSVGenerator creates a new CSV generator.
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// csvSection is one "# HEADING" block.
type csvSection struct {
	heading string
	columns []string
	rows    [][]string
}

// Generate creates a CSV report of the given kind.
func (g *CSVGenerator) Generate(kind ReportKind, in *ReportInput, generatedAt time.Time, branding Branding) ([]byte, error) {
	if in == nil {
		return nil, ErrNilInput
	}

	var title string
	var sections []csvSection
	switch kind {
	case KindSales:
		title = "Sales Report"
		sections = salesSections(in)
	case KindFull:
		title = "Complete Business Report"
		sections = fullSections(in)
	default:
		return nil, ErrUnknownKind
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	name := branding.BusinessName
	if name == "" {
		name = DefaultBusinessName
	}
	headers := [][]string{
		{"# " + name},
		{"# Title:", title},
		{"# Generated:", generatedAt.Format(time.RFC3339)},
		{""},
	}
	for _, row := range headers {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write header row %q: %w", row[0], err)
		}
	}

	for _, s := range sections {
		if err := g.writeSection(w, s); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV write error: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *CSVGenerator) writeSection(w *csv.Writer, s csvSection) error {
	if err := w.Write([]string{"# " + s.heading}); err != nil {
		return fmt.Errorf("write %s section heading: %w", s.heading, err)
	}
	if err := w.Write(s.columns); err != nil {
		return fmt.Errorf("write %s column headers: %w", s.heading, err)
	}
	for i, row := range s.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s row %d: %w", s.heading, i, err)
		}
	}
	// Empty row as separator
	if err := w.Write([]string{""}); err != nil {
		return fmt.Errorf("write %s separator row: %w", s.heading, err)
	}
	return nil
}

func salesSections(in *ReportInput) []csvSection {
	sections := []csvSection{summarySection(in.Summary)}
	if len(in.Series) > 0 {
		sections = append(sections, dailySection(in.Series))
	}
	if len(in.TopProducts) > 0 {
		sections = append(sections, topProductsSection(in.TopProducts))
	}
	if len(in.Customers) > 0 {
		sections = append(sections, customersSection(in.Customers))
		if items := customerItemsSection(in.Customers); len(items.rows) > 0 {
			sections = append(sections, items)
		}
	}
	return sections
}

func fullSections(in *ReportInput) []csvSection {
	sections := []csvSection{summarySection(in.Summary)}
	if len(in.Series) > 0 {
		sections = append(sections, dailySection(in.Series))
	}
	if len(in.TopProducts) > 0 {
		sections = append(sections, topProductsSection(in.TopProducts))
	}
	if len(in.CategoryStats) > 0 {
		s := csvSection{heading: "CATEGORIES", columns: []string{"Category", "Number of Products"}}
		for _, c := range in.CategoryStats {
			s.rows = append(s.rows, []string{CapitalizeFirst(c.Category, "uncategorized"), FormatCount(c.Count)})
		}
		sections = append(sections, s)
	}
	if len(in.StockMovements) > 0 {
		s := csvSection{heading: "STOCK MOVEMENTS", columns: []string{"Movement Type", "Count", "Total Quantity"}}
		for _, m := range in.StockMovements {
			s.rows = append(s.rows, []string{HumanizeLabel(m.MovementType), FormatCount(m.Count), FormatQuantity(m.TotalQuantity)})
		}
		sections = append(sections, s)
	}
	if len(in.UserStats) > 0 {
		s := csvSection{heading: "STAFF", columns: []string{"Role", "Count"}}
		for _, r := range in.UserStats {
			s.rows = append(s.rows, []string{HumanizeLabel(r.Role), FormatCount(r.Count)})
		}
		sections = append(sections, s)
	}
	return sections
}

func summarySection(s SalesSummary) csvSection {
	return csvSection{
		heading: "SUMMARY",
		columns: []string{"Metric", "Value"},
		rows: [][]string{
			{"Total Revenue", csvAmount(s.TotalRevenue)},
			{"Amount Collected", csvAmount(s.TotalPaid)},
			{"Outstanding Amount", csvAmount(s.Outstanding())},
			{"Total Orders", FormatCount(s.TotalOrders)},
		},
	}
}

func dailySection(series []DailySales) csvSection {
	s := csvSection{heading: "DAILY SALES", columns: []string{"Date", "Orders", "Revenue", "Amount Collected"}}
	for _, d := range series {
		s.rows = append(s.rows, []string{d.Date, FormatCount(d.OrderCount), csvAmount(d.Revenue), csvAmount(d.AmountCollected)})
	}
	return s
}

func topProductsSection(products []ProductRank) csvSection {
	s := csvSection{heading: "TOP PRODUCTS", columns: []string{"Rank", "Product", "Qty Sold", "Revenue"}}
	for i, p := range products {
		s.rows = append(s.rows, []string{FormatCount(int64(i + 1)), p.Name, FormatQuantity(p.QuantitySold), csvAmount(p.Revenue)})
	}
	return s
}

func customersSection(customers []CustomerPurchases) csvSection {
	s := csvSection{
		heading: "CUSTOMERS",
		columns: []string{"Customer Name", "Phone", "Email", "GSTIN", "Address", "Orders", "Total Spent", "Last Order"},
	}
	for _, c := range customers {
		last := ""
		if c.LastOrderDate != nil && !c.LastOrderDate.IsZero() {
			last = c.LastOrderDate.Format("2006-01-02")
		}
		s.rows = append(s.rows, []string{
			c.Name, c.Phone, c.Email, c.GSTIN, c.Address,
			FormatCount(c.TotalOrders), csvAmount(c.TotalSpent), last,
		})
	}
	return s
}

func customerItemsSection(customers []CustomerPurchases) csvSection {
	s := csvSection{
		heading: "CUSTOMER PRODUCTS",
		columns: []string{"Customer Name", "Product", "Qty", "Unit Price", "Total"},
	}
	for _, c := range customers {
		for _, p := range c.Products {
			s.rows = append(s.rows, []string{
				c.Name, p.ProductName, FormatQuantity(p.Quantity), csvAmount(p.UnitPrice), csvAmount(p.TotalAmount),
			})
		}
	}
	return s
}

func csvAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
