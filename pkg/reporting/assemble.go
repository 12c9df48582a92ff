package reporting

import (
	"time"

	"github.com/rs/zerolog/log"
)

// BuildOptions carries everything a report needs besides its data.
type BuildOptions struct {
	Style       Style
	Branding    Branding
	GeneratedAt time.Time
	Measurer    Measurer
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Style.PageWidth <= 0 || o.Style.PageHeight <= 0 {
		threshold := o.Style.SafeMarginThreshold
		o.Style = DefaultStyle()
		if threshold > 0 {
			o.Style.SafeMarginThreshold = threshold
		}
	}
	if o.Branding.BusinessName == "" {
		o.Branding.BusinessName = DefaultBusinessName
	}
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	return o
}

// Build lays out the report of the given kind and runs the footer pass.
func Build(kind ReportKind, in *ReportInput, opts BuildOptions) (*FinalizedDocument, error) {
	if in == nil {
		return nil, ErrNilInput
	}
	switch kind {
	case KindSales:
		return BuildSalesReport(in, opts), nil
	case KindFull:
		return BuildFullReport(in, opts), nil
	}
	return nil, ErrUnknownKind
}

func newReportLayout(title string, opts BuildOptions) *Layout {
	opts = opts.withDefaults()
	doc := NewDocument(title, opts.Style, opts.Branding)
	doc.GeneratedAt = opts.GeneratedAt
	return NewLayout(doc, opts.Measurer)
}

// BuildSalesReport composes the sales report: summary cards, the
// outstanding amount, daily sales, top products and, when present, the
// customer purchase breakdown starting on its own page.
func BuildSalesReport(in *ReportInput, opts BuildOptions) *FinalizedDocument {
	l := newReportLayout("Sales Report", opts)

	l.Emit(HeaderBlock{Title: "Sales Report", Subtitle: "Last 30 Days Overview", Date: l.Document().GeneratedAt})
	l.Emit(summaryCards(in.Summary))
	l.Emit(FreeText{
		Lines:      []string{"Outstanding Amount: " + FormatCurrency(in.Summary.Outstanding())},
		Font:       Font{Size: 10},
		Color:      colorTextMuted,
		LineHeight: 10,
	})

	if len(in.Series) > 0 {
		emitSection(l, "Daily Sales Breakdown", dailyTable(in.Series, "Amount Collected"))
	}
	if len(in.TopProducts) > 0 {
		emitSection(l, "Top Selling Products", topProductsTable(in.TopProducts, "Product Name"))
	}
	if len(in.Customers) > 0 {
		emitCustomers(l, in.Customers)
	}

	return l.Finalize()
}

// BuildFullReport composes the full analytics report. Every section after
// the summary is skipped when its data is missing.
func BuildFullReport(in *ReportInput, opts BuildOptions) *FinalizedDocument {
	l := newReportLayout("Complete Business Report", opts)

	l.Emit(HeaderBlock{Title: "Complete Business Report", Subtitle: "Analytics & Performance Overview", Date: l.Document().GeneratedAt})
	l.Emit(summaryCards(in.Summary))

	if len(in.Series) > 0 {
		emitSection(l, "Daily Sales Breakdown", dailyTable(in.Series, "Collected"))
	}
	if len(in.TopProducts) > 0 {
		emitSection(l, "Top Selling Products", topProductsTable(in.TopProducts, "Product"))
	}
	if len(in.CategoryStats) > 0 {
		emitSection(l, "Products by Category", categoryTable(in.CategoryStats))
	}
	if len(in.StockMovements) > 0 {
		emitSection(l, "Stock Movement Summary (Last 30 Days)", stockTable(in.StockMovements))
	}
	if len(in.UserStats) > 0 {
		emitSection(l, "Staff Distribution", roleTable(in.UserStats))
	}

	return l.Finalize()
}

// emitSection places a titled table, moving to a new page first when less
// than the safe margin is left.
func emitSection(l *Layout, title string, t Table) {
	if l.BeginSection() {
		log.Debug().Str("section", title).Int("page", l.Page().Number).Msg("Section moved to new page")
	}
	l.Emit(SectionTitle{Text: title})
	l.Emit(t)
}

func summaryCards(s SalesSummary) SummaryCardRow {
	return SummaryCardRow{Cards: []Card{
		{Label: "Total Revenue", Value: FormatCurrency(s.TotalRevenue)},
		{Label: "Amount Collected", Value: FormatCurrency(s.TotalPaid)},
		{Label: "Total Orders", Value: FormatCount(s.TotalOrders)},
	}}
}

func dailyTable(series []DailySales, collectedLabel string) Table {
	rows := make([][]string, 0, len(series))
	for _, d := range series {
		rows = append(rows, []string{
			FormatDay(d.Date),
			FormatCount(d.OrderCount),
			FormatCurrency(d.Revenue),
			FormatCurrency(d.AmountCollected),
		})
	}
	return Table{
		Columns: []Column{
			{Label: "Date"},
			{Label: "Orders", Align: AlignCenter},
			{Label: "Revenue", Align: AlignRight},
			{Label: collectedLabel, Align: AlignRight},
		},
		Rows: rows,
	}
}

func topProductsTable(products []ProductRank, nameLabel string) Table {
	rows := make([][]string, 0, len(products))
	for i, p := range products {
		rows = append(rows, []string{
			FormatCount(int64(i + 1)),
			orPlaceholder(p.Name),
			FormatQuantity(p.QuantitySold),
			FormatCurrency(p.Revenue),
		})
	}
	return Table{
		Columns: []Column{
			{Label: "#", Align: AlignCenter, Width: 12},
			{Label: nameLabel},
			{Label: "Qty Sold", Align: AlignCenter},
			{Label: "Revenue", Align: AlignRight},
		},
		Rows: rows,
	}
}

func categoryTable(stats []CategoryCount) Table {
	rows := make([][]string, 0, len(stats))
	for _, c := range stats {
		rows = append(rows, []string{CapitalizeFirst(c.Category, "uncategorized"), FormatCount(c.Count)})
	}
	return Table{
		Columns: []Column{
			{Label: "Category"},
			{Label: "Number of Products", Align: AlignCenter},
		},
		Rows: rows,
	}
}

func stockTable(movements []StockMovement) Table {
	rows := make([][]string, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []string{
			HumanizeLabel(m.MovementType),
			FormatCount(m.Count),
			FormatQuantity(m.TotalQuantity) + " units",
		})
	}
	return Table{
		Columns: []Column{
			{Label: "Movement Type"},
			{Label: "Count", Align: AlignCenter},
			{Label: "Total Quantity", Align: AlignCenter},
		},
		Rows: rows,
	}
}

func roleTable(stats []RoleCount) Table {
	rows := make([][]string, 0, len(stats))
	for _, r := range stats {
		rows = append(rows, []string{HumanizeLabel(r.Role), FormatCount(r.Count)})
	}
	return Table{
		Columns: []Column{
			{Label: "Role"},
			{Label: "Count", Align: AlignCenter},
		},
		Rows: rows,
	}
}

// emitCustomers lays out the customer breakdown: a summary table on a new
// page, then one group per customer that bought something.
func emitCustomers(l *Layout, customers []CustomerPurchases) {
	l.ForceBreak()
	l.Emit(SectionTitle{Text: "Customer Purchase Details"})
	l.Emit(customerSummaryTable(customers))

	for _, c := range customers {
		if len(c.Products) == 0 {
			continue
		}
		l.BeginSection()
		name := c.Name
		if name == "" {
			name = "Unknown Customer"
		}
		l.Emit(CustomerGroup{
			Name:     name,
			Contact:  ContactLine(c),
			Products: customerProductsTable(c.Products),
		})
	}
}

func customerSummaryTable(customers []CustomerPurchases) Table {
	rows := make([][]string, 0, len(customers))
	for i, c := range customers {
		name := c.Name
		if name == "" {
			name = "Unknown"
		}
		rows = append(rows, []string{
			FormatCount(int64(i + 1)),
			name,
			orPlaceholder(c.Phone),
			orPlaceholder(c.Email),
			FormatCount(c.TotalOrders),
			FormatCurrency(c.TotalSpent),
			FormatOptionalDate(c.LastOrderDate),
		})
	}
	return Table{
		Columns: []Column{
			{Label: "#", Align: AlignCenter, Width: 10},
			{Label: "Customer Name"},
			{Label: "Phone"},
			{Label: "Email"},
			{Label: "Orders", Align: AlignCenter},
			{Label: "Total Spent", Align: AlignRight},
			{Label: "Last Order", Align: AlignRight},
		},
		Rows:  rows,
		Style: CompactTableStyle(),
	}
}

func customerProductsTable(products []CustomerProduct) Table {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			orPlaceholder(p.ProductName),
			FormatQuantity(p.Quantity),
			FormatCurrency(p.UnitPrice),
			FormatCurrency(p.TotalAmount),
		})
	}
	st := CompactTableStyle()
	st.HeaderFill = colorSubTableHeader
	st.Indent = 6
	st.Gap = 10
	return Table{
		Columns: []Column{
			{Label: "Product"},
			{Label: "Qty", Align: AlignCenter},
			{Label: "Unit Price", Align: AlignRight},
			{Label: "Total", Align: AlignRight},
		},
		Rows:  rows,
		Style: st,
	}
}
