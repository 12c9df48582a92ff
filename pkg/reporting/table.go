package reporting

// Column describes one table column. Alignment is a per-report hint and is
// never inferred from the data.
type Column struct {
	Label string
	Align Align
	Width float64 // fixed width in mm; zero shares what the fixed columns leave
}

// TableStyle controls the look and spacing of a table.
type TableStyle struct {
	FontSize   float64
	Padding    float64
	HeaderFill [3]int
	Indent     float64 // offset past the left page margin
	Gap        float64 // space left below the last row
}

// DefaultTableStyle is used for the top level report tables.
func DefaultTableStyle() TableStyle {
	return TableStyle{FontSize: 9, Padding: 2.5, HeaderFill: colorTableHeader, Gap: 12}
}

// CompactTableStyle is used for the denser customer tables.
func CompactTableStyle() TableStyle {
	return TableStyle{FontSize: 8, Padding: 2, HeaderFill: colorTableHeader, Gap: 12}
}

// Table is a header row plus body rows. A table that runs past the bottom
// margin continues on the next page with its header row repeated.
type Table struct {
	Columns []Column
	Rows    [][]string
	Style   TableStyle
}

func (t Table) style() TableStyle {
	st := t.Style
	if st.FontSize <= 0 {
		def := DefaultTableStyle()
		def.Indent = st.Indent
		if st.Gap > 0 {
			def.Gap = st.Gap
		}
		if st.HeaderFill != ([3]int{}) {
			def.HeaderFill = st.HeaderFill
		}
		st = def
	}
	return st
}

func (t Table) rowHeight() float64 {
	st := t.style()
	return 2*st.Padding + st.FontSize*ptToMM*lineSpacing
}

// EstimateHeight is the space the table takes on a page with the given room:
// the header row plus as many body rows as fit, at least one.
func (t Table) EstimateHeight(space float64) float64 {
	rowH := t.rowHeight()
	n := len(t.Rows)
	if n == 0 {
		return rowH
	}
	fit := RowsThatFit(space-rowH, rowH)
	if fit < 1 {
		fit = 1
	}
	if fit > n {
		fit = n
	}
	return rowH + float64(fit)*rowH
}

func (t Table) Height(l *Layout) float64 {
	return t.EstimateHeight(l.RemainingSpace())
}

// Render lays out the header and body rows, breaking pages between rows.
// Striping follows the row index in the whole table, so it carries on
// across a page break rather than restarting.
func (t Table) Render(l *Layout) float64 {
	if len(t.Columns) == 0 {
		return l.Y()
	}
	st := t.style()
	s := l.Style()
	x0 := s.MarginLeft + st.Indent
	widths := t.columnWidths(l, s.PageWidth-s.MarginRight-x0)
	rowH := t.rowHeight()

	if l.policy.NeedsBreak(l, t.Height(l)) {
		l.NewPage()
	}
	t.drawHeader(l, x0, widths, rowH)

	for i, row := range t.normalizedRows() {
		if l.policy.NeedsBreak(l, rowH) {
			l.NewPage()
			t.drawHeader(l, x0, widths, rowH)
		}
		t.drawRow(l, i, row, x0, widths, rowH)
	}

	return l.Advance(st.Gap)
}

func (t Table) drawHeader(l *Layout, x0 float64, widths []float64, rowH float64) {
	st := t.style()
	y := l.Y()
	font := Font{Style: "B", Size: st.FontSize}

	l.draw(Rect{Role: RoleTableHeader, X: x0, Y: y, W: sum(widths), H: rowH, Fill: true, FillColor: st.HeaderFill})
	x := x0
	for i, col := range t.Columns {
		w := widths[i]
		text := fitText(l, col.Label, font, w-2*st.Padding)
		l.draw(TextRun{
			Role:  RoleTableHeaderText,
			X:     cellAnchor(x, w, st.Padding, col.Align),
			Y:     baseline(y, rowH, st.FontSize),
			Text:  text,
			Font:  font,
			Color: colorWhite,
			Align: col.Align,
		})
		x += w
	}
	l.Advance(rowH)
}

func (t Table) drawRow(l *Layout, index int, row []string, x0 float64, widths []float64, rowH float64) {
	st := t.style()
	y := l.Y()
	font := Font{Size: st.FontSize}
	fill, filled := RowFill(index)

	l.draw(Rect{
		Role:      RoleTableRow,
		X:         x0,
		Y:         y,
		W:         sum(widths),
		H:         rowH,
		Fill:      filled,
		FillColor: fill,
		Stroke:    true,
		LineColor: colorGridLine,
		LineWidth: 0.25,
	})

	x := x0
	for i, cell := range row {
		w := widths[i]
		if i > 0 {
			l.draw(Line{Role: RoleTableRow, X1: x, Y1: y, X2: x, Y2: y + rowH, Color: colorGridLine, Width: 0.25})
		}
		l.draw(TextRun{
			Role:  RoleTableCell,
			X:     cellAnchor(x, w, st.Padding, t.Columns[i].Align),
			Y:     baseline(y, rowH, st.FontSize),
			Text:  fitText(l, cell, font, w-2*st.Padding),
			Font:  font,
			Color: colorTextDark,
			Align: t.Columns[i].Align,
		})
		x += w
	}
	l.Advance(rowH)
}

// RowFill returns the background of the body row at index. Odd rows are
// tinted; even rows are left unfilled.
func RowFill(index int) ([3]int, bool) {
	if index%2 == 1 {
		return colorTableAlt, true
	}
	return colorWhite, false
}

// normalizedRows gives every row exactly one cell per column. Short rows are
// padded with the placeholder and surplus cells are dropped.
func (t Table) normalizedRows() [][]string {
	n := len(t.Columns)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) == n {
			rows[i] = row
			continue
		}
		cells := make([]string, n)
		for j := range cells {
			if j < len(row) {
				cells[j] = row[j]
			} else {
				cells[j] = Placeholder
			}
		}
		rows[i] = cells
	}
	return rows
}

// columnWidths gives fixed columns their width and splits the rest of the
// available width between the other columns in proportion to their widest
// content.
func (t Table) columnWidths(l *Layout, available float64) []float64 {
	st := t.style()
	widths := make([]float64, len(t.Columns))
	var auto []int
	fixed := 0.0
	for i, col := range t.Columns {
		if col.Width > 0 {
			widths[i] = col.Width
			fixed += col.Width
			continue
		}
		auto = append(auto, i)
	}
	if len(auto) == 0 {
		return widths
	}

	rest := available - fixed
	if rest < 0 {
		rest = 0
	}

	headerFont := Font{Style: "B", Size: st.FontSize}
	bodyFont := Font{Size: st.FontSize}
	natural := make([]float64, len(t.Columns))
	total := 0.0
	for _, i := range auto {
		w := l.TextWidth(t.Columns[i].Label, headerFont)
		for _, row := range t.Rows {
			if i < len(row) {
				if cw := l.TextWidth(row[i], bodyFont); cw > w {
					w = cw
				}
			}
		}
		natural[i] = w + 2*st.Padding
		total += natural[i]
	}

	for _, i := range auto {
		if total > 0 {
			widths[i] = rest * natural[i] / total
		} else {
			widths[i] = rest / float64(len(auto))
		}
	}
	return widths
}

// cellAnchor returns the x a text run is anchored at for the alignment.
func cellAnchor(x, w, pad float64, align Align) float64 {
	switch align {
	case AlignCenter:
		return x + w/2
	case AlignRight:
		return x + w - pad
	default:
		return x + pad
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
