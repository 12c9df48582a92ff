package reporting

import (
	"fmt"
	"time"
)

// Color scheme - slate with blue accents
var (
	colorBanner         = [3]int{30, 41, 59}    // slate-800
	colorAccent         = [3]int{59, 130, 246}  // blue-500
	colorTextDark       = [3]int{30, 41, 59}    // slate-800
	colorTextMuted      = [3]int{100, 116, 139} // slate-500
	colorFooterLine     = [3]int{203, 213, 225} // slate-300
	colorTableHeader    = [3]int{30, 41, 59}    // slate-800
	colorSubTableHeader = [3]int{71, 85, 105}   // slate-600
	colorTableAlt       = [3]int{248, 250, 252} // slate-50
	colorGridLine       = [3]int{226, 232, 240} // slate-200
	colorWhite          = [3]int{255, 255, 255}
)

// cardPalette is cycled by card index.
var cardPalette = [][3]int{
	{34, 197, 94},  // green
	{59, 130, 246}, // blue
	{245, 158, 11}, // amber
	{168, 85, 247}, // purple
}

const fontFamily = "Arial"

// Style holds the page geometry shared by every renderer. Units are mm.
type Style struct {
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64

	// SafeMarginThreshold is the free vertical space a new section needs on
	// the current page; with less, the section starts on a fresh page.
	SafeMarginThreshold float64
}

// DefaultSafeMarginThreshold keeps a section title, a table header and a few
// rows together on A4.
const DefaultSafeMarginThreshold = 77.0

// DefaultStyle returns A4 portrait geometry.
func DefaultStyle() Style {
	return Style{
		PageWidth:           210,
		PageHeight:          297,
		MarginLeft:          14,
		MarginRight:         14,
		MarginTop:           20,
		MarginBottom:        20,
		SafeMarginThreshold: DefaultSafeMarginThreshold,
	}
}

// PrintableWidth is the page width inside the side margins.
func (s Style) PrintableWidth() float64 {
	return s.PageWidth - s.MarginLeft - s.MarginRight
}

// ContentBottom is the lowest Y a block may occupy.
func (s Style) ContentBottom() float64 {
	return s.PageHeight - s.MarginBottom
}

// Branding is the business identity stamped on every report.
type Branding struct {
	BusinessName string
	Notice       string // confidentiality line in the footer
	Logo         []byte // optional PNG or JPEG drawn in the header banner
	LogoType     string // "PNG" or "JPG"; derived from the bytes when empty
}

const DefaultBusinessName = "SRI AMMAN STEELS & HARDWARE"

// DefaultBranding returns the stock business identity.
func DefaultBranding() Branding {
	return Branding{BusinessName: DefaultBusinessName}
}

// notice returns the footer confidentiality line.
func (b Branding) notice() string {
	if b.Notice != "" {
		return b.Notice
	}
	name := b.BusinessName
	if name == "" {
		name = DefaultBusinessName
	}
	return fmt.Sprintf("%s - Confidential Report", titleBusinessName(name))
}

// Font selects the style and point size of a text run. The family is fixed.
type Font struct {
	Style string // "", "B", "I" or "BI"
	Size  float64
}

// Align is horizontal text alignment relative to an anchor or a cell.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// fpdf returns the fpdf alignment letter.
func (a Align) fpdf() string {
	switch a {
	case AlignCenter:
		return "C"
	case AlignRight:
		return "R"
	default:
		return "L"
	}
}

// Role tags an instruction with what it draws so finished pages can be
// inspected without re-parsing the PDF.
type Role string

const (
	RoleBanner          Role = "banner"
	RoleCard            Role = "card"
	RoleSectionTitle    Role = "section.title"
	RoleText            Role = "text"
	RoleTableHeader     Role = "table.header"
	RoleTableHeaderText Role = "table.header.text"
	RoleTableRow        Role = "table.row"
	RoleTableCell       Role = "table.cell"
	RoleCustomerHeading Role = "customer.heading"
	RoleFooter          Role = "footer"
	RoleFooterPage      Role = "footer.page"
	RoleLogo            Role = "logo"
)

// Instruction is one drawing primitive recorded on a page.
type Instruction interface {
	InstructionRole() Role
}

// TextRun draws Text with its baseline at Y. X is the anchor: the left edge
// for AlignLeft, the centre for AlignCenter and the right edge for AlignRight.
type TextRun struct {
	Role  Role
	X, Y  float64
	Text  string
	Font  Font
	Color [3]int
	Align Align
}

// Rect is a rectangle, optionally filled, optionally outlined, optionally
// with rounded corners.
type Rect struct {
	Role      Role
	X, Y      float64
	W, H      float64
	Radius    float64
	Fill      bool
	FillColor [3]int
	Stroke    bool
	LineColor [3]int
	LineWidth float64
}

// Line is a straight stroke.
type Line struct {
	Role           Role
	X1, Y1, X2, Y2 float64
	Color          [3]int
	Width          float64
}

// Image places the branding logo.
type Image struct {
	Role Role
	X, Y float64
	W, H float64
}

func (t TextRun) InstructionRole() Role { return t.Role }
func (r Rect) InstructionRole() Role    { return r.Role }
func (l Line) InstructionRole() Role    { return l.Role }
func (i Image) InstructionRole() Role   { return i.Role }

// Page is one sheet of the document. Content is append-only during layout;
// the footer slot is owned by the finalization pass.
type Page struct {
	Number    int
	Width     float64
	Height    float64
	HighWater float64 // deepest cursor Y reached on this page

	content []Instruction
	footer  []Instruction
}

// Instructions returns the page's content followed by its footer.
func (p *Page) Instructions() []Instruction {
	out := make([]Instruction, 0, len(p.content)+len(p.footer))
	out = append(out, p.content...)
	return append(out, p.footer...)
}

// Empty reports whether nothing has been drawn on the page yet.
func (p *Page) Empty() bool {
	return len(p.content) == 0
}

// Document is the in-memory report being laid out: an ordered list of pages
// plus the style they share. A fresh Document is built for every report.
type Document struct {
	Title       string
	Style       Style
	Branding    Branding
	GeneratedAt time.Time

	pages     []*Page
	finalized bool
}

// NewDocument creates an empty document. The first page is added by the
// layout context.
func NewDocument(title string, style Style, branding Branding) *Document {
	return &Document{Title: title, Style: style, Branding: branding}
}

// Finalized reports whether the footer pass has run. A finalized document
// takes no further layout.
func (d *Document) Finalized() bool {
	return d.finalized
}

// PageCount returns the running page count.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Pages returns the pages in order.
func (d *Document) Pages() []*Page {
	return d.pages
}

func (d *Document) addPage() *Page {
	p := &Page{
		Number: len(d.pages) + 1,
		Width:  d.Style.PageWidth,
		Height: d.Style.PageHeight,
	}
	d.pages = append(d.pages, p)
	return p
}
