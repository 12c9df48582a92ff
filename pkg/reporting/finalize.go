package reporting

import "fmt"

const (
	footerRuleOffset = 15.0 // from the page bottom
	footerTextOffset = 8.0
)

// FinalizedDocument is a document whose page count is fixed and whose
// footers have been stamped. Only a FinalizedDocument can be exported.
type FinalizedDocument struct {
	doc   *Document
	total int
}

// Finalize runs the footer pass. It must follow the last layout call, since
// every footer carries the final page count; afterwards any layout on doc
// panics with ErrLayoutFinalized. Running it again rewrites the same footers.
func Finalize(doc *Document) *FinalizedDocument {
	doc.finalized = true
	fd := &FinalizedDocument{doc: doc, total: doc.PageCount()}
	for _, p := range doc.pages {
		p.footer = fd.footer(p)
	}
	return fd
}

// Finalize ends layout and runs the footer pass on the document.
func (l *Layout) Finalize() *FinalizedDocument {
	return Finalize(l.doc)
}

// Document returns the underlying document.
func (fd *FinalizedDocument) Document() *Document { return fd.doc }

// TotalPages is the page count the footers were stamped with.
func (fd *FinalizedDocument) TotalPages() int { return fd.total }

// Pages returns the finished pages in order.
func (fd *FinalizedDocument) Pages() []*Page { return fd.doc.pages }

// footer builds the separator, notice and page number for one page.
func (fd *FinalizedDocument) footer(p *Page) []Instruction {
	s := fd.doc.Style
	left := s.MarginLeft
	right := s.PageWidth - s.MarginRight
	font := Font{Size: 8}

	return []Instruction{
		Line{Role: RoleFooter, X1: left, Y1: p.Height - footerRuleOffset, X2: right, Y2: p.Height - footerRuleOffset, Color: colorFooterLine, Width: 0.5},
		TextRun{Role: RoleFooter, X: left, Y: p.Height - footerTextOffset, Text: fd.doc.Branding.notice(), Font: font, Color: colorTextMuted},
		TextRun{Role: RoleFooterPage, X: right, Y: p.Height - footerTextOffset, Text: PageLabel(p.Number, fd.total), Font: font, Color: colorTextMuted, Align: AlignRight},
	}
}

// PageLabel is the footer page counter text.
func PageLabel(page, total int) string {
	return fmt.Sprintf("Page %d of %d", page, total)
}
