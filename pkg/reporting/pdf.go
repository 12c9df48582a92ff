package reporting

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pdfCreator = "reportdesk"
	logoName   = "branding-logo"
)

// pdfMeasurer measures strings with the core font metrics fpdf embeds, after
// the same cp1252 translation the exporter applies.
type pdfMeasurer struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	font Font
	set  bool
}

// NewPDFMeasurer returns a Measurer backed by fpdf font metrics. It keeps
// font state and must not be shared between goroutines.
func NewPDFMeasurer() Measurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &pdfMeasurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *pdfMeasurer) TextWidth(text string, font Font) float64 {
	if !m.set || m.font != font {
		m.pdf.SetFont(fontFamily, font.Style, font.Size)
		m.font, m.set = font, true
	}
	return m.pdf.GetStringWidth(m.tr(text))
}

// WritePDF serializes a finalized document. Nothing is written to w unless
// the whole document rendered without error.
func WritePDF(fd *FinalizedDocument, w io.Writer) error {
	doc := fd.Document()
	if n := doc.PageCount(); n != fd.total {
		return fmt.Errorf("document has %d pages but footers were stamped for %d", n, fd.total)
	}
	s := doc.Style

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: s.PageWidth, Ht: s.PageHeight},
	})
	pdf.SetMargins(s.MarginLeft, s.MarginTop, s.MarginRight)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Branding.BusinessName, true)
	pdf.SetCreator(pdfCreator, true)
	created := doc.GeneratedAt
	if created.IsZero() {
		created = time.Now()
	}
	pdf.SetCreationDate(created)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	hasLogo := false
	if len(doc.Branding.Logo) > 0 {
		imgType := logoType(doc.Branding)
		if imgType == "" {
			return fmt.Errorf("branding logo: %w", ErrUnsupportedLogo)
		}
		pdf.RegisterImageOptionsReader(logoName, fpdf.ImageOptions{ImageType: imgType}, bytes.NewReader(doc.Branding.Logo))
		hasLogo = true
	}

	for _, page := range fd.Pages() {
		pdf.AddPage()
		for _, ins := range page.Instructions() {
			switch v := ins.(type) {
			case TextRun:
				drawText(pdf, tr, v)
			case Rect:
				drawRect(pdf, v)
			case Line:
				pdf.SetDrawColor(v.Color[0], v.Color[1], v.Color[2])
				pdf.SetLineWidth(v.Width)
				pdf.Line(v.X1, v.Y1, v.X2, v.Y2)
			case Image:
				if hasLogo {
					pdf.ImageOptions(logoName, v.X, v.Y, v.W, v.H, false, fpdf.ImageOptions{}, 0, "")
				}
			}
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("PDF render error on page %d: %w", page.Number, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("PDF output error: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("PDF write error: %w", err)
	}
	return nil
}

// ExportPDF renders a finalized document to bytes.
func ExportPDF(fd *FinalizedDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(fd, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawText(pdf *fpdf.Fpdf, tr func(string) string, t TextRun) {
	pdf.SetFont(fontFamily, t.Font.Style, t.Font.Size)
	pdf.SetTextColor(t.Color[0], t.Color[1], t.Color[2])
	text := tr(t.Text)
	x := t.X
	switch t.Align {
	case AlignCenter:
		x -= pdf.GetStringWidth(text) / 2
	case AlignRight:
		x -= pdf.GetStringWidth(text)
	}
	pdf.Text(x, t.Y, text)
}

func drawRect(pdf *fpdf.Fpdf, r Rect) {
	style := ""
	if r.Fill {
		pdf.SetFillColor(r.FillColor[0], r.FillColor[1], r.FillColor[2])
		style += "F"
	}
	if r.Stroke {
		pdf.SetDrawColor(r.LineColor[0], r.LineColor[1], r.LineColor[2])
		pdf.SetLineWidth(r.LineWidth)
		style += "D"
	}
	if style == "" {
		return
	}
	if r.Radius > 0 {
		pdf.RoundedRect(r.X, r.Y, r.W, r.H, r.Radius, "1234", style)
		return
	}
	pdf.Rect(r.X, r.Y, r.W, r.H, style)
}

// logoType returns the fpdf image type of the branding logo, sniffing the
// bytes when the type was not given.
func logoType(b Branding) string {
	switch strings.ToUpper(b.LogoType) {
	case "PNG":
		return "PNG"
	case "JPG", "JPEG":
		return "JPG"
	case "":
	default:
		return ""
	}
	switch http.DetectContentType(b.Logo) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	}
	return ""
}

// Filename is the deterministic artifact name for a report generated on date,
// e.g. Sales_Report_2026-10-19.pdf.
func Filename(kind ReportKind, format ReportFormat, date time.Time) string {
	return fmt.Sprintf("%s_Report_%s.%s", kind.filePrefix(), date.Format("2006-01-02"), format)
}
