package reporting

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestExportPDF(t *testing.T) {
	opts := testOptions()
	opts.Measurer = nil // real font metrics
	fd := BuildSalesReport(sampleInput(), opts)

	result, err := ExportPDF(fd)
	if err != nil {
		t.Fatalf("PDF export failed: %v", err)
	}

	// Check PDF magic bytes
	if len(result) < 4 {
		t.Fatal("PDF too short")
	}
	if string(result[:4]) != "%PDF" {
		t.Error("Missing PDF magic bytes")
	}
	if len(result) < 1000 {
		t.Errorf("PDF seems too small: %d bytes", len(result))
	}
}

func TestExportPDF_EmptyInput(t *testing.T) {
	fd := BuildFullReport(&ReportInput{}, testOptions())
	result, err := ExportPDF(fd)
	if err != nil {
		t.Fatalf("PDF export of empty report failed: %v", err)
	}
	if string(result[:4]) != "%PDF" {
		t.Error("Missing PDF magic bytes")
	}
}

func TestExportPDF_WithLogo(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.SetGray(x, x, color.Gray{Y: 200})
	}
	var logo bytes.Buffer
	if err := png.Encode(&logo, img); err != nil {
		t.Fatalf("encode logo: %v", err)
	}

	opts := testOptions()
	opts.Branding.Logo = logo.Bytes()
	fd := BuildSalesReport(&ReportInput{}, opts)

	images := 0
	for _, ins := range fd.Pages()[0].Instructions() {
		if _, ok := ins.(Image); ok {
			images++
		}
	}
	if images != 1 {
		t.Fatalf("got %d logo images, want 1", images)
	}

	result, err := ExportPDF(fd)
	if err != nil {
		t.Fatalf("PDF export with logo failed: %v", err)
	}
	if string(result[:4]) != "%PDF" {
		t.Error("Missing PDF magic bytes")
	}
}

func TestExportPDF_RejectsUnknownLogo(t *testing.T) {
	opts := testOptions()
	opts.Branding.Logo = []byte("GIF89a not supported")
	fd := BuildSalesReport(&ReportInput{}, opts)

	var out bytes.Buffer
	err := WritePDF(fd, &out)
	if !errors.Is(err, ErrUnsupportedLogo) {
		t.Fatalf("err = %v, want ErrUnsupportedLogo", err)
	}
	if out.Len() != 0 {
		t.Error("partial output written after a failed export")
	}
}

func TestLogoType(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n")
	jpegHeader := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	tests := []struct {
		name string
		b    Branding
		want string
	}{
		{"explicit png", Branding{Logo: []byte("x"), LogoType: "png"}, "PNG"},
		{"explicit jpeg", Branding{Logo: []byte("x"), LogoType: "jpeg"}, "JPG"},
		{"unsupported explicit", Branding{Logo: pngHeader, LogoType: "gif"}, ""},
		{"sniffed png", Branding{Logo: pngHeader}, "PNG"},
		{"sniffed jpeg", Branding{Logo: jpegHeader}, "JPG"},
		{"unknown bytes", Branding{Logo: []byte("hello")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := logoType(tt.b); got != tt.want {
				t.Errorf("logoType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFMeasurer(t *testing.T) {
	m := NewPDFMeasurer()
	small := m.TextWidth("Total Revenue", Font{Size: 8})
	large := m.TextWidth("Total Revenue", Font{Size: 16})
	if small <= 0 {
		t.Fatalf("width = %v", small)
	}
	if diff := large - 2*small; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("width does not scale with size: %v vs %v", small, large)
	}
	if bold, plain := m.TextWidth("Revenue", Font{Style: "B", Size: 10}), m.TextWidth("Revenue", Font{Size: 10}); bold <= plain {
		t.Errorf("bold width %v not wider than regular %v", bold, plain)
	}
	if w := m.TextWidth(Placeholder, Font{Size: 10}); w <= 0 {
		t.Errorf("placeholder width = %v", w)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		kind   ReportKind
		format ReportFormat
		want   string
	}{
		{KindSales, FormatPDF, "Sales_Report_2026-10-19.pdf"},
		{KindFull, FormatPDF, "Full_Business_Report_2026-10-19.pdf"},
		{KindSales, FormatCSV, "Sales_Report_2026-10-19.csv"},
	}
	for _, tt := range tests {
		if got := Filename(tt.kind, tt.format, testDate); got != tt.want {
			t.Errorf("Filename(%s, %s) = %q, want %q", tt.kind, tt.format, got, tt.want)
		}
	}
}
