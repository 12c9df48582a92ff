package reporting

import (
	"errors"
	"time"
)

// ReportFormat represents the output format of a report
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// ContentType returns the MIME type served for the format.
func (f ReportFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// ReportKind identifies one of the fixed report compositions.
type ReportKind string

const (
	KindSales ReportKind = "sales"
	KindFull  ReportKind = "full"
)

// filePrefix is the leading part of the generated artifact name.
func (k ReportKind) filePrefix() string {
	switch k {
	case KindSales:
		return "Sales"
	case KindFull:
		return "Full_Business"
	default:
		return "Business"
	}
}

// ParseKind validates a user supplied report kind.
func ParseKind(s string) (ReportKind, error) {
	switch ReportKind(s) {
	case KindSales, KindFull:
		return ReportKind(s), nil
	}
	return "", ErrUnknownKind
}

// ParseFormat validates a user supplied format. Empty means PDF.
func ParseFormat(s string) (ReportFormat, error) {
	switch ReportFormat(s) {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatCSV:
		return ReportFormat(s), nil
	}
	return "", ErrUnsupportedFormat
}

var (
	ErrUnknownKind       = errors.New("unknown report kind")
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrNilInput          = errors.New("report input is nil")
	ErrUnsupportedLogo   = errors.New("logo must be PNG or JPEG")
	ErrLayoutFinalized   = errors.New("layout used after Finalize")
)

// ReportRequest defines the parameters for generating a report
type ReportRequest struct {
	Kind        ReportKind
	Format      ReportFormat
	Input       *ReportInput
	GeneratedAt time.Time // zero means now
}

// Artifact is a finished, serialized report ready to hand to a caller.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Pages       int // zero for formats without pages
}

// Engine defines the interface for report generation.
// The HTTP layer and the CLI both resolve the engine through GetEngine.
type Engine interface {
	Generate(req ReportRequest) (*Artifact, error)
}

var (
	globalEngine Engine
)

// SetEngine sets the global report engine.
func SetEngine(e Engine) {
	globalEngine = e
}

// GetEngine returns the current global report engine.
func GetEngine() Engine {
	return globalEngine
}
