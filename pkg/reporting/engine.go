package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EngineConfig configures the default report engine.
type EngineConfig struct {
	Style    Style
	Branding Branding
	// Now is used when a request carries no generation time. Defaults to time.Now.
	Now func() time.Time
}

// ReportEngine builds reports with the fixed assemblers and serializes them
// as PDF or CSV. It is safe for concurrent use: every call lays out a fresh
// document.
type ReportEngine struct {
	now    func() time.Time
	csvGen *CSVGenerator

	mu       sync.RWMutex
	style    Style
	branding Branding
}

// NewReportEngine creates a report engine.
func NewReportEngine(cfg EngineConfig) *ReportEngine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Style.PageWidth <= 0 || cfg.Style.PageHeight <= 0 {
		threshold := cfg.Style.SafeMarginThreshold
		cfg.Style = DefaultStyle()
		if threshold > 0 {
			cfg.Style.SafeMarginThreshold = threshold
		}
	}
	return &ReportEngine{
		style:    cfg.Style,
		now:      cfg.Now,
		csvGen:   NewCSVGenerator(),
		branding: cfg.Branding,
	}
}

// Branding returns the identity stamped on new reports.
func (e *ReportEngine) Branding() Branding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.branding
}

// SetBranding replaces the identity used for reports generated from now on.
func (e *ReportEngine) SetBranding(b Branding) {
	e.mu.Lock()
	e.branding = b
	e.mu.Unlock()
}

// Style returns the page geometry used for new reports.
func (e *ReportEngine) Style() Style {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.style
}

// SetStyle replaces the page geometry. A style without page dimensions only
// updates the break threshold.
func (e *ReportEngine) SetStyle(s Style) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.PageWidth <= 0 || s.PageHeight <= 0 {
		if s.SafeMarginThreshold > 0 {
			e.style.SafeMarginThreshold = s.SafeMarginThreshold
		}
		return
	}
	e.style = s
}

// Generate builds and serializes one report.
func (e *ReportEngine) Generate(req ReportRequest) (*Artifact, error) {
	if req.Input == nil {
		return nil, ErrNilInput
	}
	if _, err := ParseKind(string(req.Kind)); err != nil {
		return nil, fmt.Errorf("%w: %q", err, req.Kind)
	}
	format := req.Format
	if format == "" {
		format = FormatPDF
	}
	generatedAt := req.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = e.now()
	}
	branding := e.Branding()
	style := e.Style()

	artifact := &Artifact{
		Filename:    Filename(req.Kind, format, generatedAt),
		ContentType: format.ContentType(),
	}

	switch format {
	case FormatPDF:
		fd, err := Build(req.Kind, req.Input, BuildOptions{
			Style:       style,
			Branding:    branding,
			GeneratedAt: generatedAt,
		})
		if err != nil {
			return nil, err
		}
		data, err := ExportPDF(fd)
		if err != nil {
			return nil, err
		}
		artifact.Data = data
		artifact.Pages = fd.TotalPages()
	case FormatCSV:
		data, err := e.csvGen.Generate(req.Kind, req.Input, generatedAt, branding)
		if err != nil {
			return nil, err
		}
		artifact.Data = data
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	log.Debug().
		Str("kind", string(req.Kind)).
		Str("format", string(format)).
		Int("pages", artifact.Pages).
		Int("bytes", len(artifact.Data)).
		Msg("Report generated")

	return artifact, nil
}

// Save writes the artifact into dir under its generated name and returns the
// full path.
func (a *Artifact) Save(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", a.Filename, err)
	}
	return path, nil
}
