package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sriamman/reportdesk/internal/config"
	"github.com/sriamman/reportdesk/internal/history"
	"github.com/sriamman/reportdesk/internal/metrics"
	"github.com/sriamman/reportdesk/pkg/reporting"
)

type generateCmd struct {
	global    *globalFlags
	inputPath string
	format    string
	outDir    string
}

func newGenerateCmd(g *globalFlags) *cobra.Command {
	gc := &generateCmd{global: g}
	cmd := &cobra.Command{
		Use:       "generate <sales|full>",
		Short:     "Generate a report file",
		Long:      `Generate a sales or full business report. Data comes from --input (a JSON report input, "-" for stdin) or, without it, from the reports API.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(reporting.KindSales), string(reporting.KindFull)},
		RunE:      gc.run,
	}

	cmd.Flags().StringVarP(&gc.inputPath, "input", "i", "", "JSON report input file, - for stdin")
	cmd.Flags().StringVarP(&gc.format, "format", "f", "pdf", "Output format: pdf or csv")
	cmd.Flags().StringVarP(&gc.outDir, "out", "o", "", "Output directory (default from configuration)")

	return cmd
}

func (gc *generateCmd) run(cmd *cobra.Command, args []string) error {
	kind, err := reporting.ParseKind(args[0])
	if err != nil {
		return fmt.Errorf("%w %q: use sales or full", err, args[0])
	}
	format, err := reporting.ParseFormat(gc.format)
	if err != nil {
		return fmt.Errorf("%w %q: use pdf or csv", err, gc.format)
	}

	cfg, err := gc.global.bootstrap()
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	entry := history.Entry{
		ID:     ulid.Make().String(),
		Kind:   string(kind),
		Format: string(format),
		Source: history.SourceFile,
	}
	if gc.inputPath == "" {
		entry.Source = history.SourceAPI
	}

	input, err := gc.loadInput(cmd, cfg, kind)
	if err != nil {
		entry.Error = err.Error()
		recordHistory(cmd.Context(), cfg, entry)
		return err
	}

	start := time.Now()
	artifact, err := engine.Generate(reporting.ReportRequest{Kind: kind, Format: format, Input: input})
	metrics.RecordReportGenerated(string(kind), string(format), time.Since(start), pagesOf(artifact), err)
	if err != nil {
		entry.Error = err.Error()
		recordHistory(cmd.Context(), cfg, entry)
		return fmt.Errorf("generate %s report: %w", kind, err)
	}

	outDir := gc.outDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	path, err := artifact.Save(outDir)
	if err != nil {
		return err
	}

	entry.Filename = artifact.Filename
	entry.Pages = artifact.Pages
	entry.Bytes = len(artifact.Data)
	recordHistory(cmd.Context(), cfg, entry)

	log.Info().
		Str("kind", string(kind)).
		Str("format", string(format)).
		Int("pages", artifact.Pages).
		Int("bytes", len(artifact.Data)).
		Str("path", path).
		Str("report_id", entry.ID).
		Msg("Report written")
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func (gc *generateCmd) loadInput(cmd *cobra.Command, cfg *config.Config, kind reporting.ReportKind) (*reporting.ReportInput, error) {
	if gc.inputPath == "" {
		client, err := newAPIClient(cfg)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.APITimeout)
		defer cancel()
		return client.FetchAll(ctx, kind)
	}

	var r io.Reader
	if gc.inputPath == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(gc.inputPath)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	input := &reporting.ReportInput{}
	if err := json.NewDecoder(r).Decode(input); err != nil {
		return nil, fmt.Errorf("decode input %s: %w", gc.inputPath, err)
	}
	return input, nil
}

// recordHistory appends the entry to the history database when one is
// configured. Failures are logged, never returned.
func recordHistory(ctx context.Context, cfg *config.Config, e history.Entry) {
	if cfg.HistoryDB == "" {
		return
	}
	store, err := openHistory(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Report history unavailable")
		return
	}
	defer store.Close()
	if err := store.Record(ctx, e); err != nil {
		log.Warn().Err(err).Str("report_id", e.ID).Msg("Failed to record report history")
	}
}

func pagesOf(a *reporting.Artifact) int {
	if a == nil {
		return 0
	}
	return a.Pages
}
