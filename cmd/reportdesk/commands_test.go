package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sriamman/reportdesk/internal/config"
	"github.com/sriamman/reportdesk/internal/history"
	"github.com/sriamman/reportdesk/pkg/reporting"
)

const sampleInput = `{
	"summary": {"totalRevenue": 250000, "totalPaid": 180000, "totalOrders": 37},
	"series": [
		{"date": "2026-10-18", "orderCount": 5, "revenue": 42000, "amountCollected": 30000},
		{"date": "2026-10-19", "orderCount": 2, "revenue": 9000, "amountCollected": 9000}
	],
	"topProducts": [{"name": "TMT Bar 12mm", "quantitySold": 120, "revenue": 84000}]
}`

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolatedEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "missing.env")
}

func TestVersionCmd(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := Version, BuildTime, GitCommit
	defer func() {
		Version, BuildTime, GitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	Version = "1.2.3"
	BuildTime = "2026-10-01"
	GitCommit = "abcdef"

	output, err := runCmd(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, output, "reportdesk 1.2.3")
	assert.Contains(t, output, "Built: 2026-10-01")
	assert.Contains(t, output, "Commit: abcdef")

	BuildTime = "unknown"
	GitCommit = "unknown"
	output, err = runCmd(t, "", "version")
	require.NoError(t, err)
	assert.NotContains(t, output, "Built:")
	assert.NotContains(t, output, "Commit:")
}

func TestGenerateCmd_FromInputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(input, []byte(sampleInput), 0o600))
	outDir := filepath.Join(dir, "reports")

	output, err := runCmd(t, "", "generate", "sales", "--input", input, "--out", outDir, "--env-file", isolatedEnv(t))
	require.NoError(t, err)

	path := strings.TrimSpace(output)
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Sales_Report_"))
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGenerateCmd_CSVFromStdin(t *testing.T) {
	outDir := t.TempDir()

	output, err := runCmd(t, sampleInput, "generate", "full", "-i", "-", "-f", "csv", "-o", outDir, "--env-file", isolatedEnv(t))
	require.NoError(t, err)

	path := strings.TrimSpace(output)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Full_Business_Report_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# SUMMARY")
	assert.Contains(t, string(data), "TMT Bar 12mm")
}

func TestGenerateCmd_FromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/reports/sales":
			w.Write([]byte(`{"success":true,"data":{"summary":{"totalRevenue":1000,"totalPaid":400,"totalOrders":3},"chart":[]}}`))
		case "/api/reports/products":
			w.Write([]byte(`{"success":true,"data":{"topProducts":[],"categoryStats":[]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	t.Setenv("REPORTDESK_API_URL", srv.URL+"/api")

	outDir := t.TempDir()
	output, err := runCmd(t, "", "generate", "sales", "-f", "csv", "-o", outDir, "--env-file", isolatedEnv(t))
	require.NoError(t, err)

	data, err := os.ReadFile(strings.TrimSpace(output))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Outstanding Amount,600.00")
}

func TestGenerateCmd_InvalidArgs(t *testing.T) {
	_, err := runCmd(t, "", "generate", "weekly", "--env-file", isolatedEnv(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, reporting.ErrUnknownKind)

	_, err = runCmd(t, "", "generate", "sales", "--format", "docx", "--env-file", isolatedEnv(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, reporting.ErrUnsupportedFormat)

	_, err = runCmd(t, "", "generate")
	require.Error(t, err)
}

func TestGenerateCmd_BadInput(t *testing.T) {
	_, err := runCmd(t, "{not json", "generate", "sales", "-i", "-", "-o", t.TempDir(), "--env-file", isolatedEnv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode input")
}

func TestApplyReload(t *testing.T) {
	engine := reporting.NewReportEngine(reporting.EngineConfig{Branding: reporting.DefaultBranding()})

	cfg := config.Default()
	cfg.BusinessName = "NEW TRADERS"
	cfg.SafeMarginThreshold = 90
	applyReload(engine, cfg)

	assert.Equal(t, "NEW TRADERS", engine.Branding().BusinessName)
	assert.Equal(t, 90.0, engine.Style().SafeMarginThreshold)

	cfg.BusinessName = "IGNORED"
	cfg.LogoPath = filepath.Join(t.TempDir(), "missing.png")
	applyReload(engine, cfg)
	assert.Equal(t, "NEW TRADERS", engine.Branding().BusinessName)
}

func TestGenerateCmd_RecordsHistory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	t.Setenv("REPORTDESK_HISTORY_DB", dbPath)

	_, err := runCmd(t, sampleInput, "generate", "sales", "-i", "-", "-f", "csv", "-o", dir, "--env-file", isolatedEnv(t))
	require.NoError(t, err)

	store, err := history.NewStore(history.StoreConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sales", entries[0].Kind)
	assert.Equal(t, history.SourceFile, entries[0].Source)
	assert.True(t, entries[0].Succeeded())
	assert.True(t, strings.HasPrefix(entries[0].Filename, "Sales_Report_"))
}

func TestGenerateCmd_RecordsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	t.Setenv("REPORTDESK_HISTORY_DB", dbPath)
	t.Setenv("REPORTDESK_API_URL", srv.URL+"/api")

	_, err := runCmd(t, "", "generate", "full", "-o", dir, "--env-file", isolatedEnv(t))
	require.Error(t, err)

	store, err := history.NewStore(history.StoreConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "full", entries[0].Kind)
	assert.Equal(t, history.SourceAPI, entries[0].Source)
	assert.False(t, entries[0].Succeeded())
	assert.NotEmpty(t, entries[0].Error)
	assert.Empty(t, entries[0].Filename)
}
