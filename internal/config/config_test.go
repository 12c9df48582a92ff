package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sriamman/reportdesk/pkg/reporting"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG", "ENV_FILE", "BUSINESS_NAME", "NOTICE", "LOGO_PATH", "SAFE_MARGIN", "OUTPUT_DIR",
		"API_URL", "API_TOKEN", "API_FINGERPRINT", "API_TIMEOUT", "HISTORY_DB", "HISTORY_RETENTION", "LISTEN_ADDR", "METRICS_ADDR", "METRICS_READ_TIMEOUT", "METRICS_WRITE_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	} {
		name := envPrefix + key
		prev, had := os.LookupEnv(name)
		os.Unsetenv(name)
		t.Cleanup(func() {
			if had {
				os.Setenv(name, prev)
			} else {
				os.Unsetenv(name)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, reporting.DefaultBusinessName, cfg.BusinessName)
	assert.Equal(t, reporting.DefaultSafeMarginThreshold, cfg.SafeMarginThreshold)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	configFile := filepath.Join(dir, "reportdesk.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
business_name: FILE TRADERS
safe_margin_threshold: 90
api_base_url: https://erp.example.com/api
api_timeout: 10s
output_dir: /srv/reports
`), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("REPORTDESK_NOTICE=From dotenv\nREPORTDESK_OUTPUT_DIR=/tmp/dotenv\n"), 0o600))

	t.Setenv(envPrefix+"OUTPUT_DIR", "/tmp/env")

	cfg, err := Load(LoadOptions{ConfigFile: configFile, EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "FILE TRADERS", cfg.BusinessName)
	assert.Equal(t, 90.0, cfg.SafeMarginThreshold)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, "https://erp.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "From dotenv", cfg.Notice)
	// the process environment beats the .env file
	assert.Equal(t, "/tmp/env", cfg.OutputDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(envPrefix+"SAFE_MARGIN", "120")
	t.Setenv(envPrefix+"API_TIMEOUT", "45s")
	t.Setenv(envPrefix+"API_TOKEN", "secret")
	t.Setenv(envPrefix+"API_FINGERPRINT", "AB:CD:EF")
	t.Setenv(envPrefix+"METRICS_WRITE_TIMEOUT", "3s")

	cfg, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "none.env")})
	require.NoError(t, err)
	assert.Equal(t, 120.0, cfg.SafeMarginThreshold)
	assert.Equal(t, 45*time.Second, cfg.APITimeout)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.Equal(t, "AB:CD:EF", cfg.APIFingerprint)
	assert.Equal(t, 90*24*time.Hour, cfg.HistoryRetention)
	assert.Equal(t, 5*time.Second, cfg.MetricsReadTimeout)
	assert.Equal(t, 3*time.Second, cfg.MetricsWriteTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(envPrefix+"SAFE_MARGIN", "lots")
	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "none.env")})
	require.Error(t, err)

	clearEnv(t)
	t.Setenv(envPrefix+"API_URL", "ftp://erp")
	_, err = Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "none.env")})
	require.Error(t, err)

	clearEnv(t)
	t.Setenv(envPrefix+"METRICS_READ_TIMEOUT", "soon")
	_, err = Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "none.env")})
	require.Error(t, err)

	clearEnv(t)
	_, err = Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty business name", func(c *Config) { c.BusinessName = "  " }, true},
		{"zero threshold", func(c *Config) { c.SafeMarginThreshold = 0 }, true},
		{"threshold larger than page", func(c *Config) { c.SafeMarginThreshold = 400 }, true},
		{"short timeout", func(c *Config) { c.APITimeout = time.Millisecond }, true},
		{"no host", func(c *Config) { c.APIBaseURL = "http://" }, true},
		{"no upstream", func(c *Config) { c.APIBaseURL = "" }, false},
		{"history with short retention", func(c *Config) { c.HistoryDB = "h.db"; c.HistoryRetention = time.Minute }, true},
		{"short retention without history", func(c *Config) { c.HistoryRetention = time.Minute }, false},
		{"zero metrics timeout", func(c *Config) { c.MetricsReadTimeout = 0 }, true},
		{"zero metrics timeout without listener", func(c *Config) { c.MetricsAddr = ""; c.MetricsWriteTimeout = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBrandingAndStyle(t *testing.T) {
	cfg := Default()
	cfg.Notice = "Internal"
	cfg.SafeMarginThreshold = 100

	b, err := cfg.Branding()
	require.NoError(t, err)
	assert.Equal(t, reporting.DefaultBusinessName, b.BusinessName)
	assert.Equal(t, "Internal", b.Notice)
	assert.Nil(t, b.Logo)
	assert.Equal(t, 100.0, cfg.Style().SafeMarginThreshold)

	logo := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("\x89PNG\r\n\x1a\n"), 0o600))
	cfg.LogoPath = logo
	b, err = cfg.Branding()
	require.NoError(t, err)
	assert.NotEmpty(t, b.Logo)

	cfg.LogoPath = filepath.Join(t.TempDir(), "missing.png")
	_, err = cfg.Branding()
	assert.Error(t, err)
}
