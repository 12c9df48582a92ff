package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/sriamman/reportdesk/pkg/reporting"
)

const envPrefix = "REPORTDESK_"

// Config holds the settings shared by the CLI and the report server.
type Config struct {
	// Branding
	BusinessName        string  `yaml:"business_name"`
	Notice              string  `yaml:"notice"`
	LogoPath            string  `yaml:"logo_path"`
	SafeMarginThreshold float64 `yaml:"safe_margin_threshold"`

	OutputDir string `yaml:"output_dir"`

	// History of generated reports; an empty path disables it.
	HistoryDB        string        `yaml:"history_db"`
	HistoryRetention time.Duration `yaml:"history_retention"`

	// Upstream reports API
	APIBaseURL string        `yaml:"api_base_url"`
	APIToken   string        `yaml:"api_token"`
	APITimeout time.Duration `yaml:"api_timeout"`
	// APIFingerprint pins the API's TLS certificate by SHA-256, for
	// self-signed deployments on the shop network.
	APIFingerprint string `yaml:"api_fingerprint"`

	// Server
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	// Scrape timeouts for the metrics listener.
	MetricsReadTimeout  time.Duration `yaml:"metrics_read_timeout"`
	MetricsWriteTimeout time.Duration `yaml:"metrics_write_timeout"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`

	// EnvFile is the .env file read at load time and watched while serving.
	EnvFile string `yaml:"-"`
	// ConfigFile is the YAML file Load read, if any.
	ConfigFile string `yaml:"-"`

	// processEnv holds the REPORTDESK_* variables that were set before the
	// .env file was loaded.
	processEnv map[string]string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BusinessName:        reporting.DefaultBusinessName,
		SafeMarginThreshold: reporting.DefaultSafeMarginThreshold,
		OutputDir:           ".",
		HistoryRetention:    90 * 24 * time.Hour,
		APIBaseURL:          "http://localhost:5000/api",
		APITimeout:          30 * time.Second,
		ListenAddr:          ":8080",
		MetricsAddr:         ":9091",
		MetricsReadTimeout:  5 * time.Second,
		MetricsWriteTimeout: 10 * time.Second,
		LogLevel:            "info",
		LogFormat:           "auto",
		EnvFile:             ".env",
	}
}

// LoadOptions selects the files Load reads. Empty paths fall back to
// REPORTDESK_CONFIG and REPORTDESK_ENV_FILE.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
}

// Load builds the configuration from defaults, the optional YAML file, the
// .env file and REPORTDESK_* environment variables, in that order.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(envPrefix + "CONFIG")
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
		cfg.ConfigFile = configFile
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = os.Getenv(envPrefix + "ENV_FILE")
	}
	if envFile != "" {
		cfg.EnvFile = envFile
	}
	cfg.processEnv = prefixedEnv()
	if _, err := os.Stat(cfg.EnvFile); err == nil {
		// Variables already set in the process environment win.
		if err := godotenv.Load(cfg.EnvFile); err != nil {
			log.Warn().Err(err).Str("file", cfg.EnvFile).Msg("Failed to load .env file")
		} else {
			log.Debug().Str("file", cfg.EnvFile).Msg("Loaded .env file")
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// prefixedEnv snapshots the REPORTDESK_* process environment.
func prefixedEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, envPrefix) {
			env[key] = val
		}
	}
	return env
}

// RuntimeSettings rebuilds the settings that may change while serving
// (branding and the break threshold) from defaults, the YAML file, the given
// .env values and finally the process environment captured by Load. Every
// other field is copied from c unchanged.
func (c *Config) RuntimeSettings(dotenv map[string]string) (*Config, error) {
	fresh := Default()
	if c.ConfigFile != "" {
		if err := fresh.loadFile(c.ConfigFile); err != nil {
			return nil, err
		}
	}
	lookup := func(key string) string {
		if val, ok := c.processEnv[key]; ok {
			return val
		}
		return dotenv[key]
	}
	if err := fresh.applyEnv(lookup); err != nil {
		return nil, err
	}

	next := *c
	next.BusinessName = fresh.BusinessName
	next.Notice = fresh.Notice
	next.LogoPath = fresh.LogoPath
	next.SafeMarginThreshold = fresh.SafeMarginThreshold
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	log.Debug().Str("path", path).Msg("Loaded configuration file")
	return nil
}

// applyEnv overrides settings from environment style lookups. It is shared
// by Load and the .env watcher.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if val := strings.TrimSpace(getenv(envPrefix + key)); val != "" {
			*dst = val
		}
	}

	str("BUSINESS_NAME", &c.BusinessName)
	str("NOTICE", &c.Notice)
	str("LOGO_PATH", &c.LogoPath)
	str("OUTPUT_DIR", &c.OutputDir)
	str("HISTORY_DB", &c.HistoryDB)
	str("API_URL", &c.APIBaseURL)
	str("API_TOKEN", &c.APIToken)
	str("API_FINGERPRINT", &c.APIFingerprint)
	str("LISTEN_ADDR", &c.ListenAddr)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("LOG_FILE", &c.LogFile)

	if val := strings.TrimSpace(getenv(envPrefix + "SAFE_MARGIN")); val != "" {
		threshold, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %sSAFE_MARGIN %q: %w", envPrefix, val, err)
		}
		c.SafeMarginThreshold = threshold
	}
	if val := strings.TrimSpace(getenv(envPrefix + "API_TIMEOUT")); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid %sAPI_TIMEOUT %q: %w", envPrefix, val, err)
		}
		c.APITimeout = timeout
	}
	if val := strings.TrimSpace(getenv(envPrefix + "HISTORY_RETENTION")); val != "" {
		retention, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid %sHISTORY_RETENTION %q: %w", envPrefix, val, err)
		}
		c.HistoryRetention = retention
	}
	for key, dst := range map[string]*time.Duration{
		"METRICS_READ_TIMEOUT":  &c.MetricsReadTimeout,
		"METRICS_WRITE_TIMEOUT": &c.MetricsWriteTimeout,
	} {
		if val := strings.TrimSpace(getenv(envPrefix + key)); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, val, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BusinessName) == "" {
		return errors.New("business name is required")
	}
	if c.SafeMarginThreshold <= 0 {
		return fmt.Errorf("safe margin threshold must be positive, got %v", c.SafeMarginThreshold)
	}
	style := reporting.DefaultStyle()
	if usable := style.ContentBottom() - style.MarginTop; c.SafeMarginThreshold >= usable {
		return fmt.Errorf("safe margin threshold %v must be below the usable page height %v", c.SafeMarginThreshold, usable)
	}
	if c.HistoryDB != "" && c.HistoryRetention < time.Hour {
		return fmt.Errorf("history retention must be at least 1 hour, got %v", c.HistoryRetention)
	}
	if c.MetricsAddr != "" && (c.MetricsReadTimeout <= 0 || c.MetricsWriteTimeout <= 0) {
		return fmt.Errorf("metrics timeouts must be positive, got read %v write %v", c.MetricsReadTimeout, c.MetricsWriteTimeout)
	}
	if c.APITimeout < time.Second {
		return fmt.Errorf("API timeout must be at least 1 second")
	}
	if c.APIBaseURL != "" {
		u, err := url.Parse(c.APIBaseURL)
		if err != nil {
			return fmt.Errorf("invalid API URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("API URL must start with http:// or https://")
		}
		if u.Host == "" {
			return fmt.Errorf("API URL %q has no host", c.APIBaseURL)
		}
	}
	return nil
}

// Style returns the page geometry with the configured break threshold.
func (c *Config) Style() reporting.Style {
	style := reporting.DefaultStyle()
	style.SafeMarginThreshold = c.SafeMarginThreshold
	return style
}

// Branding returns the report identity, reading the logo file if one is set.
func (c *Config) Branding() (reporting.Branding, error) {
	b := reporting.Branding{
		BusinessName: c.BusinessName,
		Notice:       c.Notice,
	}
	if c.LogoPath == "" {
		return b, nil
	}
	logo, err := os.ReadFile(c.LogoPath)
	if err != nil {
		return b, fmt.Errorf("read logo: %w", err)
	}
	b.Logo = logo
	return b, nil
}
