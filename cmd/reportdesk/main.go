package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sriamman/reportdesk/internal/config"
	"github.com/sriamman/reportdesk/internal/history"
	"github.com/sriamman/reportdesk/internal/logging"
	"github.com/sriamman/reportdesk/internal/reportsapi"
	"github.com/sriamman/reportdesk/pkg/reporting"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "reportdesk",
		Short:         "Sales and business report generator",
		Long:          `reportdesk builds the sales and full business reports as paginated PDF or CSV files, from the store's reports API or a JSON export.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&g.envFile, "env-file", "", "Path to the .env file (default .env)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(newGenerateCmd(g))
	cmd.AddCommand(newServeCmd(g))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reportdesk %s\n", Version)
			if BuildTime != "unknown" {
				fmt.Fprintf(out, "Built: %s\n", BuildTime)
			}
			if GitCommit != "unknown" {
				fmt.Fprintf(out, "Commit: %s\n", GitCommit)
			}
		},
	}
}

// bootstrap loads the configuration and initializes logging from it.
func (g *globalFlags) bootstrap() (*config.Config, error) {
	// Baseline logger for anything logged while loading
	logging.Init(logging.Config{Format: "auto", Level: "info", Component: "reportdesk"})

	cfg, err := config.Load(config.LoadOptions{ConfigFile: g.configFile, EnvFile: g.envFile})
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: "reportdesk",
		FilePath:  cfg.LogFile,
	})
	return cfg, nil
}

// newEngine builds the report engine from the configuration and registers it.
func newEngine(cfg *config.Config) (*reporting.ReportEngine, error) {
	branding, err := cfg.Branding()
	if err != nil {
		return nil, err
	}
	engine := reporting.NewReportEngine(reporting.EngineConfig{
		Style:    cfg.Style(),
		Branding: branding,
	})
	reporting.SetEngine(engine)
	return engine, nil
}

func newAPIClient(cfg *config.Config) (*reportsapi.Client, error) {
	return reportsapi.NewClient(reportsapi.ClientConfig{
		BaseURL:     cfg.APIBaseURL,
		Token:       cfg.APIToken,
		Timeout:     cfg.APITimeout,
		Fingerprint: cfg.APIFingerprint,
	})
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	return history.NewStore(history.StoreConfig{
		DBPath:    cfg.HistoryDB,
		Retention: cfg.HistoryRetention,
	})
}

func main() {
	err := newRootCmd().Execute()
	logging.Shutdown()
	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
