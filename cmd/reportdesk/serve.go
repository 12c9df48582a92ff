package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sriamman/reportdesk/internal/api"
	"github.com/sriamman/reportdesk/internal/config"
	"github.com/sriamman/reportdesk/pkg/reporting"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	global      *globalFlags
	listenAddr  string
	metricsAddr string
}

func newServeCmd(g *globalFlags) *cobra.Command {
	sc := &serveCmd{global: g}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.listenAddr, "listen", "", "API listen address (default from configuration)")
	cmd.Flags().StringVar(&sc.metricsAddr, "metrics", "", "Metrics listen address, empty string in config disables it")

	return cmd
}

func (sc *serveCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := sc.global.bootstrap()
	if err != nil {
		return err
	}
	if sc.listenAddr != "" {
		cfg.ListenAddr = sc.listenAddr
	}
	if sc.metricsAddr != "" {
		cfg.MetricsAddr = sc.metricsAddr
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	log.Info().
		Str("version", Version).
		Str("business", cfg.BusinessName).
		Str("api", cfg.APIBaseURL).
		Msg("Starting report server")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cfg.MetricsAddr != "" {
		if _, err := startMetricsServer(ctx, cfg); err != nil {
			return err
		}
	}

	// Branding and the break threshold follow edits to the .env file
	watcher, err := config.NewWatcher(cfg, func(updated *config.Config) {
		applyReload(engine, updated)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Config watcher unavailable, .env changes need a restart")
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	routerCfg := api.RouterConfig{Fetcher: client}
	if cfg.HistoryDB != "" {
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		routerCfg.History = store
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Report API listening")
		serverErrors <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	reloadChan := make(chan os.Signal, 1)
	signal.Notify(reloadChan, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	defer signal.Stop(reloadChan)

	for {
		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-reloadChan:
			log.Info().Msg("Received SIGHUP, reloading .env")
			if watcher != nil {
				watcher.Reload()
			}
		case <-sigChan:
			log.Info().Msg("Shutting down report server")
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Graceful shutdown failed")
				return srv.Close()
			}
			return nil
		}
	}
}

// applyReload pushes reloaded settings into the running engine. A logo that
// cannot be read keeps the previous branding.
func applyReload(engine *reporting.ReportEngine, cfg *config.Config) {
	branding, err := cfg.Branding()
	if err != nil {
		log.Error().Err(err).Msg("Keeping previous branding after reload")
	} else {
		engine.SetBranding(branding)
	}
	engine.SetStyle(reporting.Style{SafeMarginThreshold: cfg.SafeMarginThreshold})
	log.Info().
		Str("business", cfg.BusinessName).
		Float64("safe_margin", cfg.SafeMarginThreshold).
		Msg("Report settings reloaded")
}
