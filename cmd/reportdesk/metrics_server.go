package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/sriamman/reportdesk/internal/config"
)

const metricsShutdownTimeout = 5 * time.Second

// metricsServer exposes the default Prometheus registry on its own listener,
// separate from the report API.
type metricsServer struct {
	srv  *http.Server
	addr net.Addr
	done chan struct{}
}

// startMetricsServer binds cfg.MetricsAddr before returning, so a port that
// is already taken fails the caller instead of a background goroutine. The
// server stops when ctx is cancelled.
func startMetricsServer(ctx context.Context, cfg *config.Config) (*metricsServer, error) {
	ln, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener on %s: %w", cfg.MetricsAddr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			Timeout: cfg.MetricsWriteTimeout,
		}),
	))

	ms := &metricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: cfg.MetricsReadTimeout,
			ReadTimeout:       cfg.MetricsReadTimeout,
			WriteTimeout:      cfg.MetricsWriteTimeout,
			IdleTimeout:       30 * time.Second,
		},
		addr: ln.Addr(),
		done: make(chan struct{}),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := ms.srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down metrics server cleanly")
		}
	}()

	go func() {
		defer close(ms.done)
		log.Info().Str("addr", ms.addr.String()).Msg("Metrics endpoint listening")
		if err := ms.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server stopped unexpectedly")
		}
	}()

	return ms, nil
}

// Addr is the bound address, with the real port when ":0" was configured.
func (ms *metricsServer) Addr() string {
	return ms.addr.String()
}

// Done is closed once the server has stopped serving.
func (ms *metricsServer) Done() <-chan struct{} {
	return ms.done
}
