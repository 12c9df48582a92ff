package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sriamman/reportdesk/pkg/reporting"
)

// kindNone labels requests that are not for a known report kind.
const kindNone = "none"

var (
	httpMetricsOnce sync.Once

	apiRequestDuration *prometheus.HistogramVec
	apiRequestTotal    *prometheus.CounterVec
	apiResponseBytes   *prometheus.HistogramVec
)

func initHTTPMetrics() {
	// A large customer breakdown takes several seconds to lay out.
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reportdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time to answer an HTTP request, including upstream fetch and layout.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route", "kind"},
	)

	apiRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reportdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, report kind and status class.",
		},
		[]string{"method", "route", "kind", "status_class"},
	)

	apiResponseBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reportdesk",
			Subsystem: "http",
			Name:      "response_bytes",
			Help:      "Size of successful report downloads.",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 8), // 4 KiB .. 64 MiB
		},
		[]string{"kind"},
	)

	prometheus.MustRegister(apiRequestDuration, apiRequestTotal, apiResponseBytes)
}

// requestSample is what the middleware knows about a finished request.
type requestSample struct {
	method  string
	route   string
	kind    string
	status  int
	bytes   int
	elapsed time.Duration
}

// sampleRequest collects the labels for r once routing has run. The kind
// comes from the {kind} route parameter and is only kept when it names a
// report, so a client probing paths cannot grow the label set.
func sampleRequest(r *http.Request, rw *responseWriter, elapsed time.Duration) requestSample {
	s := requestSample{
		method:  r.Method,
		route:   "unmatched",
		kind:    kindNone,
		status:  rw.StatusCode(),
		bytes:   rw.bytes,
		elapsed: elapsed,
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			s.route = pattern
		}
		if kind, err := reporting.ParseKind(rctx.URLParam("kind")); err == nil {
			s.kind = string(kind)
		}
	}
	return s
}

func recordAPIRequest(s requestSample) {
	httpMetricsOnce.Do(initHTTPMetrics)

	apiRequestDuration.WithLabelValues(s.method, s.route, s.kind).Observe(s.elapsed.Seconds())
	apiRequestTotal.WithLabelValues(s.method, s.route, s.kind, classifyStatus(s.status)).Inc()

	if s.kind != kindNone && s.status == http.StatusOK {
		apiResponseBytes.WithLabelValues(s.kind).Observe(float64(s.bytes))
	}
}

func classifyStatus(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	case status >= 200 && status < 300:
		return "success"
	default:
		return strconv.Itoa(status/100) + "xx"
	}
}
