package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Report generation metrics
	ReportsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportdesk_reports_generated_total",
			Help: "Total number of report generations by kind, format and outcome",
		},
		[]string{"kind", "format", "status"},
	)

	ReportGenerationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportdesk_report_generation_seconds",
			Help:    "Time spent laying out and serializing a report",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind", "format"},
	)

	ReportPages = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportdesk_report_pages",
			Help:    "Page count of generated PDF reports",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"kind"},
	)

	// Upstream reports API metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportdesk_upstream_requests_total",
			Help: "Total number of reports API requests by endpoint and status",
		},
		[]string{"endpoint", "status"}, // status is the HTTP code, or "error" when no response arrived
	)
)

// RecordReportGenerated records a finished generation attempt. pages is
// ignored for failures and for formats without pages.
func RecordReportGenerated(kind, format string, duration time.Duration, pages int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ReportsGeneratedTotal.WithLabelValues(kind, format, status).Inc()
	ReportGenerationSeconds.WithLabelValues(kind, format).Observe(duration.Seconds())
	if err == nil && pages > 0 {
		ReportPages.WithLabelValues(kind).Observe(float64(pages))
	}
}

// RecordUpstreamRequest records one call to the reports API. A zero status
// means the request failed before a response arrived.
func RecordUpstreamRequest(endpoint string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequestsTotal.WithLabelValues(endpoint, label).Inc()
}
