package observability

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	registry *prometheus.Registry

	// SMHI API call rate per endpoint. Watch for: error vs success ratio.
	APICallsTotal *prometheus.CounterVec

	// SMHI API latency per call. Watch for: slow upstream dominating run time.
	APICallDuration *prometheus.HistogramVec

	// Stations dropped from the extremes scan, by reason (stale, no_data, bad_value).
	StationsSkippedTotal *prometheus.CounterVec

	// Stations considered by the extremes scan.
	StationsExaminedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	APICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smhiApiCallsTotal",
			Help: "Total SMHI metobs API calls by endpoint and status class.",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smhiApiCallDurationSeconds",
			Help:    "SMHI metobs API call latency in seconds by endpoint.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	StationsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stationsSkippedTotal",
			Help: "Stations excluded from the temperature extremes scan, by reason.",
		},
		[]string{"reason"},
	)

	StationsExaminedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stationsExaminedTotal",
			Help: "Stations examined by the temperature extremes scan.",
		},
	)

	registry.MustRegister(
		APICallsTotal,
		APICallDuration,
		StationsSkippedTotal,
		StationsExaminedTotal,
	)
}

// StatusLabel maps an HTTP status code to the label used on APICallsTotal.
func StatusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "error"
	}
}

// WriteMetrics writes the collected metrics in Prometheus text exposition
// format. A one-shot CLI has no scrape endpoint, so the dump replaces the
// usual /metrics handler.
func WriteMetrics(w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
