package observability

import (
	"bytes"
	"strings"
	"testing"
)

// TestMetrics_Usable verifies all metrics can be used without panic, so label
// dimensions match usage in the client and report packages.
func TestMetrics_Usable(t *testing.T) {
	APICallsTotal.WithLabelValues("catalog", "success").Inc()
	APICallsTotal.WithLabelValues("latest_day_data", "client_error").Inc()
	APICallDuration.WithLabelValues("stations").Observe(0.1)
	StationsSkippedTotal.WithLabelValues("stale").Inc()
	StationsSkippedTotal.WithLabelValues("no_data").Inc()
	StationsSkippedTotal.WithLabelValues("bad_value").Inc()
	StationsExaminedTotal.Inc()
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "success"},
		{204, "success"},
		{404, "client_error"},
		{500, "server_error"},
		{0, "error"},
	}
	for _, tt := range tests {
		if got := StatusLabel(tt.code); got != tt.want {
			t.Errorf("StatusLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// TestWriteMetrics verifies the text exposition dump includes the registered
// metric families.
func TestWriteMetrics(t *testing.T) {
	APICallsTotal.WithLabelValues("root", "success").Inc()

	var buf bytes.Buffer
	if err := WriteMetrics(&buf); err != nil {
		t.Fatalf("WriteMetrics() error = %v", err)
	}
	if !strings.Contains(buf.String(), "smhiApiCallsTotal") {
		t.Error("WriteMetrics() output should contain smhiApiCallsTotal")
	}
}
