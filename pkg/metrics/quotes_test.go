package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestQuoteMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQuoteMetrics(reg)

	m.IncSubmitted("glass")
	m.IncSubmitted("glass")
	m.IncConversion("conflict")
	m.IncAssignment(true)
	m.IncAssignment(false)
	m.IncVINDecode("")

	if got := testutil.ToFloat64(m.submitted.WithLabelValues("glass")); got != 2 {
		t.Fatalf("expected 2 glass submissions, got %f", got)
	}
	if got := testutil.ToFloat64(m.conversions.WithLabelValues("conflict")); got != 1 {
		t.Fatalf("expected 1 conflict, got %f", got)
	}
	if got := testutil.ToFloat64(m.assignments.WithLabelValues("unmatched")); got != 1 {
		t.Fatalf("expected 1 unmatched assignment, got %f", got)
	}
	if got := testutil.ToFloat64(m.vinDecodes.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty label normalized to unknown, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	var q *QuoteMetrics
	q.IncSubmitted("glass")
	NewQuoteMetrics(nil).IncConversion("converted")
	NewNotificationMetrics(nil).IncOutcome("email", "sent")
	NewNotificationMetrics(nil).SetQueueDepth(3)
}

func TestNotificationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNotificationMetrics(reg)
	m.IncOutcome("sms", "dropped")
	m.SetQueueDepth(7)

	if got := testutil.ToFloat64(m.outcomes.WithLabelValues("sms", "dropped")); got != 1 {
		t.Fatalf("expected 1 dropped sms, got %f", got)
	}
	if got := testutil.ToFloat64(m.depth); got != 7 {
		t.Fatalf("expected depth 7, got %f", got)
	}
}
