package metrics

import "github.com/prometheus/client_golang/prometheus"

// QuoteMetrics tracks the intake and conversion flow.
type QuoteMetrics struct {
	submitted   *prometheus.CounterVec
	vinDecodes  *prometheus.CounterVec
	conversions *prometheus.CounterVec
	assignments *prometheus.CounterVec
}

// NewQuoteMetrics registers quote metrics on reg. A nil registerer yields a no-op recorder.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	m := &QuoteMetrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_submitted_total",
			Help:      "Quote submissions persisted, by division.",
		}, []string{"division"}),
		vinDecodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vin_decodes_total",
			Help:      "VIN decode attempts during intake, by result.",
		}, []string{"result"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_conversions_total",
			Help:      "Quote-to-job conversion attempts, by outcome.",
		}, []string{"outcome"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "technician_assignments_total",
			Help:      "Technician auto-assignment results on conversion.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.submitted, m.vinDecodes, m.conversions, m.assignments)
	return m
}

func (m *QuoteMetrics) IncSubmitted(division string) {
	if m == nil || m.submitted == nil {
		return
	}
	m.submitted.WithLabelValues(normalizeLabel(division)).Inc()
}

// IncVINDecode records "decoded", "failed", or "skipped".
func (m *QuoteMetrics) IncVINDecode(result string) {
	if m == nil || m.vinDecodes == nil {
		return
	}
	m.vinDecodes.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncConversion records "converted", "conflict", "not_found", or "error".
func (m *QuoteMetrics) IncConversion(outcome string) {
	if m == nil || m.conversions == nil {
		return
	}
	m.conversions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *QuoteMetrics) IncAssignment(matched bool) {
	if m == nil || m.assignments == nil {
		return
	}
	result := "unmatched"
	if matched {
		result = "matched"
	}
	m.assignments.WithLabelValues(result).Inc()
}
