package analyzer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for batch extraction.
//
// Metrics:
//   - placements_emails_processed_total - emails handed to the extractor
//   - placements_postings_total - postings emitted with valid data
//   - placements_emails_skipped_total{reason} - "no_company" or "no_data"
//   - placements_extract_failures_total - emails whose extraction failed
//   - placements_extract_duration_seconds - time spent per email
type Metrics struct {
	EmailsProcessed prometheus.Counter
	Postings        prometheus.Counter
	Skipped         *prometheus.CounterVec
	Failures        prometheus.Counter
	Duration        prometheus.Histogram
}

// NewMetrics creates the metrics and registers them on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EmailsProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "placements_emails_processed_total",
			Help: "Total number of emails handed to the extractor",
		}),
		Postings: f.NewCounter(prometheus.CounterOpts{
			Name: "placements_postings_total",
			Help: "Total number of job postings emitted",
		}),
		Skipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "placements_emails_skipped_total",
			Help: "Total number of emails that produced no posting",
		}, []string{"reason"}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "placements_extract_failures_total",
			Help: "Total number of emails whose extraction failed",
		}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "placements_extract_duration_seconds",
			Help:    "Time spent extracting a single email",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
	}
}

func (m *Metrics) recordProcessed(seconds float64) {
	if m == nil {
		return
	}
	m.EmailsProcessed.Inc()
	m.Duration.Observe(seconds)
}

func (m *Metrics) recordPosting() {
	if m != nil {
		m.Postings.Inc()
	}
}

func (m *Metrics) recordSkipped(reason string) {
	if m != nil {
		m.Skipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) recordFailure() {
	if m != nil {
		m.Failures.Inc()
	}
}
