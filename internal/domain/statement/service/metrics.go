package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes recorded on the imports counter.
const (
	OutcomeOK             = "ok"
	OutcomeEmpty          = "empty"
	OutcomeHeaderNotFound = "header_not_found"
	OutcomeUnsupported    = "unsupported"
	OutcomeSuperseded     = "superseded"
	OutcomeError          = "error"
)

// Metrics holds the import pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	imports          *prometheus.CounterVec
	rows             *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	insightsFailures prometheus.Counter
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		imports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement",
			Name:      "imports_total",
			Help:      "Statement imports by outcome.",
		}, []string{"outcome"}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statement",
			Name:      "rows_total",
			Help:      "Rows seen by the normalizer, by disposition.",
		}, []string{"disposition"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "statement",
			Name:      "parse_duration_seconds",
			Help:      "Time to read and normalize one file.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"shape"}),
		insightsFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "statement",
			Name:      "insights_failures_total",
			Help:      "Insight generations that failed and fell back to empty insights.",
		}),
	}
}

func (m *Metrics) observeImport(outcome string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeRows(disposition string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rows.WithLabelValues(disposition).Add(float64(n))
}

func (m *Metrics) observeParse(shape string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(shape).Observe(d.Seconds())
}

func (m *Metrics) observeInsightsFailure() {
	if m == nil {
		return
	}
	m.insightsFailures.Inc()
}
