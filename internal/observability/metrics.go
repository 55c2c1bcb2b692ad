package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "house_energy"

// Metrics holds the Prometheus counters and histograms for reports, the
// narrator, the API and seeding.
type Metrics struct {
	ReportsGenerated prometheus.Counter
	ReportsFailed    *prometheus.CounterVec // labels: reason={missing_data,load,narrate,publish,write}
	ReportDuration   prometheus.Histogram

	// Narrative generation metrics.
	NarrativeRequests *prometheus.CounterVec // labels: outcome={success,error}
	NarrativeDuration prometheus.Histogram

	ReportsPublished *prometheus.CounterVec // labels: sink={kafka,influxdb}, outcome={success,error}

	APIRequests *prometheus.CounterVec // labels: route, status

	ReadingsSeeded prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsGenerated,
		m.ReportsFailed,
		m.ReportDuration,
		m.NarrativeRequests,
		m.NarrativeDuration,
		m.ReportsPublished,
		m.APIRequests,
		m.ReadingsSeeded,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Total daily reports built successfully.",
		}),
		ReportsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_failed_total",
			Help:      "Daily report failures by stage.",
		}, []string{"reason"}),
		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Duration of a complete load-summarize-narrate-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		NarrativeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrative_requests_total",
			Help:      "Narrative generation requests by outcome.",
		}, []string{"outcome"}),
		NarrativeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "narrative_duration_seconds",
			Help:      "Model request duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Report publications by sink and outcome.",
		}, []string{"sink", "outcome"}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "status"}),
		ReadingsSeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_seeded_total",
			Help:      "Total meter readings inserted by the seeder.",
		}),
	}
}
