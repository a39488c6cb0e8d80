package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "decide2watch"

type Metrics struct {
	registry *prometheus.Registry

	started         *prometheus.CounterVec
	completed       prometheus.Counter
	failed          prometheus.Counter
	picks           prometheus.Counter
	catalogRequests *prometheus.CounterVec
}

// New registers every collector on a fresh registry so tests can build as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_started_total",
			Help:      "Tournaments that began loading, by content filter.",
		}, []string{"filter"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_completed_total",
			Help:      "Tournaments that reached a champion.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_failed_total",
			Help:      "Tournament loads that ended in an error.",
		}),
		picks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picks_total",
			Help:      "Matchup winners picked.",
		}),
		catalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "TMDB requests by endpoint and HTTP status, including cache hits.",
		}, []string{"endpoint", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.started,
		m.completed,
		m.failed,
		m.picks,
		m.catalogRequests,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) TournamentStarted(filter string) {
	m.started.WithLabelValues(filter).Inc()
}

func (m *Metrics) TournamentCompleted() {
	m.completed.Inc()
}

func (m *Metrics) TournamentFailed() {
	m.failed.Inc()
}

func (m *Metrics) Pick() {
	m.picks.Inc()
}

func (m *Metrics) ObserveCatalogRequest(endpoint, status string) {
	m.catalogRequests.WithLabelValues(endpoint, status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
