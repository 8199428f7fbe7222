package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Favorites
	favoriteTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorite_toggles_total",
			Help: "Favorite toggles by action (save/unsave) and outcome (ok/rolled_back/discarded)",
		},
		[]string{"action", "outcome"},
	)

	favoriteToggleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "favorite_toggle_duration_seconds",
			Help:    "Time from toggle request to settlement, including lock wait",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	danglingOmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saved_view_dangling_omitted_total",
			Help: "Saved relations skipped because their event no longer exists",
		},
	)

	danglingRelations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "saved_relations_dangling",
			Help: "Dangling saved relations found by the last audit run",
		},
	)

	auditRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saved_relations_audit_runs_total",
			Help: "Audit job runs by result",
		},
		[]string{"result"},
	)

	// Dependency health metrics
	dependencyHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_health",
			Help: "Health status of dependencies (1 = healthy, 0 = unhealthy)",
		},
		[]string{"dependency"},
	)
)

func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func RecordToggle(action, outcome string, duration time.Duration) {
	favoriteTogglesTotal.WithLabelValues(action, outcome).Inc()
	favoriteToggleDuration.WithLabelValues(action).Observe(duration.Seconds())
}

func RecordDanglingOmitted(n int) {
	if n > 0 {
		danglingOmittedTotal.Add(float64(n))
	}
}

func RecordAudit(dangling int, err error) {
	if err != nil {
		auditRunsTotal.WithLabelValues("error").Inc()
		return
	}
	auditRunsTotal.WithLabelValues("ok").Inc()
	danglingRelations.Set(float64(dangling))
}

func SetDependencyHealth(dependency string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	dependencyHealth.WithLabelValues(dependency).Set(v)
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
