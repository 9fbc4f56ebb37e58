package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	analysesTotal          *prometheus.CounterVec
	rejectedTotal          *prometheus.CounterVec
	maturityScores         *prometheus.HistogramVec
	clustersCurrent        prometheus.Gauge
	notificationsPublished *prometheus.CounterVec
	streamClientsActive    *prometheus.GaugeVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ideaforge",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ideaforge",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0, 30.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ideaforge",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ideaforge",
			Name:      "analyses_total",
			Help:      "Completed idea analyses by result source and tier.",
		}, []string{"source", "tier"})

		rejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ideaforge",
			Name:      "analyses_rejected_total",
			Help:      "Analyses that never reached scoring.",
		}, []string{"reason"})

		maturityScores = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ideaforge",
			Name:      "maturity_score",
			Help:      "Distribution of reconciled maturity scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}, []string{"tier"})

		clustersCurrent = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ideaforge",
			Name:      "idea_clusters",
			Help:      "Number of clusters in the latest rebuild.",
		})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ideaforge",
			Name:      "notifications_published_total",
			Help:      "Notifications delivered to local subscribers.",
		}, []string{"type"})

		streamClientsActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ideaforge",
			Name:      "notification_stream_clients",
			Help:      "Connected notification stream clients.",
		}, []string{"transport"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			analysesTotal, rejectedTotal, maturityScores, clustersCurrent,
			notificationsPublished, streamClientsActive,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Analyses counts finished analyses.
func Analyses() *prometheus.CounterVec {
	RegisterMetrics()
	return analysesTotal
}

// AnalysesRejected counts analyses stopped before scoring.
func AnalysesRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return rejectedTotal
}

// MaturityScores observes reconciled scores.
func MaturityScores() *prometheus.HistogramVec {
	RegisterMetrics()
	return maturityScores
}

// Clusters reports the size of the latest clustering.
func Clusters() prometheus.Gauge {
	RegisterMetrics()
	return clustersCurrent
}

// NotificationsPublishedTotal counts notifications fanned out to subscribers.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// StreamClientsActive tracks live SSE and websocket subscribers.
func StreamClientsActive() *prometheus.GaugeVec {
	RegisterMetrics()
	return streamClientsActive
}
