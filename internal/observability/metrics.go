// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Stats metrics
	StatsComputations       prometheus.Counter
	StatsComputeDuration    prometheus.Histogram
	LeaderboardComputations prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Announcement metrics
	AnnouncementsTotal    *prometheus.CounterVec
	NotificationsInserted prometheus.Counter
	PushDeliveries        *prometheus.CounterVec

	// Change feed metrics
	FeedEventsReceived *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastStatsCompute prometheus.Gauge
	UptimeSeconds    prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fitmetrics"
	}

	return &Metrics{
		// Stats metrics
		StatsComputations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "computations_total",
			Help:      "Total number of dashboard stats computations",
		}),
		StatsComputeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "compute_duration_seconds",
			Help:      "Dashboard stats computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LeaderboardComputations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "computations_total",
			Help:      "Total number of leaderboard computations",
		}),

		// Cache metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of stats cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of stats cache misses",
		}),

		// Announcement metrics
		AnnouncementsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "announce",
			Name:      "runs_total",
			Help:      "Total number of announcement runs by status",
		}, []string{"status"}),
		NotificationsInserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "announce",
			Name:      "notifications_inserted_total",
			Help:      "Total number of notification records inserted",
		}),
		PushDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "deliveries_total",
			Help:      "Total number of push deliveries by status",
		}, []string{"status"}),

		// Change feed metrics
		FeedEventsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "feed_events_total",
			Help:      "Total number of change feed events by table",
		}, []string{"table"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastStatsCompute: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_stats_compute_timestamp",
			Help:      "Unix timestamp of last successful stats computation",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordStatsCompute records a dashboard stats computation.
func RecordStatsCompute(seconds float64) {
	DefaultMetrics.StatsComputations.Inc()
	DefaultMetrics.StatsComputeDuration.Observe(seconds)
	DefaultMetrics.LastStatsCompute.SetToCurrentTime()
}

// RecordLeaderboardCompute increments the leaderboard computations counter.
func RecordLeaderboardCompute() {
	DefaultMetrics.LeaderboardComputations.Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	DefaultMetrics.CacheMisses.Inc()
}

// RecordAnnouncement records an announcement run outcome.
func RecordAnnouncement(status string) {
	DefaultMetrics.AnnouncementsTotal.WithLabelValues(status).Inc()
}

// RecordNotificationsInserted adds to the inserted notifications counter.
func RecordNotificationsInserted(n int) {
	DefaultMetrics.NotificationsInserted.Add(float64(n))
}

// RecordPushDelivery records a push delivery outcome.
func RecordPushDelivery(success bool) {
	status := "ok"
	if !success {
		status = "failed"
	}
	DefaultMetrics.PushDeliveries.WithLabelValues(status).Inc()
}

// RecordFeedEvent records a change feed event.
func RecordFeedEvent(table string) {
	DefaultMetrics.FeedEventsReceived.WithLabelValues(table).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
