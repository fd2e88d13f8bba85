package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nutridiary",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutridiary",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nutridiary",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	diaryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutridiary",
			Subsystem: "diary",
			Name:      "operations_total",
			Help:      "Diary store operations by outcome.",
		},
		[]string{"op", "status"},
	)

	authStatePublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nutridiary",
			Subsystem: "auth",
			Name:      "state_publishes_total",
			Help:      "Auth state values published, by resulting state.",
		},
		[]string{"state"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		diaryOps,
		authStatePublishes,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordDiaryOp counts one diary store call.
func RecordDiaryOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	diaryOps.WithLabelValues(op, status).Inc()
}

// RecordAuthState counts one published auth state, e.g. "logged_out".
func RecordAuthState(state string) {
	authStatePublishes.WithLabelValues(state).Inc()
}

// ObserveRequest records one finished HTTP request. path must be the route
// template, not the raw URL, to keep label cardinality bounded.
func ObserveRequest(method, path string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func RequestStarted()  { httpInFlight.Inc() }
func RequestFinished() { httpInFlight.Dec() }
