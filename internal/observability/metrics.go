package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	checkInsTotal         *prometheus.CounterVec
	attendanceWritesTotal *prometheus.CounterVec
	storageFailuresTotal  *prometheus.CounterVec
	openSessionsGauge     prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the ledger service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"})

		checkInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_checkins_total",
			Help: "QR check-in attempts by outcome.",
		}, []string{"outcome"})

		attendanceWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_attendance_writes_total",
			Help: "Attendance ledger commits by mode.",
		}, []string{"mode"})

		storageFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_storage_failures_total",
			Help: "Record store operations that failed.",
		}, []string{"operation"})

		openSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_qr_sessions_open",
			Help: "QR sessions still accepting scans at the last listing.",
		})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, checkInsTotal, attendanceWritesTotal, storageFailuresTotal, openSessionsGauge)
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

// CheckIns exposes the check-in outcome counter.
func CheckIns() *prometheus.CounterVec {
	RegisterMetrics()
	return checkInsTotal
}

// AttendanceWrites exposes the attendance commit counter.
func AttendanceWrites() *prometheus.CounterVec {
	RegisterMetrics()
	return attendanceWritesTotal
}

// StorageFailures exposes the storage failure counter.
func StorageFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return storageFailuresTotal
}

// OpenSessions exposes the gauge of open QR sessions.
func OpenSessions() prometheus.Gauge {
	RegisterMetrics()
	return openSessionsGauge
}
