package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the API
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec   // method, route, status
	HTTPDuration      *prometheus.HistogramVec // method, route
	LoginAttempts     *prometheus.CounterVec   // result: success, invalid, suspended, throttled
	PhonesSold        *prometheus.CounterVec   // company
	PoolChanges       *prometheus.CounterVec   // operation: create, update, delete
	CommissionUpdates prometheus.Counter       // entries applied through batch edits
	ReportGeneration  *prometheus.HistogramVec // target: download, archive
}

// NewMetrics creates the API metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pointofsale_http_requests_total",
			Help: "Total number of HTTP requests handled",
		}, []string{"method", "route", "status"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pointofsale_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LoginAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pointofsale_login_attempts_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		PhonesSold: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pointofsale_phones_sold_total",
			Help: "Phones sold, by company",
		}, []string{"company"}),
		PoolChanges: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pointofsale_pool_changes_total",
			Help: "Pool create, update and delete operations",
		}, []string{"operation"}),
		CommissionUpdates: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pointofsale_commission_updates_total",
			Help: "Commission entries applied through batch edits",
		}),
		ReportGeneration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "pointofsale_report_generation_duration_seconds",
			Help: "Duration of sales report generation.",
		}, []string{"target"}),
	}
}

// current is registered on a private registry until main installs the real one
var current = NewMetrics(prometheus.NewRegistry())

// Get returns the process-wide metrics
func Get() *Metrics {
	return current
}

// Set replaces the process-wide metrics
func Set(m *Metrics) {
	current = m
}
