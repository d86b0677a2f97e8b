package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	ComplaintsCreated = prometheus.NewCounter(prometheus.CounterOpts{Name: "complaints_created_total", Help: "Complaints created"})
	Escalations       = prometheus.NewCounter(prometheus.CounterOpts{Name: "complaints_escalated_total", Help: "Complaints escalated by the escalation sweep"})
	OverdueFlagged    = prometheus.NewCounter(prometheus.CounterOpts{Name: "complaints_overdue_total", Help: "Complaints flagged overdue by the SLA sweep"})
	RemindersSent     = prometheus.NewCounter(prometheus.CounterOpts{Name: "complaint_reminders_total", Help: "Deadline reminders emitted"})
	SweepFailures     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "sweep_failures_total", Help: "Per-item sweep failures"}, []string{"sweep"})
	HTTPRequests      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests served"}, []string{"method", "path", "status"})
)

// MetricsHandler exposes the /metrics HTTP handler with a singleton registry.
func MetricsHandler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			ComplaintsCreated,
			Escalations,
			OverdueFlagged,
			RemindersSent,
			SweepFailures,
			HTTPRequests,
		)
	})
	return promhttp.Handler()
}
