package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the control plane.
type Metrics struct {
	RecordsCreated        prometheus.Counter
	RecordsDeleted        prometheus.Counter
	ShareRequestsCreated  prometheus.Counter
	ShareRequestsApproved prometheus.Counter
	ShareRequestsRejected prometheus.Counter
	ShareRequestsExpired  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RecordsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "phr_records_created_total",
			Help: "Total number of health records created",
		}),
		RecordsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "phr_records_deleted_total",
			Help: "Total number of health records deleted",
		}),
		ShareRequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "phr_share_requests_created_total",
			Help: "Total number of share requests created",
		}),
		ShareRequestsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "phr_share_requests_approved_total",
			Help: "Total number of share requests approved",
		}),
		ShareRequestsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "phr_share_requests_rejected_total",
			Help: "Total number of share requests rejected",
		}),
		ShareRequestsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "phr_share_requests_expired_total",
			Help: "Total number of share requests observed expired",
		}),
	}
}
