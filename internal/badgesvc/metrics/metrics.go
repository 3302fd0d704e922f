package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the badge service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Movements appended by direction
	MovementsRecorded *prometheus.CounterVec

	// Alternator latency, lock wait included
	ReportLatency prometheus.Histogram

	UsersRegistered   prometheus.Counter
	UsersDeregistered prometheus.Counter

	// Bulk deletes by table
	BulkClears *prometheus.CounterVec
}

// New registers the badge service metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MovementsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "badge_movements_recorded_total",
			Help: "Total movements appended to the log by direction",
		}, []string{"direction"}),

		ReportLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "badge_movement_report_duration_seconds",
			Help:    "Duration of a movement report including the per-badge lock",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "badge_users_registered_total",
			Help: "Total badge registrations created",
		}),

		UsersDeregistered: f.NewCounter(prometheus.CounterOpts{
			Name: "badge_users_deregistered_total",
			Help: "Total badge registrations deleted by badge_id",
		}),

		BulkClears: f.NewCounterVec(prometheus.CounterOpts{
			Name: "badge_bulk_clears_total",
			Help: "Total bulk deletes by table",
		}, []string{"table"}), // table: "users", "movements"
	}
}

func (m *Metrics) IncrementMovement(direction string) {
	if m != nil {
		m.MovementsRecorded.WithLabelValues(direction).Inc()
	}
}

func (m *Metrics) ObserveReportLatency(d time.Duration) {
	if m != nil {
		m.ReportLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) AddUsersDeregistered(n int64) {
	if m != nil && n > 0 {
		m.UsersDeregistered.Add(float64(n))
	}
}

func (m *Metrics) IncrementBulkClear(table string) {
	if m != nil {
		m.BulkClears.WithLabelValues(table).Inc()
	}
}
