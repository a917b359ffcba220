// Package metrics exposes Prometheus counters for item transactions,
// attendance scans and the overdue report.
package metrics

import (
	"net/http"

	"Gin_postgres_redis_qr_tracker/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "qr_tracker"

// Recorder is safe for concurrent use. A nil *Recorder records nothing.
type Recorder struct {
	transactions *prometheus.CounterVec
	attendance   *prometheus.CounterVec
	scans        *prometheus.CounterVec
	overdue      prometheus.Gauge
}

func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_transactions_total",
			Help:      "Item transactions by operation and outcome.",
		}, []string{"op", "outcome"}),
		attendance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attendance_scans_total",
			Help:      "Attendance toggles by resulting action and outcome.",
		}, []string{"action", "outcome"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Resolved scans by kind.",
		}, []string{"kind"}),
		overdue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overdue_items",
			Help:      "Unique items borrowed longer than the overdue threshold at the last report.",
		}),
	}
	reg.MustRegister(r.transactions, r.attendance, r.scans, r.overdue)
	return r
}

// Outcome is "ok" for nil and the error kind otherwise.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}

func (r *Recorder) Transaction(op string, err error) {
	if r == nil {
		return
	}
	r.transactions.WithLabelValues(op, Outcome(err)).Inc()
}

func (r *Recorder) Attendance(action string, err error) {
	if r == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	r.attendance.WithLabelValues(action, Outcome(err)).Inc()
}

func (r *Recorder) Scan(kind string) {
	if r == nil {
		return
	}
	r.scans.WithLabelValues(kind).Inc()
}

func (r *Recorder) Overdue(n int) {
	if r == nil {
		return
	}
	r.overdue.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
