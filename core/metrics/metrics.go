package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "postcard"

// Recorder holds the reconciliation collectors.
type Recorder struct {
	cycles     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	fieldTypes *prometheus.CounterVec
	conflicts  prometheus.Counter
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_cycles_total",
			Help:      "Reconciliation cycles by direction and outcome.",
		}, []string{"direction", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation cycles.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction"}),
		fieldTypes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_type_errors_total",
			Help:      "Remote values skipped because they could not be converted.",
		}, []string{"key"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_conflicts_total",
			Help:      "Both-direction fields that diverged on a record with local edits.",
		}),
	}

	for _, c := range []prometheus.Collector{r.cycles, r.duration, r.fieldTypes, r.conflicts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveCycle records one finished cycle.
func (r *Recorder) ObserveCycle(direction, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.cycles.WithLabelValues(direction, outcome).Inc()
	r.duration.WithLabelValues(direction).Observe(elapsed.Seconds())
}

// FieldTypeError records a skipped remote value.
func (r *Recorder) FieldTypeError(key string) {
	if r == nil {
		return
	}
	r.fieldTypes.WithLabelValues(key).Inc()
}

// Conflicts records n diverged fields.
func (r *Recorder) Conflicts(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.conflicts.Add(float64(n))
}
