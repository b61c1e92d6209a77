package reload

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Attempt results recorded in the result label.
const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultTimeout = "timeout"
)

// Metrics records reload attempts in Prometheus. One Metrics value can be
// shared by several reloaders; series are split by the reloader name.
type Metrics struct {
	attempts    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

// NewMetrics creates and registers the reload collectors with reg.
// A nil reg registers nothing, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reload",
			Name:      "attempts_total",
			Help:      "Resource load attempts by result.",
		}, []string{"resource", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reload",
			Name:      "duration_seconds",
			Help:      "Time spent waiting for resource load attempts.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10, 30},
		}, []string{"resource"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reload",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successfully published value.",
		}, []string{"resource"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.attempts, m.duration, m.lastSuccess} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observe(resource, result string, elapsed time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(resource, result).Inc()
	m.duration.WithLabelValues(resource).Observe(elapsed.Seconds())
	if result == resultSuccess {
		m.lastSuccess.WithLabelValues(resource).Set(float64(at.Unix()))
	}
}
