// Package metrics exposes rate-limit decisions as Prometheus counters, so
// fail-open degradation is an explicit, graphable signal instead of a
// silent side effect.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements tokengate.Recorder on Prometheus counters, labeled by
// policy key prefix so tiers can be told apart.
type Recorder struct {
	allowed  *prometheus.CounterVec
	blocked  *prometheus.CounterVec
	degraded *prometheus.CounterVec
}

// NewRecorder registers the counters with reg and returns the recorder.
// Pass prometheus.DefaultRegisterer for the usual global registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		allowed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_requests_allowed_total",
			Help: "Requests allowed by the rate limiter.",
		}, []string{"policy"}),
		blocked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_requests_blocked_total",
			Help: "Requests blocked for exceeding their quota.",
		}, []string{"policy"}),
		degraded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tokengate_requests_degraded_total",
			Help: "Requests allowed without accounting because the store failed (fail-open).",
		}, []string{"policy"}),
	}
}

// Allowed counts an enforced, non-blocked decision.
func (r *Recorder) Allowed(policy string) {
	r.allowed.WithLabelValues(policy).Inc()
}

// Blocked counts an enforced, blocked decision.
func (r *Recorder) Blocked(policy string) {
	r.blocked.WithLabelValues(policy).Inc()
}

// Degraded counts a fail-open decision taken on store failure.
func (r *Recorder) Degraded(policy string) {
	r.degraded.WithLabelValues(policy).Inc()
}
