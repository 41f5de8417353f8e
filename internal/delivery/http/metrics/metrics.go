// Package metrics collects and exposes Prometheus metrics for the HTTP
// delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GateDecision labels the outcome of one auth gate evaluation.
type GateDecision string

const (
	GateDecisionPass              GateDecision = "pass"
	GateDecisionMarkerPass        GateDecision = "marker_pass"
	GateDecisionRedirectSignIn    GateDecision = "redirect_signin"
	GateDecisionRedirectDashboard GateDecision = "redirect_dashboard"
	GateDecisionLoopBreach        GateDecision = "loop_breach"
)

// Collector records delivery-level metrics.
type Collector struct {
	gateDecisions *prometheus.CounterVec
	rateLimited   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daysoff_auth_gate_decisions_total",
			Help: "Auth gate outcomes by decision",
		}, []string{"decision"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daysoff_auth_rate_limited_total",
			Help: "Requests rejected by the auth route rate limiter",
		}),
	}

	reg.MustRegister(
		c.gateDecisions,
		c.rateLimited,
	)

	return c
}

// NewDefaultCollector registers on the default Prometheus registry.
func NewDefaultCollector() *Collector {
	return NewCollector(prometheus.DefaultRegisterer)
}

// RecordGateDecision counts one auth gate outcome.
func (c *Collector) RecordGateDecision(decision GateDecision) {
	c.gateDecisions.WithLabelValues(string(decision)).Inc()
}

// RecordRateLimited counts one rejected auth request.
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler returns the Prometheus scrape handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
