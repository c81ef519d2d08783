package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the planner's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	resolutions    *prometheus.CounterVec
	engineRequests *prometheus.HistogramVec
	staleResults   prometheus.Counter
	cacheEvents    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "route_planner",
			Name:      "resolutions_total",
			Help:      "Route resolutions by request kind and result source.",
		}, []string{"kind", "source"}),
		engineRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "route_planner",
			Name:      "engine_request_duration_seconds",
			Help:      "Routing engine call latency by request kind and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "outcome"}),
		staleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "route_planner",
			Name:      "stale_resolutions_discarded_total",
			Help:      "Resolution results dropped because a newer plan superseded them.",
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "route_planner",
			Name:      "resolution_cache_events_total",
			Help:      "Resolution cache hits and misses.",
		}, []string{"event"}),
	}

	if reg != nil {
		reg.MustRegister(m.resolutions, m.engineRequests, m.staleResults, m.cacheEvents)
	}
	return m
}

func (m *Metrics) ObserveResolution(kind, source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(kind, source).Inc()
}

func (m *Metrics) ObserveEngine(kind string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.engineRequests.WithLabelValues(kind, outcome).Observe(dur.Seconds())
}

func (m *Metrics) StaleDiscarded() {
	if m == nil {
		return
	}
	m.staleResults.Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues("miss").Inc()
}
