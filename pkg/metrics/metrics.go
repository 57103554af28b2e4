// Package metrics holds the prometheus collectors exposed by the loader.
// All observation helpers accept a nil *Metrics so callers can run without
// instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "jsploader"

	materialiserSubsystem = "materialiser"
	loaderSubsystem       = "loader"
)

// Materialisation results
const (
	ResultUpdated = "updated"
	ResultCurrent = "current"
	ResultFailed  = "failed"
)

// Metrics groups the loader collectors
type Metrics struct {
	// Materialisations counts materialiser visits by result
	Materialisations *prometheus.CounterVec

	// Rewrites counts directives rewritten by form
	Rewrites *prometheus.CounterVec

	// Loads counts delivered requests by mode
	Loads *prometheus.CounterVec

	// LoadDuration observes delivery latency by mode
	LoadDuration *prometheus.HistogramVec
}

// New creates an unregistered set of collectors
func New() *Metrics {
	return &Metrics{
		Materialisations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: materialiserSubsystem,
				Name:      "materialisations_total",
				Help:      "Total number of templates visited by the materialiser.",
			},
			[]string{"result"},
		),
		Rewrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: materialiserSubsystem,
				Name:      "rewrites_total",
				Help:      "Total number of directives pointed at materialised templates.",
			},
			[]string{"form"},
		),
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: loaderSubsystem,
				Name:      "loads_total",
				Help:      "Total number of requests delivered by the loader.",
			},
			[]string{"mode"},
		),
		LoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: loaderSubsystem,
				Name:      "load_duration_seconds",
				Help:      "Time spent delivering a request.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}
}

// RegisterMetrics registers all collectors with reg
func (m *Metrics) RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(m.Materialisations)
	reg.MustRegister(m.Rewrites)
	reg.MustRegister(m.Loads)
	reg.MustRegister(m.LoadDuration)
}

// ObserveMaterialisation counts one materialiser visit
func (m *Metrics) ObserveMaterialisation(result string) {
	if m == nil {
		return
	}
	m.Materialisations.WithLabelValues(result).Inc()
}

// ObserveRewrite counts one rewritten directive
func (m *Metrics) ObserveRewrite(form string) {
	if m == nil {
		return
	}
	m.Rewrites.WithLabelValues(form).Inc()
}

// ObserveLoad counts one delivery and its duration
func (m *Metrics) ObserveLoad(mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(mode).Inc()
	m.LoadDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}
