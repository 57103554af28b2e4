package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/jsploader/pkg/metrics"
)

func TestRegisterMetrics(t *testing.T) {
	m := metrics.New()
	reg := prometheus.NewRegistry()
	m.RegisterMetrics(reg)

	m.ObserveMaterialisation(metrics.ResultUpdated)
	m.ObserveRewrite("include")
	m.ObserveLoad("stream", 10*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"jsploader_materialiser_materialisations_total",
		"jsploader_materialiser_rewrites_total",
		"jsploader_loader_loads_total",
		"jsploader_loader_load_duration_seconds",
	}, names)
}

func TestObserve(t *testing.T) {
	m := metrics.New()

	m.ObserveMaterialisation(metrics.ResultUpdated)
	m.ObserveMaterialisation(metrics.ResultUpdated)
	m.ObserveMaterialisation(metrics.ResultCurrent)
	m.ObserveRewrite("cms")
	m.ObserveLoad("bypass", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Materialisations.WithLabelValues(metrics.ResultUpdated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Materialisations.WithLabelValues(metrics.ResultCurrent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rewrites.WithLabelValues("cms")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("bypass")))
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveMaterialisation(metrics.ResultFailed)
		m.ObserveRewrite("page")
		m.ObserveLoad("dump", time.Millisecond)
	})
}
