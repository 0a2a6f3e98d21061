package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New()

	require.NoError(t, m.Register(registry))
	// Registering the same collectors twice fails
	assert.Error(t, m.Register(registry))
}

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveQuery("athena", true)
	m.ObserveQuery("athena", false)
	m.ObserveQuery("sqlite", true)
	m.ObservePlan("multi_year", 3)
	m.ObserveCache(CacheHit)
	m.ObserveCache(CacheMiss)
	m.ObserveCache(CacheMiss)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.QueriesGenerated.WithLabelValues("athena")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.DateFilter.WithLabelValues("true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DateFilter.WithLabelValues("false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PlanShape.WithLabelValues("multi_year")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.PlanCache.WithLabelValues(CacheMiss)))
}

func TestPlanFiltersExposition(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New()
	require.NoError(t, m.Register(registry))

	m.ObservePlan("single_month", 2)

	expected := `
# HELP athenaq_plan_filters Number of partition filters per plan.
# TYPE athenaq_plan_filters histogram
athenaq_plan_filters_bucket{le="1"} 0
athenaq_plan_filters_bucket{le="2"} 1
athenaq_plan_filters_bucket{le="3"} 1
athenaq_plan_filters_bucket{le="4"} 1
athenaq_plan_filters_bucket{le="5"} 1
athenaq_plan_filters_bucket{le="8"} 1
athenaq_plan_filters_bucket{le="12"} 1
athenaq_plan_filters_bucket{le="20"} 1
athenaq_plan_filters_bucket{le="+Inf"} 1
athenaq_plan_filters_sum 2
athenaq_plan_filters_count 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "athenaq_plan_filters"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveQuery("athena", true)
		m.ObservePlan("multi_month", 4)
		m.ObserveCache(CacheHit)
	})
}
