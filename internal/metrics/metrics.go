package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "athenaq"

	dialectLabelName = "dialect"
	appliedLabelName = "applied"
	shapeLabelName   = "shape"
	resultLabelName  = "result"

	// CacheHit and CacheMiss are the plan cache result label values.
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds the collectors for query generation.
//
// All methods are safe on a nil *Metrics, so components can run without
// instrumentation.
type Metrics struct {
	QueriesGenerated *prometheus.CounterVec
	DateFilter       *prometheus.CounterVec
	PlanShape        *prometheus.CounterVec
	PlanFilters      prometheus.Histogram
	PlanCache        *prometheus.CounterVec
}

// New creates unregistered collectors.
func New() *Metrics {
	return &Metrics{
		QueriesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_generated_total",
				Help:      "Total number of SQL queries generated.",
			}, []string{
				dialectLabelName,
			}),
		DateFilter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "date_filter_total",
				Help:      "Generated queries by whether a partition date filter was attached.",
			}, []string{
				appliedLabelName,
			}),
		PlanShape: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_shape_total",
				Help:      "Partition plans by range shape.",
			}, []string{
				shapeLabelName,
			}),
		PlanFilters: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_filters",
				Help:      "Number of partition filters per plan.",
				Buckets:   []float64{1, 2, 3, 4, 5, 8, 12, 20},
			}),
		PlanCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_cache_total",
				Help:      "Plan cache lookups by result.",
			}, []string{
				resultLabelName,
			}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.QueriesGenerated,
		m.DateFilter,
		m.PlanShape,
		m.PlanFilters,
		m.PlanCache,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObservePlan records a partition plan's shape and size.
func (m *Metrics) ObservePlan(shape string, filters int) {
	if m == nil {
		return
	}
	m.PlanShape.WithLabelValues(shape).Inc()
	m.PlanFilters.Observe(float64(filters))
}

// ObserveQuery records a generated query.
func (m *Metrics) ObserveQuery(dialect string, dateFilterApplied bool) {
	if m == nil {
		return
	}
	m.QueriesGenerated.WithLabelValues(dialect).Inc()
	m.DateFilter.WithLabelValues(strconv.FormatBool(dateFilterApplied)).Inc()
}

// ObserveCache records a plan cache lookup; result is CacheHit or CacheMiss.
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.PlanCache.WithLabelValues(result).Inc()
}
