package server

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/roach88/athenaq/internal/metrics"
	"github.com/roach88/athenaq/internal/partition"
)

// PlanCache memoizes partition plans by date range. Plans depend only on
// their endpoints, so entries never go stale; the TTL only bounds memory
// held by ranges nobody asks for anymore.
type PlanCache struct {
	lru     *expirable.LRU[string, partition.FilterSet]
	metrics *metrics.Metrics
}

// NewPlanCache returns a cache holding up to size plans for ttl (0 keeps
// them until evicted). A size of 0 returns nil, which plans every request.
func NewPlanCache(size int, ttl time.Duration, m *metrics.Metrics) *PlanCache {
	if size <= 0 {
		return nil
	}
	return &PlanCache{
		lru:     expirable.NewLRU[string, partition.FilterSet](size, nil, ttl),
		metrics: m,
	}
}

// Plan returns the cached plan for [start, end] or computes and stores it.
// Invalid ranges are never cached.
func (c *PlanCache) Plan(start, end partition.Date) (partition.FilterSet, error) {
	if c == nil {
		return partition.Plan(start, end)
	}

	key := start.String() + "|" + end.String()
	if set, ok := c.lru.Get(key); ok {
		c.metrics.ObserveCache(metrics.CacheHit)
		return set, nil
	}
	c.metrics.ObserveCache(metrics.CacheMiss)

	set, err := partition.Plan(start, end)
	if err != nil {
		return partition.FilterSet{}, err
	}
	c.lru.Add(key, set)
	return set, nil
}

// Len reports the number of cached plans.
func (c *PlanCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
