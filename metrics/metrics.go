// Package metrics exposes prometheus instrumentation for the fetch
// pipeline and the suggestion cache.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type collector struct {
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CacheRequests *prometheus.CounterVec
	CacheHitRatio *prometheus.GaugeVec

	FetchRequests *prometheus.CounterVec
	FetchLatency  *prometheus.HistogramVec
	StaleDropped  *prometheus.CounterVec
	Retries       *prometheus.CounterVec
}

var (
	globalCollector *collector
	collectorOnce   sync.Once
)

func getCollector() *collector {
	collectorOnce.Do(func() {
		globalCollector = &collector{
			CacheHits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherdesk_cache_hits_total",
					Help: "The total number of cache hits",
				},
				[]string{"cache_type"},
			),
			CacheMisses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherdesk_cache_misses_total",
					Help: "The total number of cache misses",
				},
				[]string{"cache_type"},
			),
			CacheRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherdesk_cache_requests_total",
					Help: "The total number of cache requests",
				},
				[]string{"cache_type"},
			),
			CacheHitRatio: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "weatherdesk_cache_hit_ratio",
					Help: "Cache hit ratio (hits/total requests)",
				},
				[]string{"cache_type"},
			),
			FetchRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherdesk_fetch_requests_total",
					Help: "Fetch pipeline operations by outcome",
				},
				[]string{"operation", "outcome"},
			),
			FetchLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "weatherdesk_fetch_duration_seconds",
					Help:    "Fetch pipeline operation duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"operation"},
			),
			StaleDropped: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherdesk_stale_completions_dropped_total",
					Help: "Completions discarded because a newer request superseded them",
				},
				[]string{"operation"},
			),
			Retries: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherdesk_fetch_retries_total",
					Help: "Retries of transient provider failures",
				},
				[]string{"operation"},
			),
		}
	})
	return globalCollector
}

// CacheMetrics tracks hit/miss counts for one cache backend.
type CacheMetrics struct {
	cacheType string
	hits      int64
	misses    int64
	total     int64
	collector *collector
	mu        sync.RWMutex
}

func NewCacheMetrics(cacheType string) *CacheMetrics {
	return &CacheMetrics{
		cacheType: cacheType,
		collector: getCollector(),
	}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.total++
	m.collector.CacheHits.WithLabelValues(m.cacheType).Inc()
	m.collector.CacheRequests.WithLabelValues(m.cacheType).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.total++
	m.collector.CacheMisses.WithLabelValues(m.cacheType).Inc()
	m.collector.CacheRequests.WithLabelValues(m.cacheType).Inc()
	m.updateHitRatio()
}

// updateHitRatio updates the Prometheus hit ratio gauge.
// Must be called while holding the mutex.
func (m *CacheMetrics) updateHitRatio() {
	if m.total > 0 {
		ratio := float64(m.hits) / float64(m.total)
		m.collector.CacheHitRatio.WithLabelValues(m.cacheType).Set(ratio)
	}
}

func (m *CacheMetrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hitRatio float64
	if m.total > 0 {
		hitRatio = float64(m.hits) / float64(m.total)
	}

	return map[string]interface{}{
		"cache_type": m.cacheType,
		"hits":       m.hits,
		"misses":     m.misses,
		"total":      m.total,
		"hit_ratio":  hitRatio,
	}
}

// FetchMetrics tracks pipeline operation outcomes.
type FetchMetrics struct {
	collector *collector
}

func NewFetchMetrics() *FetchMetrics {
	return &FetchMetrics{collector: getCollector()}
}

func (m *FetchMetrics) RecordOutcome(operation, outcome string) {
	m.collector.FetchRequests.WithLabelValues(operation, outcome).Inc()
}

func (m *FetchMetrics) RecordLatency(operation string, seconds float64) {
	m.collector.FetchLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *FetchMetrics) RecordStaleDrop(operation string) {
	m.collector.StaleDropped.WithLabelValues(operation).Inc()
}

func (m *FetchMetrics) RecordRetry(operation string) {
	m.collector.Retries.WithLabelValues(operation).Inc()
}
