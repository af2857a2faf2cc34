package metrics

// Cache lookup results
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheShared = "shared"
)

// RecordCacheLookup records the result of a request cache lookup
func (m *Metrics) RecordCacheLookup(cache, result string) {
	m.safeExecute("RecordCacheLookup", func() {
		m.CacheRequestsTotal.WithLabelValues(cache, result).Inc()
	})
}

// SetCacheEntries sets the number of entries held by a cache
func (m *Metrics) SetCacheEntries(cache string, count int) {
	m.safeExecute("SetCacheEntries", func() {
		m.CacheEntries.WithLabelValues(cache).Set(float64(count))
	})
}
