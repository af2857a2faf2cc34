package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SizeFunc reports the current number of entries of a cache
type SizeFunc func() int

// Collector periodically samples gauges that are not updated inline:
// session store pool stats, session row count and cache sizes.
type Collector struct {
	db       *gorm.DB
	table    string
	caches   map[string]SizeFunc
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration

	started  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
	stopped  chan struct{}
}

// NewCollector creates a new collector. db may be nil when the session store is not database backed.
func NewCollector(db *gorm.DB, table string, metrics *Metrics, logger *zap.Logger, interval time.Duration) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Collector{
		db:       db,
		table:    table,
		caches:   make(map[string]SizeFunc),
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// TrackCache registers a cache whose size is sampled on each tick. Call before Start.
func (c *Collector) TrackCache(name string, size SizeFunc) {
	c.caches[name] = size
}

// Start begins collecting metrics
func (c *Collector) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.stopped)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector and waits for the collection goroutine to exit
func (c *Collector) Stop() {
	if !c.started.Load() {
		return
	}
	c.stopOnce.Do(func() {
		close(c.done)
	})
	<-c.stopped
}

func (c *Collector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in metrics collection", zap.Any("panic", r))
		}
	}()

	for name, size := range c.caches {
		c.metrics.SetCacheEntries(name, size())
	}

	if c.db == nil {
		return
	}

	if sqlDB, err := c.db.DB(); err == nil {
		c.metrics.UpdateDBStats(sqlDB.Stats())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int64
	if err := c.db.WithContext(ctx).Table(c.table).Count(&count).Error; err != nil {
		c.logger.Warn("Failed to count session rows", zap.Error(err))
		return
	}
	c.metrics.SetSessionStoreEntries(count)
}
