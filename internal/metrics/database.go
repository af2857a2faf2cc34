package metrics

import (
	"database/sql"
	"strings"
	"time"
)

// UpdateDBStats updates session store connection pool metrics.
// WaitCount and WaitDuration are cumulative in sql.DBStats, so only the
// growth since the previous call is added to the counters.
func (m *Metrics) UpdateDBStats(stats sql.DBStats) {
	m.safeExecute("UpdateDBStats", func() {
		m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		m.DBConnectionsInUse.Set(float64(stats.InUse))
		m.DBConnectionsIdle.Set(float64(stats.Idle))
		m.DBConnectionsMax.Set(float64(stats.MaxOpenConnections))

		m.dbStatsMu.Lock()
		defer m.dbStatsMu.Unlock()
		if d := stats.WaitCount - m.lastDBStats.WaitCount; d > 0 {
			m.DBConnectionWaitTotal.Add(float64(d))
		}
		if d := stats.WaitDuration - m.lastDBStats.WaitDuration; d > 0 {
			m.DBConnectionWaitDuration.Add(d.Seconds())
		}
		m.lastDBStats = stats
	})
}

// RecordDBQuery records session store query metrics
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		operation = strings.ToLower(operation)
		m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())

		if err != nil {
			m.DBQueryErrors.WithLabelValues(operation, table).Inc()
		}
	})
}
