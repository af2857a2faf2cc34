package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// MetricsRecorder records the duration and outcome of database queries
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
}

const queryStartKey = "metrics:query_start_time"

// RegisterMetricsCallbacks registers GORM callbacks timing every query,
// create, update and delete
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) error {
	start := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	finish := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			started, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			recorder.RecordDBQuery(operation, table, time.Since(started.(time.Time)), tx.Error)
		}
	}

	cb := db.Callback()
	return errors.Join(
		cb.Query().Before("gorm:query").Register("metrics:select_before", start),
		cb.Query().After("gorm:query").Register("metrics:select_after", finish("select")),
		cb.Create().Before("gorm:create").Register("metrics:insert_before", start),
		cb.Create().After("gorm:create").Register("metrics:insert_after", finish("insert")),
		cb.Update().Before("gorm:update").Register("metrics:update_before", start),
		cb.Update().After("gorm:update").Register("metrics:update_after", finish("update")),
		cb.Delete().Before("gorm:delete").Register("metrics:delete_before", start),
		cb.Delete().After("gorm:delete").Register("metrics:delete_after", finish("delete")),
	)
}
