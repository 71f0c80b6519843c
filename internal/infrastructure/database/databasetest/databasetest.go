// Package databasetest opens migrated in-memory databases for tests.
package databasetest

import (
	"sync/atomic"
	"testing"

	"buffr-host/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh in-memory SQLite database with every table migrated.
// The pool is pinned to one connection so ":memory:" is shared by all queries.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// FailQueries makes every SELECT on db fail with err until restore is called.
// Writes are unaffected.
func FailQueries(t *testing.T, db *gorm.DB, err error) (restore func()) {
	t.Helper()
	var on atomic.Bool
	on.Store(true)
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("databasetest:fail_queries", func(tx *gorm.DB) {
		if on.Load() {
			_ = tx.AddError(err)
		}
	}))
	return func() { on.Store(false) }
}
