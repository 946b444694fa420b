package testutil

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/avosuivi/actionplan-backend/internal/data/db"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	memCounter int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database for one test. By default it is a private
// in-memory sqlite database, so the suite runs without external services;
// set TEST_POSTGRES_DSN to run the same tests against Postgres instead.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var (
		gormDB *gorm.DB
		err    error
	)
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		gormDB, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		// cache=shared keeps every pooled connection on the same in-memory
		// database; the counter keeps parallel tests apart.
		name := fmt.Sprintf("file:actionplan_test_%d?mode=memory&cache=shared", atomic.AddInt64(&memCounter, 1))
		gormDB, err = gorm.Open(sqlite.Open(name), cfg)
	}
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

// Tx opens a transaction that is rolled back when the test finishes.
func Tx(tb testing.TB, gormDB *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gormDB.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
