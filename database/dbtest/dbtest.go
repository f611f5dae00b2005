// Package dbtest provides migrated throwaway databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/irsalhamdi/course-platform/config"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// Config describes a SQLite database file inside the test's temp dir.
func Config(tb testing.TB) config.DB {
	tb.Helper()
	return config.DB{
		Driver:       database.SQLite,
		Path:         filepath.Join(tb.TempDir(), "courses.db"),
		MaxIdleConns: 2,
	}
}

// DB opens a migrated SQLite database that is closed when the test ends.
func DB(tb testing.TB) *sqlx.DB {
	tb.Helper()

	cfg := Config(tb)
	if err := database.Migrate(cfg); err != nil {
		tb.Fatalf("migrating test database: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		tb.Fatalf("opening test database: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	return db
}

// Logger returns a logger that records entries instead of printing them.
func Logger(tb testing.TB) (*logrus.Logger, *test.Hook) {
	tb.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}
