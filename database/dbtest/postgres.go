package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/irsalhamdi/course-platform/config"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// Postgres starts a disposable PostgreSQL container and returns a migrated
// connection to it. The test is skipped in short mode or when no Docker
// daemon is reachable.
func Postgres(tb testing.TB) *sqlx.DB {
	tb.Helper()

	if testing.Short() {
		tb.Skip("skipping postgres test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		tb.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		tb.Skipf("docker unavailable: %v", err)
	}
	pool.MaxWait = time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=courses",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		tb.Fatalf("starting postgres container: %v", err)
	}
	tb.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			tb.Logf("purging postgres container: %v", err)
		}
	})
	resource.Expire(300)

	cfg := config.DB{
		Driver:       database.Postgres,
		User:         "postgres",
		Password:     "postgres",
		Host:         resource.GetHostPort("5432/tcp"),
		Name:         "courses",
		DisableTLS:   true,
		MaxIdleConns: 2,
	}

	var db *sqlx.DB
	err = pool.Retry(func() error {
		var err error
		db, err = database.Open(cfg)
		if err != nil {
			return err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return fmt.Errorf("waiting for postgres: %w", err)
		}
		return nil
	})
	if err != nil {
		tb.Fatalf("connecting to postgres: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	if err := database.Migrate(cfg); err != nil {
		tb.Fatalf("migrating postgres: %v", err)
	}

	return db
}
