package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratelite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/irsalhamdi/course-platform/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. It uses its own connection pool
// because closing the migrator closes the pool it was given.
func Migrate(cfg config.DB) error {
	db, err := Open(cfg)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		db.Close()
		return fmt.Errorf("loading migrations: %w", err)
	}

	var drv migratedb.Driver
	switch cfg.Driver {
	case Postgres:
		drv, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case SQLite:
		drv, err = migratelite.WithInstance(db.DB, &migratelite.Config{})
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("preparing %s migration driver: %w", cfg.Driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, drv)
	if err != nil {
		db.Close()
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
