package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/irsalhamdi/course-platform/config"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrDBNotFound        = sql.ErrNoRows
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
)

const (
	Postgres = "postgres"
	SQLite   = "sqlite3"
)

func Open(cfg config.DB) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case Postgres:
		sslMode := "require"
		if cfg.DisableTLS {
			sslMode = "disable"
		}

		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     cfg.Host,
			Path:     cfg.Name,
			RawQuery: q.Encode(),
		}

		db, err = sqlx.Open(Postgres, u.String())

	case SQLite:
		// immediate transactions avoid lock upgrades failing under concurrent writers
		db, err = sqlx.Open(SQLite, cfg.Path+"?_busy_timeout=5000&_txlock=immediate")

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	return db, nil
}

func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	var ok bool
	if err := db.QueryRowContext(ctx, `SELECT TRUE`).Scan(&ok); err != nil {
		return fmt.Errorf("querying database: %w", err)
	}
	return nil
}

// Transaction runs fn inside a single database transaction. Everything fn
// writes becomes durable together on commit, or not at all.
func Transaction(ctx context.Context, db *sqlx.DB, fn func(tx sqlx.ExtContext) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return fmt.Errorf("rollback transaction: %v: %w", rerr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", normalize(err))
	}
	return nil
}

// normalize maps driver specific uniqueness violations to ErrDBDuplicatedEntry.
func normalize(err error) error {
	if IsDuplicated(err) {
		return fmt.Errorf("%w: %v", ErrDBDuplicatedEntry, err)
	}
	return err
}

func IsDuplicated(err error) bool {
	if errors.Is(err, ErrDBDuplicatedEntry) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}

// NamedExec binds q against data and normalizes uniqueness violations.
func NamedExec(ctx context.Context, ext sqlx.ExtContext, q string, data any) (sql.Result, error) {
	res, err := sqlx.NamedExecContext(ctx, ext, q, data)
	if err != nil {
		return nil, normalize(err)
	}
	return res, nil
}
