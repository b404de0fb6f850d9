package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var fs embed.FS

type pinger interface {
	PingContext(ctx context.Context) error
}

// WaitReady pings until the database answers or maxWait elapses; a freshly
// started container might not accept connections immediately.
func WaitReady(ctx context.Context, db pinger, maxWait time.Duration) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = maxWait
	return backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(exp, ctx))
}

func RunMigrations(ctx context.Context, db *DB) error {
	src, err := iofs.New(fs, "migrations")
	if err != nil {
		return fmt.Errorf("migrate src: %w", err)
	}
	dsn := db.Pool.Config().ConnString()
	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open sql db: %w", err)
	}
	defer sqldb.Close()
	if err := WaitReady(ctx, sqldb, 15*time.Second); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	driver, err := pgdriver.WithInstance(sqldb, &pgdriver.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
