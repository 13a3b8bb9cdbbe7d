package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	// Registers the "postgres" database/sql driver used by goose.
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationDirection selects which way Migrate moves the schema.
type MigrationDirection string

const (
	MigrateUp     MigrationDirection = "up"
	MigrateDown   MigrationDirection = "down"
	MigrateStatus MigrationDirection = "status"
)

// gooseRun is a seam for tests.
var gooseRun = func(ctx context.Context, db *sql.DB, direction MigrationDirection) error {
	switch direction {
	case MigrateUp:
		return goose.UpContext(ctx, db, "migrations")
	case MigrateDown:
		return goose.DownContext(ctx, db, "migrations")
	case MigrateStatus:
		return goose.StatusContext(ctx, db, "migrations")
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
}

// Migrate applies the embedded schema migrations to the database at databaseURL.
// Migrations run over database/sql because goose does not speak pgxpool.
func Migrate(ctx context.Context, databaseURL string, direction MigrationDirection) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database for migrations: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := gooseRun(ctx, db, direction); err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	return nil
}
