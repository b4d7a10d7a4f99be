package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const dialect = "sqlite3"

// migrationSource prefers migrationsDir when it exists and falls back to the
// embedded files otherwise.
func migrationSource(migrationsDir string) (migrate.MigrationSource, error) {
	if migrationsDir != "" {
		info, err := os.Stat(migrationsDir)
		switch {
		case err == nil && info.IsDir():
			return &migrate.FileMigrationSource{Dir: migrationsDir}, nil
		case err == nil:
			return nil, fmt.Errorf("migrations path %s is not a directory", migrationsDir)
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read migrations: %w", err)
		}
	}
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: embeddedMigrations,
		Root:       "migrations",
	}, nil
}

// RunMigrations applies every pending up migration and reports how many ran.
func RunMigrations(db *sql.DB, migrationsDir string) (int, error) {
	src, err := migrationSource(migrationsDir)
	if err != nil {
		return 0, err
	}
	n, err := migrate.Exec(db, dialect, src, migrate.Up)
	if err != nil {
		return n, fmt.Errorf("apply migrations: %w", err)
	}
	return n, nil
}

// RollbackMigrations undoes at most steps applied migrations, newest first.
func RollbackMigrations(db *sql.DB, migrationsDir string, steps int) (int, error) {
	src, err := migrationSource(migrationsDir)
	if err != nil {
		return 0, err
	}
	n, err := migrate.ExecMax(db, dialect, src, migrate.Down, steps)
	if err != nil {
		return n, fmt.Errorf("rollback migrations: %w", err)
	}
	return n, nil
}

// PendingMigrations lists the ids of migrations not yet applied.
func PendingMigrations(db *sql.DB, migrationsDir string) ([]string, error) {
	src, err := migrationSource(migrationsDir)
	if err != nil {
		return nil, err
	}
	planned, _, err := migrate.PlanMigration(db, dialect, src, migrate.Up, 0)
	if err != nil {
		return nil, fmt.Errorf("plan migrations: %w", err)
	}
	ids := make([]string, 0, len(planned))
	for _, m := range planned {
		ids = append(ids, m.Id)
	}
	return ids, nil
}
