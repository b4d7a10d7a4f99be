package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dbstore "github.com/soaringjerry/stylus/internal/db"
)

var (
	migrateDown   int
	migrateStatus bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQLite schema migrations",
	Long: `Applies pending migrations to STYLUS_SQLITE_PATH. Migrations are read
from STYLUS_MIGRATIONS_DIR when that directory exists, else from the
copies built into the binary.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().IntVar(&migrateDown, "down", 0, "roll back this many migrations instead of applying")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "list pending migrations and exit")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migrateDown < 0 {
		return errors.New("--down must not be negative")
	}
	conn, err := dbstore.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logger.Warn("failed to close sqlite db", zap.Error(cerr))
		}
	}()

	switch {
	case migrateStatus:
		pending, err := dbstore.PendingMigrations(conn, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		}
		for _, id := range pending {
			fmt.Fprintf(cmd.OutOrStdout(), "pending  %s\n", id)
		}
		return nil
	case migrateDown > 0:
		n, err := dbstore.RollbackMigrations(conn, cfg.MigrationsDir, migrateDown)
		if err != nil {
			return err
		}
		logger.Info("rolled back migrations", zap.String("path", cfg.SQLitePath), zap.Int("count", n))
		return nil
	default:
		n, err := dbstore.RunMigrations(conn, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		logger.Info("applied migrations", zap.String("path", cfg.SQLitePath), zap.Int("count", n))
		return nil
	}
}
