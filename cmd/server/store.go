package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/soaringjerry/stylus/internal/api"
	"github.com/soaringjerry/stylus/internal/config"
	dbstore "github.com/soaringjerry/stylus/internal/db"
)

// openStore builds the configured record store. The sqlite backend is
// migrated before use.
func openStore(c config.Config, log *zap.Logger) (api.Store, error) {
	if c.Store != config.StoreSQLite {
		log.Info("using in-memory store; data is lost on restart")
		return api.NewMemoryStore(), nil
	}

	conn, err := dbstore.Open(c.SQLitePath)
	if err != nil {
		return nil, err
	}
	applied, err := dbstore.RunMigrations(conn, c.MigrationsDir)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	store, err := dbstore.NewSQLiteStore(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	log.Info("using sqlite store", zap.String("path", c.SQLitePath), zap.Int("migrations_applied", applied))
	return store, nil
}
