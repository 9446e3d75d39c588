package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"actionitems/config"
	"actionitems/pkg/logger"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

const (
	pingAttempts = 5
	pingBackoff  = 2 * time.Second
)

// Connect opens Postgres and pings it a few times in case of temporary
// DNS/network blips.
func Connect(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db, nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", pingBackoff, err)
		time.Sleep(pingBackoff)
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", pingAttempts, err)
}

// Migrate creates the action_items table and its index if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Sugar.Errorf("Failed to apply schema: %v", err)
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Sugar.Info("Schema is up to date")
	return nil
}
