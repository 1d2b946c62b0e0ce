// Package pg is the Postgres implementation of internal/ports.Storage: a
// thin connection-pool wrapper plus a raw-SQL adapter, in the teacher's
// no-ORM idiom.
package pg

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/oduggan21/reading-assistant/internal/config"
)

// Database owns the connection pool. Adapter wraps it to implement
// ports.Storage.
type Database struct {
	DB *sql.DB
}

// InitDatabase opens the connection pool, verifies it, and runs migrations.
func InitDatabase(databaseURL string) (*Database, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.AppConfig.DBMaxOpenConns)
	db.SetMaxIdleConns(config.AppConfig.DBMaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(config.AppConfig.DBConnMaxIdleTime) * time.Minute)
	db.SetConnMaxLifetime(time.Duration(config.AppConfig.DBConnMaxLifetime) * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Database{DB: db}, nil
}
