package database

import (
	"fmt"
	"os"
	"path/filepath"

	"blastkit/internal/blast"
	"blastkit/internal/config"
)

// NewDatabaseFromConfig creates the operation journal based on the database
// config type and brings its schema up to date. An empty type means memory.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, clock blast.Clock) (*SQLiteDatabase, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, "blastkit.db")
	case "", "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	db, err := NewSQLiteDatabase(path, clock)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return db, nil
}
