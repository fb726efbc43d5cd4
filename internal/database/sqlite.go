package database

import (
	"fmt"

	"github.com/flashsync/ingestcore/internal/ingest"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite establishes a SQLite connection and creates the ingestion
// core's tables. Schema migrations beyond AutoMigrate's additive column
// creation are an external concern; this core never rewrites history.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection turns every statement, including the raw
	// upsert and RETURNING statements in internal/ingest, into an
	// implicit serialization point. It is a resource limit, not a
	// substitute for the single-statement atomicity those statements
	// already provide on their own.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(ingest.SchemaModels()...); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}
