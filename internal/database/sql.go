package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/ideaforge-api/internal/models"
)

// ConnectSQLite opens a SQLite database, used for single-node deployments and tests.
func ConnectSQLite(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

// OpenSQL connects to the configured dialect and migrates the key-value table.
func OpenSQL(dialect, dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch dialect {
	case "postgres":
		db, err = ConnectPostgres(dsn)
	case "sqlite", "":
		db, err = ConnectSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv entries: %w", err)
	}
	return db, nil
}
