package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InMemory is the path that opens a private in-memory SQLite database.
const InMemory = ":memory:"

// NewSQLiteConnection opens a SQLite database for local development and
// tests. SQLite allows one writer, so the pool is pinned to one connection;
// this also keeps an in-memory database alive for the life of the pool.
func NewSQLiteConnection(path, logLevel string, log *logrus.Logger) (*gorm.DB, error) {
	dsn := path
	if path != InMemory {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dsn = path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(logLevel, log))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	log.Infof("Successfully opened SQLite database at %s", path)

	return db, nil
}
