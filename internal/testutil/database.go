// Package testutil carries shared test scaffolding: an in-memory
// database, fixture builders, and error assertions.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockagent/internal/models"
)

// testDSN uses SQLite's shared-cache in-memory mode so every handle a
// test opens sees the same store until the last one closes.
const testDSN = "file::memory:?cache=shared"

var allModels = []interface{}{
	&models.User{},
	&models.Trade{},
	&models.Favorite{},
	&models.DeviceToken{},
}

// SetupTestDB opens an in-memory database with the full schema migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(testDSN), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// TeardownTestDB closes the handle returned by SetupTestDB.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
