// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
)

// Open returns a fresh file-backed SQLite database in t.TempDir and runs
// every migrate function against it.
func Open(t testing.TB, migrate ...func(*gorm.DB) error) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, m := range migrate {
		if err := m(db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
