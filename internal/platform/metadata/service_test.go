package metadata

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "meta.db")), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGetValueMissingKeyReturnsEmpty(t *testing.T) {
	db := openTestDB(t)
	got, err := GetValue(db, "nope")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func TestSetValueUpserts(t *testing.T) {
	db := openTestDB(t)
	if err := SetLastArchivedCycleID(db, "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := SetLastArchivedCycleID(db, "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := GetLastArchivedCycleID(db)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected second, got %q", got)
	}
	var count int64
	db.Model(&Metadata{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}
}
