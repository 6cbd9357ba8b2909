package metadata

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue returns the value stored under key, or "" when it is absent.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue upserts key. db may be a transaction.
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}

func GetLastBackupFingerprint(db *gorm.DB) (string, error) {
	return GetValue(db, LastBackupFingerprintKey)
}

func SetLastBackupFingerprint(db *gorm.DB, fingerprint string) error {
	return SetValue(db, LastBackupFingerprintKey, fingerprint)
}

func GetLastArchivedCycleID(db *gorm.DB) (string, error) {
	return GetValue(db, LastArchivedCycleIDKey)
}

func SetLastArchivedCycleID(db *gorm.DB, cycleID string) error {
	return SetValue(db, LastArchivedCycleIDKey, cycleID)
}
