package record

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// OpenCycle is the Filter.Cycle value naming the open cycle explicitly.
const OpenCycle = "open"

func scopeCycle(db *gorm.DB, cycle string) *gorm.DB {
	if cycle == "" || cycle == OpenCycle {
		return db.Where("cycle_id IS NULL")
	}
	return db.Where("cycle_id = ?", cycle)
}

// ListByCycle returns every record of cycle, newest first. An empty cycle
// selects the open one.
func ListByCycle(ctx context.Context, db *gorm.DB, cycle string) ([]Record, error) {
	var records []Record
	if err := scopeCycle(db.WithContext(ctx), cycle).Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list records of cycle %q: %w", cycle, err)
	}
	return records, nil
}

func listByOwner(ctx context.Context, db *gorm.DB, cycle, inCharge string) ([]Record, error) {
	var records []Record
	err := scopeCycle(db.WithContext(ctx), cycle).
		Where("in_charge = ?", inCharge).
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list records of %q: %w", inCharge, err)
	}
	return records, nil
}

// findRecord returns nil without error when id does not exist.
func findRecord(ctx context.Context, db *gorm.DB, id uint) (*Record, error) {
	var r Record
	err := db.WithContext(ctx).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query record %d: %w", id, err)
	}
	return &r, nil
}

func insertRecord(ctx context.Context, db *gorm.DB, r *Record) error {
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func updateRecordFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if err := db.WithContext(ctx).Model(&Record{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	return nil
}

func deleteRecord(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	res := db.WithContext(ctx).Delete(&Record{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete record %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

func deleteOpen(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Where("cycle_id IS NULL").Delete(&Record{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete open records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func insertBatch(ctx context.Context, db *gorm.DB, records []Record) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("insert %d records: %w", len(records), err)
		}
		return nil
	})
}

// MoveOpenToCycle assigns every open record to cycleID. Callers run it
// inside the archival transaction.
func MoveOpenToCycle(tx *gorm.DB, cycleID string) (int64, error) {
	res := tx.Model(&Record{}).Where("cycle_id IS NULL").Update("cycle_id", cycleID)
	if res.Error != nil {
		return 0, fmt.Errorf("move open records to cycle %s: %w", cycleID, res.Error)
	}
	return res.RowsAffected, nil
}

// Fingerprint summarises the open cycle as "count:max(updated_at)". It
// changes whenever a record is added, edited, removed or archived.
func Fingerprint(ctx context.Context, db *gorm.DB) (string, error) {
	var row struct {
		Count      int64
		MaxUpdated string
	}
	err := db.WithContext(ctx).Model(&Record{}).
		Select("COUNT(*) AS count, COALESCE(CAST(MAX(updated_at) AS TEXT), '') AS max_updated").
		Where("cycle_id IS NULL").
		Scan(&row).Error
	if err != nil {
		return "", fmt.Errorf("fingerprint open records: %w", err)
	}
	return fmt.Sprintf("%d:%s", row.Count, row.MaxUpdated), nil
}
