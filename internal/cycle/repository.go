package cycle

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

func listCycles(ctx context.Context, db *gorm.DB) ([]Cycle, error) {
	var cycles []Cycle
	if err := db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&cycles).Error; err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

// findCycle returns nil without error when id does not exist.
func findCycle(ctx context.Context, db *gorm.DB, id string) (*Cycle, error) {
	var c Cycle
	err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cycle %s: %w", id, err)
	}
	return &c, nil
}

func insertCycle(tx *gorm.DB, c *Cycle) error {
	if err := tx.Create(c).Error; err != nil {
		return fmt.Errorf("insert cycle %q: %w", c.Name, err)
	}
	return nil
}
