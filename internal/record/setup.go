package record

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/validation"
)

// Migrate creates the sales_records table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("migrate sales_records: %w", err)
	}
	return nil
}

// RegisterValidators installs the "outcome" and "contacted" binding tags.
func RegisterValidators() error {
	if err := validation.RegisterTag("outcome", validation.OneOf(func(s string) bool {
		_, ok := ParseOutcome(s)
		return ok
	})); err != nil {
		return err
	}
	return validation.RegisterTag("contacted", validation.OneOf(func(s string) bool {
		_, ok := ParseContacted(s)
		return ok
	}))
}
