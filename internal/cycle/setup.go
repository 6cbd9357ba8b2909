package cycle

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the sales_cycles table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Cycle{}); err != nil {
		return fmt.Errorf("migrate sales_cycles: %w", err)
	}
	return nil
}
