package metadata

import "time"

// Metadata is a key/value row for bookkeeping that has no table of its own.
type Metadata struct {
	ID        uint   `gorm:"primarykey"`
	Key       string `gorm:"uniqueIndex;not null;type:varchar(255)"`
	Value     string `gorm:"type:varchar(255)"`
	UpdatedAt time.Time
}

func (Metadata) TableName() string {
	return "metadata"
}
