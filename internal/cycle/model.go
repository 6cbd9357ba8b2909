package cycle

import "time"

// Cycle is a closed, archived sales period. Cycles are created only by
// archival and never change afterwards.
type Cycle struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Cycle) TableName() string {
	return "sales_cycles"
}

type ArchiveRequest struct {
	Name string `json:"name" binding:"max=120"`
}

// ArchiveResult reports the cycle created and how many visits moved into it.
type ArchiveResult struct {
	Cycle Cycle `json:"cycle"`
	Moved int64 `json:"moved"`
}
