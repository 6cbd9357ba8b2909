package record

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Outcome is the sale result of a visit.
type Outcome string

const (
	OutcomeSold     Outcome = "Si"
	OutcomeRejected Outcome = "No"
	OutcomePending  Outcome = "Pendiente"

	// legacyPending was written by older clients and means Pending.
	legacyPending = "Interesado/Dudoso"
)

// ParseOutcome accepts the three outcomes case-insensitively plus the
// legacy pending value.
func ParseOutcome(s string) (Outcome, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(OutcomeSold)):
		return OutcomeSold, true
	case strings.EqualFold(s, string(OutcomeRejected)):
		return OutcomeRejected, true
	case strings.EqualFold(s, string(OutcomePending)), strings.EqualFold(s, legacyPending):
		return OutcomePending, true
	}
	return "", false
}

// Scan normalises stored values; anything unrecognised reads as Pending.
func (o *Outcome) Scan(value any) error {
	s, err := scanString(value)
	if err != nil {
		return fmt.Errorf("scan outcome: %w", err)
	}
	if parsed, ok := ParseOutcome(s); ok {
		*o = parsed
	} else {
		*o = OutcomePending
	}
	return nil
}

func (o Outcome) Value() (driver.Value, error) {
	return string(o), nil
}

// Contacted records whether the prospect was reached.
type Contacted string

const (
	ContactedYes Contacted = "Si"
	ContactedNo  Contacted = "No"
)

func ParseContacted(s string) (Contacted, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(ContactedYes)):
		return ContactedYes, true
	case strings.EqualFold(s, string(ContactedNo)):
		return ContactedNo, true
	}
	return "", false
}

func (c *Contacted) Scan(value any) error {
	s, err := scanString(value)
	if err != nil {
		return fmt.Errorf("scan contacted: %w", err)
	}
	if parsed, ok := ParseContacted(s); ok {
		*c = parsed
	} else {
		*c = ContactedNo
	}
	return nil
}

func (c Contacted) Value() (driver.Value, error) {
	return string(c), nil
}

// Toggle flips Si and No.
func (c Contacted) Toggle() Contacted {
	if c == ContactedYes {
		return ContactedNo
	}
	return ContactedYes
}

func scanString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T", value)
	}
}

// Record is one logged sales visit. CycleID is nil while the visit belongs
// to the open cycle.
type Record struct {
	ID          uint      `gorm:"primaryKey" json:"id,string"`
	Date        string    `gorm:"type:varchar(16);not null" json:"date"`
	InCharge    string    `gorm:"type:varchar(64);not null;index" json:"inCharge"`
	Address     string    `gorm:"not null" json:"address"`
	Company     string    `gorm:"not null" json:"company"`
	Industry    string    `gorm:"not null" json:"industry"`
	Sold        Outcome   `gorm:"type:varchar(32);not null" json:"sold"`
	ContactInfo string    `gorm:"not null;default:''" json:"contactInfo"`
	Contacted   Contacted `gorm:"type:varchar(4);not null" json:"contacted"`
	CycleID     *string   `gorm:"type:varchar(36);index" json:"cycleId"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (Record) TableName() string {
	return "sales_records"
}

// IsOpen reports whether r belongs to the open cycle.
func (r *Record) IsOpen() bool {
	return r.CycleID == nil
}

// Industries are the suggestions offered for the industry field.
var Industries = []string{
	"ROPA",
	"COMIDA",
	"CONSULTORIO",
	"CANCHAS",
	"TECNOLOGIA",
	"PELUQUERIA",
	"MAYORISTA",
	"LIBRERIA",
}

// --- API payloads ---

type CreateRequest struct {
	Address     string `json:"address"`
	Company     string `json:"company"`
	Industry    string `json:"industry"`
	Sold        string `json:"sold" binding:"omitempty,outcome"`
	ContactInfo string `json:"contactInfo"`
	Contacted   string `json:"contacted" binding:"omitempty,contacted"`
}

// UpdateRequest carries only the editable fields; nil leaves a field as is.
type UpdateRequest struct {
	Address     *string `json:"address"`
	Company     *string `json:"company"`
	Industry    *string `json:"industry"`
	Sold        *string `json:"sold"`
	ContactInfo *string `json:"contactInfo"`
	Contacted   *string `json:"contacted"`
}

// Filter narrows a listing. An empty Cycle selects the open cycle.
type Filter struct {
	Cycle  string
	Query  string
	Status string
}

// DuplicateResult answers the advisory duplicate check.
type DuplicateResult struct {
	Duplicate bool   `json:"duplicate"`
	Owner     string `json:"owner,omitempty"`
}
