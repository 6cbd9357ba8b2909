package user

import (
	"time"
)

// Role decides what a user may see and change.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleEmployee Role = "employee"
)

// ParseRole accepts the two known roles, case-sensitively.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleEmployee:
		return Role(s), true
	}
	return "", false
}

// User is one salesperson or owner account.
type User struct {
	// Username is the primary key and never changes.
	Username string `gorm:"primaryKey;type:varchar(64)" json:"username"`

	// Password is stored and compared in plaintext.
	Password string `gorm:"not null" json:"-"`

	Role Role `gorm:"type:varchar(16);not null;default:employee" json:"role"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "app_users"
}

// IsOwner reports whether u sees every record and may manage the roster.
func (u *User) IsOwner() bool {
	return u != nil && u.Role == RoleOwner
}

// --- API payloads ---

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type AddRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,role"`
}

// UpdateRequest changes password and/or role. Empty fields are left alone.
type UpdateRequest struct {
	Password string `json:"password"`
	Role     string `json:"role" binding:"omitempty,role"`
}
