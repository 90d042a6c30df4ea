package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the audience a user account belongs to
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role is one the backend issues
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents the account record returned by the backend.
// It is owned exclusively by the session store: replaced wholesale on
// login, cleared on logout.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// KVEntry is a durable key-value row. It backs the storage driver that
// outlives visitor sessions (wizard drafts and similar long-lived slots).
type KVEntry struct {
	Key       string    `json:"key" gorm:"primaryKey;type:varchar(191)"`
	Value     []byte    `json:"value" gorm:"type:blob"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&KVEntry{})
}
