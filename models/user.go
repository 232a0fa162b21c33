package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole is a platform-wide role, distinct from per-community membership roles.
type UserRole string

const (
	UserRoleCitizen   UserRole = "citizen"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"
)

// User represents a registered citizen. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string   `gorm:"size:255" json:"email"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	AvatarURL    string   `gorm:"size:512" json:"avatar_url"`
	Role         UserRole `gorm:"size:32;default:'citizen'" json:"role"`

	// CommunityIDs mirrors the communities the user belongs to. It is updated
	// after the community's member list commits and may briefly lag it; read
	// paths treat dangling references as absent.
	CommunityIDs IDList `gorm:"type:text" json:"community_ids"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Elevated reports whether the user holds a platform role that may act on
// other users' content (status changes, comment removal).
func (u *User) Elevated() bool {
	return u.Role == UserRoleModerator || u.Role == UserRoleAdmin
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
