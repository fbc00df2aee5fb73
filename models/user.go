// File: /models/user.go
package models

import (
	"strings"
	"time"
)

type User struct {
	ID            string    `json:"id" gorm:"primaryKey;size:191"`
	Name          string    `json:"name" gorm:"not null;size:255"`
	Handle        string    `json:"handle" gorm:"uniqueIndex;not null;size:50"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password      string    `json:"-" gorm:"not null;size:255"`
	EmailVerified bool      `json:"email_verified" gorm:"default:false"`
	Avatar        *string   `json:"avatar" gorm:"size:500"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	OwnedEvents []Event      `json:"owned_events,omitempty" gorm:"foreignKey:OwnerID"`
	Attendances []Attendance `json:"attendances,omitempty" gorm:"foreignKey:UserID"`
	Likes       []EventLike  `json:"likes,omitempty" gorm:"foreignKey:UserID"`
}

// GenerateHandleFromName creates a handle from the user's name
func GenerateHandleFromName(name string) string {
	handle := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	handle = strings.ReplaceAll(handle, ".", "")
	handle = strings.ReplaceAll(handle, "-", "_")
	return handle
}
