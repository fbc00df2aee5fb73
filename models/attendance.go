// File: /models/attendance.go
package models

import (
	"time"
)

// RSVP statuses. Exactly one Attendance row exists per (user, event) pair;
// the composite unique index is the invariant that keeps aggregate counts honest.
const (
	StatusGoing    = "going"
	StatusMaybe    = "maybe"
	StatusNotGoing = "not_going"
)

type Attendance struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EventID   string    `json:"event_id" gorm:"not null;size:191;uniqueIndex:uk_attendances_user_event"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_attendances_user_event;index:idx_attendances_user_created,priority:1"`
	Status    string    `json:"status" gorm:"not null;size:20"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_attendances_user_created,priority:2,sort:desc"`
	UpdatedAt time.Time `json:"updated_at"`

	Event Event `json:"event" gorm:"foreignKey:EventID"`
	User  User  `json:"user" gorm:"foreignKey:UserID"`
}

// IsValidRSVPStatus reports whether s is one of the three allowed statuses.
func IsValidRSVPStatus(s string) bool {
	return s == StatusGoing || s == StatusMaybe || s == StatusNotGoing
}
