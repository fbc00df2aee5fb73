// File: /models/like.go
package models

import (
	"time"
)

// EventLike is set membership: a row exists while the user likes the event
// and is deleted when they unlike it. The (user, event) unique index makes
// the toggle safe under concurrent requests.
type EventLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EventID   string    `json:"event_id" gorm:"not null;size:191;uniqueIndex:uk_event_likes_user_event"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;uniqueIndex:uk_event_likes_user_event;index:idx_event_likes_user_created,priority:1"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_event_likes_user_created,priority:2,sort:desc"`

	Event Event `json:"event" gorm:"foreignKey:EventID"`
	User  User  `json:"user" gorm:"foreignKey:UserID"`
}
