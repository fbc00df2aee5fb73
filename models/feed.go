// File: /models/feed.go
package models

import (
	"time"
)

// Feed is one subscribed external ICS calendar.
type Feed struct {
	ID           string     `json:"id" gorm:"primaryKey;size:191"`
	URL          string     `json:"url" gorm:"not null;size:500"`
	Enabled      bool       `json:"enabled" gorm:"default:true"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
