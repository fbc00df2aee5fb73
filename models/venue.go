// File: /models/venue.go
package models

import (
	"time"
)

type Venue struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	City      string    `json:"city" gorm:"size:255;index"`
	Country   string    `json:"country" gorm:"size:10"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
