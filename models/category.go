// File: /models/category.go
package models

import (
	"time"
)

type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null;size:120"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
