// File: /models/event.go
package models

import (
	"time"
)

// Event sources. Manually created events carry SourceManual and no external id;
// ingested or aggregated events carry the source tag plus an external id that
// is unique per source.
const (
	SourceManual       = "manual"
	SourceICS          = "ics"
	SourceTicketmaster = "ticketmaster"
	SourceBandsintown  = "bandsintown"
)

type Event struct {
	ID          string     `json:"id" gorm:"primaryKey;size:191"`
	Title       string     `json:"title" gorm:"not null;size:255"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;not null;size:120"`
	Description string     `json:"description" gorm:"type:text"`
	StartDate   time.Time  `json:"start_date" gorm:"not null;index:idx_events_start_private,priority:1"`
	EndDate     *time.Time `json:"end_date"`
	IsPrivate   bool       `json:"is_private" gorm:"default:false;index:idx_events_start_private,priority:2"`
	AccessCode  *string    `json:"-" gorm:"size:50"`
	Source      string     `json:"source" gorm:"not null;default:'manual';size:30;uniqueIndex:uk_events_source_external"`
	ExternalID  *string    `json:"external_id" gorm:"size:255;uniqueIndex:uk_events_source_external"`
	OwnerID     *string    `json:"owner_id" gorm:"size:191"`
	CategoryID  *string    `json:"category_id" gorm:"size:191"`
	VenueID     *string    `json:"venue_id" gorm:"size:191"`
	ImageURL    *string    `json:"image_url" gorm:"size:500"`
	Raw         JSONMap    `json:"raw,omitempty" gorm:"type:json"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Owner       *User        `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Category    *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Venue       *Venue       `json:"venue,omitempty" gorm:"foreignKey:VenueID"`
	Attendances []Attendance `json:"attendances,omitempty" gorm:"foreignKey:EventID"`
}

// AttendanceCounts holds the per-status aggregate for one event.
type AttendanceCounts struct {
	Going    int64 `json:"going"`
	Maybe    int64 `json:"maybe"`
	NotGoing int64 `json:"not_going"`
}

// EventWithCounts is the query-service response shape: an event annotated
// with its attendance aggregates.
type EventWithCounts struct {
	Event
	AttendanceCounts AttendanceCounts `json:"attendance_counts"`
}
