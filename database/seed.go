// File: /database/seed.go
package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventdojo-api/models"
)

var seedCategorySlugs = []string{
	"music", "theatre", "festival", "party", "conference", "meetup", "workshop",
	"startup", "tech", "opera", "classical", "jazz", "rock", "electronic",
	"hiphop", "standup", "movie", "exhibition", "art", "family", "kids",
	"sports", "football", "basketball", "running", "fitness", "yoga", "dance",
	"networking", "education", "language", "food", "wine", "beer", "outdoor",
	"hiking", "travel", "charity", "fundraiser", "community", "gaming",
	"esports", "boardgames", "pubquiz", "hackathon", "private", "birthday",
	"wedding",
}

// SeedData populates reference data (categories, venues) and a handful of demo
// events. Individual failures are logged and skipped so a partially seeded
// database never blocks startup.
func SeedData(db *gorm.DB) error {
	for _, slug := range seedCategorySlugs {
		var existing models.Category
		if err := db.Where("slug = ?", slug).First(&existing).Error; err == nil {
			continue
		}
		name := titleCase(strings.ReplaceAll(slug, "-", " "))
		cat := models.Category{
			ID:   uuid.New().String(),
			Name: name,
			Slug: slug,
		}
		if err := db.Create(&cat).Error; err != nil {
			fmt.Printf("Warning: Could not seed category %s: %v\n", slug, err)
		}
	}

	hall := seedVenue(db, "Grand Hall", "Prague", "CZ")
	arena := seedVenue(db, "Open Air Arena", "Brno", "CZ")

	var music models.Category
	db.Where("slug = ?", "music").First(&music)
	var theatre models.Category
	db.Where("slug = ?", "theatre").First(&theatre)

	now := time.Now()
	tonight := time.Date(now.Year(), now.Month(), now.Day(), 19, 0, 0, 0, now.Location())
	tomorrow := now.Add(24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	seedEvent(db, "tonight-symphony-orchestra", models.Event{
		Title:       "Tonight Symphony Orchestra",
		Description: "<p>Experience a night of classical masterpieces.</p>",
		StartDate:   tonight,
		CategoryID:  &music.ID,
		VenueID:     &hall.ID,
	})
	seedEvent(db, "open-air-rock-concert", models.Event{
		Title:       "Open Air Rock Concert",
		Description: "<p>Rock bands under the stars.</p>",
		StartDate:   tomorrow,
		CategoryID:  &music.ID,
		VenueID:     &arena.ID,
	})
	seedEvent(db, "modern-theatre-premiere", models.Event{
		Title:       "Modern Theatre Premiere",
		Description: "<p>A captivating new production.</p>",
		StartDate:   nextWeek,
		CategoryID:  &theatre.ID,
		VenueID:     &hall.ID,
	})

	return nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func seedVenue(db *gorm.DB, name, city, country string) models.Venue {
	var venue models.Venue
	if err := db.Where("name = ?", name).First(&venue).Error; err == nil {
		return venue
	}
	venue = models.Venue{
		ID:      uuid.New().String(),
		Name:    name,
		City:    city,
		Country: country,
	}
	if err := db.Create(&venue).Error; err != nil {
		fmt.Printf("Warning: Could not seed venue %s: %v\n", name, err)
	}
	return venue
}

func seedEvent(db *gorm.DB, slug string, event models.Event) {
	var existing models.Event
	if err := db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return
	}
	event.ID = uuid.New().String()
	event.Slug = slug
	event.Source = models.SourceManual
	end := event.StartDate.Add(2 * time.Hour)
	event.EndDate = &end
	if err := db.Create(&event).Error; err != nil {
		fmt.Printf("Warning: Could not seed event %s: %v\n", slug, err)
	}
}
