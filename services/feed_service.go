// File: /services/feed_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventdojo-api/models"
	"eventdojo-api/utils"
)

// FeedService pulls subscribed ICS calendars and reconciles their events
// against local storage. The dedup key is (source="ics", external id); re-running
// a sync against unchanged feed content is a no-op apart from timestamps.
type FeedService struct {
	db     *gorm.DB
	client *http.Client
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{
		db: db,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SyncResult is the per-feed outcome of one sync batch.
type SyncResult struct {
	FeedID string `json:"feed_id"`
	OK     bool   `json:"ok"`
}

// SyncFeeds fetches every enabled feed (optionally narrowed to ids) and
// upserts its events. A failing feed is logged and reported as ok=false;
// it never aborts the rest of the batch.
func (fs *FeedService) SyncFeeds(ctx context.Context, ids []string) []SyncResult {
	query := fs.db.Where("enabled = ?", true)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var feeds []models.Feed
	if err := query.Limit(100).Find(&feeds).Error; err != nil {
		fmt.Printf("Feed sync: could not load feeds: %v\n", err)
		return nil
	}

	results := make([]SyncResult, 0, len(feeds))
	for _, feed := range feeds {
		if err := fs.syncFeed(ctx, feed); err != nil {
			fmt.Printf("Feed sync failed id=%s: %v\n", feed.ID, err)
			results = append(results, SyncResult{FeedID: feed.ID, OK: false})
			continue
		}

		now := time.Now()
		if err := fs.db.Model(&models.Feed{}).Where("id = ?", feed.ID).
			Update("last_synced_at", now).Error; err != nil {
			fmt.Printf("Feed sync: could not stamp feed id=%s: %v\n", feed.ID, err)
		}
		results = append(results, SyncResult{FeedID: feed.ID, OK: true})
	}

	return results
}

func (fs *FeedService) syncFeed(ctx context.Context, feed models.Feed) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return err
	}

	resp, err := fs.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	cal, err := ical.ParseCalendar(resp.Body)
	if err != nil {
		return err
	}

	for i, component := range cal.Events() {
		start, serr := component.GetStartAt()
		if serr != nil || start.IsZero() {
			// A calendar entry without a usable start time is not an event
			// we can list; skip it.
			continue
		}

		externalID := externalIdentity(feed, component, i)
		if err := fs.upsertEvent(component, externalID, start); err != nil {
			return err
		}
	}

	return nil
}

// externalIdentity computes the stable dedup key for a calendar component:
// its own UID when present, else the feed URL plus the component's position.
func externalIdentity(feed models.Feed, component *ical.VEvent, position int) string {
	if p := component.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		return p.Value
	}
	return fmt.Sprintf("%s#%d", feed.URL, position)
}

func (fs *FeedService) upsertEvent(component *ical.VEvent, externalID string, start time.Time) error {
	title := "Untitled"
	if p := component.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		title = p.Value
	}

	description := ""
	if p := component.GetProperty(ical.ComponentPropertyDescription); p != nil {
		description = p.Value
	}

	var endDate *time.Time
	if end, err := component.GetEndAt(); err == nil && !end.IsZero() {
		endDate = &end
	}

	raw := models.JSONMap{
		"uid":     externalID,
		"summary": title,
		"dtstart": start.Format(time.RFC3339),
	}
	if endDate != nil {
		raw["dtend"] = endDate.Format(time.RFC3339)
	}
	if p := component.GetProperty(ical.ComponentPropertyLocation); p != nil && p.Value != "" {
		raw["location"] = p.Value
	}

	var existing models.Event
	err := fs.db.Where("source = ? AND external_id = ?", models.SourceICS, externalID).
		First(&existing).Error

	if err == nil {
		// Re-sync of a known component: refresh mutable fields in place so the
		// event keeps its identifier and any RSVP/like history.
		return fs.db.Model(&existing).Updates(map[string]interface{}{
			"title":       title,
			"description": description,
			"start_date":  start,
			"end_date":    endDate,
			"raw":         raw,
		}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	event := models.Event{
		ID:          uuid.New().String(),
		Title:       title,
		Slug:        fs.uniqueSlug(title, externalID),
		Description: description,
		StartDate:   start,
		EndDate:     endDate,
		Source:      models.SourceICS,
		ExternalID:  &externalID,
		Raw:         raw,
	}
	return fs.db.Create(&event).Error
}

// uniqueSlug derives a slug from the title and disambiguates collisions with
// a short suffix of the external identity. Slug collisions are cosmetic (the
// dedup key is the external id), this just keeps URLs clean.
func (fs *FeedService) uniqueSlug(title, externalID string) string {
	slug := utils.Slugify(title)
	if slug == "" {
		slug = "event"
	}

	var count int64
	fs.db.Model(&models.Event{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		slug = slug + "-" + utils.SlugSuffix(externalID)
	}
	return slug
}
