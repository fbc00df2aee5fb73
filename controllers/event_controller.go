// File: /controllers/event_controller.go
package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventdojo-api/models"
	"eventdojo-api/services"
	"eventdojo-api/utils"
)

const eventPageSize = 200

type EventController struct {
	db        *gorm.DB
	discovery *services.DiscoveryService
}

func NewEventController(db *gorm.DB, discovery *services.DiscoveryService) *EventController {
	return &EventController{db: db, discovery: discovery}
}

type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
	IsPrivate   bool       `json:"is_private"`
	AccessCode  string     `json:"access_code"`
	CategoryID  *string    `json:"category_id"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	ImageURL    *string    `json:"image_url"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsPrivate   *bool      `json:"is_private"`
	AccessCode  *string    `json:"access_code"`
	CategoryID  *string    `json:"category_id"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	ImageURL    *string    `json:"image_url"`
}

// attendanceCountsFor aggregates RSVP counts for one event. An event nobody
// has responded to yields all zeroes, never an error.
func attendanceCountsFor(db *gorm.DB, eventID string) models.AttendanceCounts {
	var counts models.AttendanceCounts
	db.Model(&models.Attendance{}).Where("event_id = ? AND status = ?", eventID, models.StatusGoing).Count(&counts.Going)
	db.Model(&models.Attendance{}).Where("event_id = ? AND status = ?", eventID, models.StatusMaybe).Count(&counts.Maybe)
	db.Model(&models.Attendance{}).Where("event_id = ? AND status = ?", eventID, models.StatusNotGoing).Count(&counts.NotGoing)
	return counts
}

func (ec *EventController) withCounts(events []models.Event) []models.EventWithCounts {
	annotated := make([]models.EventWithCounts, 0, len(events))
	for _, e := range events {
		annotated = append(annotated, models.EventWithCounts{
			Event:            e,
			AttendanceCounts: attendanceCountsFor(ec.db, e.ID),
		})
	}
	return annotated
}

// applyFilters adds the shared category/city/free-text/privacy filters.
func (ec *EventController) applyFilters(c *gin.Context, query *gorm.DB) *gorm.DB {
	if category := c.Query("category"); category != "" {
		query = query.Joins("JOIN categories ON categories.id = events.category_id").
			Where("categories.slug = ?", category)
	}
	if city := c.Query("city"); city != "" {
		query = query.Joins("JOIN venues ON venues.id = events.venue_id").
			Where("venues.city LIKE ?", "%"+city+"%")
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("events.title LIKE ? OR events.description LIKE ?", "%"+q+"%", "%"+q+"%")
	}

	// Private events are hidden from listings unless the caller knows the
	// access code.
	if code := accessCode(c); code != "" {
		query = query.Where("events.is_private = ? OR events.access_code = ?", false, code)
	} else {
		query = query.Where("events.is_private = ?", false)
	}

	return query
}

func accessCode(c *gin.Context) string {
	if code := c.Query("code"); code != "" {
		return code
	}
	return c.GetHeader("X-Event-Code")
}

func parseTimeParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return &t
	}
	return nil
}

// GetAll lists events for browsing, newest start first.
func (ec *EventController) GetAll(c *gin.Context) {
	query := ec.applyFilters(c, ec.db.Model(&models.Event{}))

	if from := parseTimeParam(c.Query("from")); from != nil {
		query = query.Where("events.start_date >= ?", *from)
	}
	if to := parseTimeParam(c.Query("to")); to != nil {
		query = query.Where("events.start_date <= ?", *to)
	}

	var events []models.Event
	if err := query.Preload("Venue").Preload("Category").
		Order("events.start_date DESC").Limit(eventPageSize).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, ec.withCounts(events))
}

// GetToday lists events starting within the local midnight-to-midnight window.
func (ec *EventController) GetToday(c *gin.Context) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	ec.windowedQuery(c, start, end)
}

// GetUpcoming lists events with a strictly future start.
func (ec *EventController) GetUpcoming(c *gin.Context) {
	now := time.Now()
	start := now.Add(time.Nanosecond)
	end := time.Time{}

	if from := parseTimeParam(c.Query("from")); from != nil && from.After(start) {
		start = *from
	}
	if to := parseTimeParam(c.Query("to")); to != nil {
		end = *to
	}

	ec.windowedQuery(c, start, end)
}

func (ec *EventController) windowedQuery(c *gin.Context, from time.Time, to time.Time) {
	query := ec.applyFilters(c, ec.db.Model(&models.Event{})).
		Where("events.start_date >= ?", from)
	if !to.IsZero() {
		query = query.Where("events.start_date <= ?", to)
	}

	var events []models.Event
	if err := query.Preload("Venue").Preload("Category").
		Order("events.start_date ASC").Limit(eventPageSize).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	if len(events) == 0 {
		// Empty local inventory for the window: fall back to the external
		// discovery sources. Local results always win; the two are never merged.
		discoveryQuery := services.DiscoveryQuery{
			Keyword: c.Query("q"),
			City:    c.Query("city"),
			From:    &from,
		}
		if !to.IsZero() {
			discoveryQuery.To = &to
		}
		external := ec.discovery.FetchEvents(c.Request.Context(), discoveryQuery)

		annotated := make([]models.EventWithCounts, 0, len(external))
		for _, e := range external {
			annotated = append(annotated, models.EventWithCounts{Event: e})
		}
		c.JSON(http.StatusOK, annotated)
		return
	}

	c.JSON(http.StatusOK, ec.withCounts(events))
}

// GetBySlug returns a single event. Private events require the access code;
// a wrong code yields 403 rather than 404 since the slug's existence is not
// treated as a secret.
func (ec *EventController) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var event models.Event
	if err := ec.db.Preload("Venue").Preload("Category").Preload("Owner").
		First(&event, "slug = ?", slug).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if event.IsPrivate {
		code := accessCode(c)
		if code == "" || event.AccessCode == nil || code != *event.AccessCode {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invite required"})
			return
		}
	}

	if event.Owner != nil {
		event.Owner.Password = ""
	}

	c.JSON(http.StatusOK, models.EventWithCounts{
		Event:            event,
		AttendanceCounts: attendanceCountsFor(ec.db, event.ID),
	})
}

// CreateEvent creates a manual event. Anonymous creation is allowed; events
// created while authenticated carry an owner reference.
func (ec *EventController) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not derive a slug from the title"})
		return
	}

	var existing models.Event
	if err := ec.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
		return
	}

	event := models.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsPrivate:   req.IsPrivate,
		Source:      models.SourceManual,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}

	if req.IsPrivate {
		code := req.AccessCode
		if code == "" {
			code = generateAccessCode()
		}
		event.AccessCode = &code
	}

	if userID := c.GetString("user_id"); userID != "" {
		event.OwnerID = &userID
	}

	if req.City != "" {
		if venue, err := ec.findOrCreateVenue(req.City, req.Country); err == nil {
			event.VenueID = &venue.ID
		}
	}

	if err := ec.db.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, event)
}

// GetMine lists the caller's own events, newest first.
func (ec *EventController) GetMine(c *gin.Context) {
	userID := c.GetString("user_id")

	var events []models.Event
	if err := ec.db.Preload("Venue").Preload("Category").
		Where("owner_id = ?", userID).
		Order("created_at DESC").Limit(eventPageSize).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// UpdateEvent applies a partial update to an event owned by the caller.
func (ec *EventController) UpdateEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := ec.db.First(&event, "id = ?", eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if event.OwnerID == nil || *event.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your event"})
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil && *req.Title != "" {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}
	if req.AccessCode != nil {
		updates["access_code"] = *req.AccessCode
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.City != "" {
		if venue, err := ec.findOrCreateVenue(req.City, req.Country); err == nil {
			updates["venue_id"] = venue.ID
		}
	}

	if len(updates) > 0 {
		if err := ec.db.Model(&event).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
			return
		}
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event owned by the caller along with its RSVP and
// like rows.
func (ec *EventController) DeleteEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := ec.db.First(&event, "id = ?", eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if event.OwnerID == nil || *event.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your event"})
		return
	}

	ec.db.Where("event_id = ?", eventID).Delete(&models.Attendance{})
	ec.db.Where("event_id = ?", eventID).Delete(&models.EventLike{})

	if err := ec.db.Delete(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (ec *EventController) findOrCreateVenue(city, country string) (models.Venue, error) {
	var venue models.Venue
	err := ec.db.Where("city = ?", city).First(&venue).Error
	if err == nil {
		return venue, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Venue{}, err
	}

	venue = models.Venue{
		ID:      uuid.New().String(),
		Name:    city,
		City:    city,
		Country: country,
	}
	if err := ec.db.Create(&venue).Error; err != nil {
		return models.Venue{}, err
	}
	return venue, nil
}

func generateAccessCode() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return uuid.New().String()[:6]
	}
	return hex.EncodeToString(buf)
}
