// File: /controllers/event_controller_test.go
package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdojo-api/models"
)

type eventResponse struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Slug             string                  `json:"slug"`
	Source           string                  `json:"source"`
	StartDate        time.Time               `json:"start_date"`
	AttendanceCounts models.AttendanceCounts `json:"attendance_counts"`
}

func listEvents(t *testing.T, env *testEnv, path string) []eventResponse {
	t.Helper()
	w := doJSON(t, env.router, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var events []eventResponse
	decodeBody(t, w, &events)
	return events
}

func TestTodayWindow(t *testing.T) {
	env := setupEnv(t)
	today := createTestEvent(t, env.db, "Today Show", time.Now())
	createTestEvent(t, env.db, "Far Future", time.Now().Add(72*time.Hour))

	events := listEvents(t, env, "/api/v1/events/today")
	require.Len(t, events, 1)
	assert.Equal(t, today.ID, events[0].ID)
}

func TestUpcomingStrictlyFutureAscending(t *testing.T) {
	env := setupEnv(t)
	createTestEvent(t, env.db, "Yesterday", time.Now().Add(-24*time.Hour))
	later := createTestEvent(t, env.db, "Later", time.Now().Add(48*time.Hour))
	sooner := createTestEvent(t, env.db, "Sooner", time.Now().Add(24*time.Hour))

	events := listEvents(t, env, "/api/v1/events/upcoming")
	require.Len(t, events, 2)
	assert.Equal(t, sooner.ID, events[0].ID)
	assert.Equal(t, later.ID, events[1].ID)
}

func TestAllSortedDescendingWithWindow(t *testing.T) {
	env := setupEnv(t)
	older := createTestEvent(t, env.db, "Older", time.Now().Add(-48*time.Hour))
	newer := createTestEvent(t, env.db, "Newer", time.Now().Add(48*time.Hour))

	events := listEvents(t, env, "/api/v1/events/all")
	require.Len(t, events, 2)
	assert.Equal(t, newer.ID, events[0].ID)
	assert.Equal(t, older.ID, events[1].ID)

	from := time.Now().Format("2006-01-02")
	events = listEvents(t, env, "/api/v1/events/all?from="+from)
	require.Len(t, events, 1)
	assert.Equal(t, newer.ID, events[0].ID)
}

func TestQueryFilters(t *testing.T) {
	env := setupEnv(t)

	music := models.Category{ID: uuid.New().String(), Name: "Music", Slug: "music"}
	require.NoError(t, env.db.Create(&music).Error)
	prague := models.Venue{ID: uuid.New().String(), Name: "Grand Hall", City: "Prague", Country: "CZ"}
	require.NoError(t, env.db.Create(&prague).Error)

	jazz := createTestEvent(t, env.db, "Jazz Night", time.Now().Add(24*time.Hour), func(e *models.Event) {
		e.CategoryID = &music.ID
		e.VenueID = &prague.ID
		e.Description = "An evening of smooth jazz"
	})
	createTestEvent(t, env.db, "Cooking Class", time.Now().Add(24*time.Hour))

	events := listEvents(t, env, "/api/v1/events/all?category=music")
	require.Len(t, events, 1)
	assert.Equal(t, jazz.ID, events[0].ID)

	events = listEvents(t, env, "/api/v1/events/all?city=prag")
	require.Len(t, events, 1)
	assert.Equal(t, jazz.ID, events[0].ID)

	events = listEvents(t, env, "/api/v1/events/all?q=smooth")
	require.Len(t, events, 1)
	assert.Equal(t, jazz.ID, events[0].ID)

	events = listEvents(t, env, "/api/v1/events/all?q=nothing-matches")
	assert.Empty(t, events)
}

func TestPrivateEventsHiddenFromListings(t *testing.T) {
	env := setupEnv(t)
	code := "ABC"
	createTestEvent(t, env.db, "Secret Party", time.Now().Add(24*time.Hour), func(e *models.Event) {
		e.IsPrivate = true
		e.AccessCode = &code
	})
	public := createTestEvent(t, env.db, "Public Party", time.Now().Add(24*time.Hour))

	events := listEvents(t, env, "/api/v1/events/upcoming")
	require.Len(t, events, 1)
	assert.Equal(t, public.ID, events[0].ID)

	events = listEvents(t, env, "/api/v1/events/upcoming?code=ABC")
	assert.Len(t, events, 2)
}

func TestGetBySlugPrivacyGating(t *testing.T) {
	env := setupEnv(t)
	code := "ABC"
	event := createTestEvent(t, env.db, "Secret Party", time.Now().Add(24*time.Hour), func(e *models.Event) {
		e.Slug = "secret-party"
		e.IsPrivate = true
		e.AccessCode = &code
	})

	w := doJSON(t, env.router, http.MethodGet, "/api/v1/events/by-slug/secret-party", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.router, http.MethodGet, "/api/v1/events/by-slug/secret-party?code=WRONG", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.router, http.MethodGet, "/api/v1/events/by-slug/secret-party?code=ABC", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got eventResponse
	decodeBody(t, w, &got)
	assert.Equal(t, event.ID, got.ID)

	// The header form works too.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/by-slug/secret-party", nil)
	req.Header.Set("X-Event-Code", "ABC")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w = doJSON(t, env.router, http.MethodGet, "/api/v1/events/by-slug/no-such-slug", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateEvent(t *testing.T) {
	env := setupEnv(t)

	// Anonymous create: slug derived from title.
	w := doJSON(t, env.router, http.MethodPost, "/api/v1/events", "", map[string]interface{}{
		"title":      "My Garden Party!",
		"start_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"city":       "Brno",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Event
	decodeBody(t, w, &created)
	assert.Equal(t, "my-garden-party", created.Slug)
	assert.Nil(t, created.OwnerID)
	require.NotNil(t, created.VenueID)

	// Venue was created on demand.
	var venue models.Venue
	require.NoError(t, env.db.First(&venue, "id = ?", *created.VenueID).Error)
	assert.Equal(t, "Brno", venue.City)

	// Same slug again conflicts.
	w = doJSON(t, env.router, http.MethodPost, "/api/v1/events", "", map[string]interface{}{
		"title":      "My Garden Party!",
		"start_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Authenticated create records ownership; private events get an access code.
	user := createTestUser(t, env.db, "Alice")
	w = doJSON(t, env.router, http.MethodPost, "/api/v1/events", tokenFor(t, user.ID), map[string]interface{}{
		"title":      "Invite Only",
		"start_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"is_private": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var private models.Event
	decodeBody(t, w, &private)
	require.NotNil(t, private.OwnerID)
	assert.Equal(t, user.ID, *private.OwnerID)

	var stored models.Event
	require.NoError(t, env.db.First(&stored, "id = ?", private.ID).Error)
	require.NotNil(t, stored.AccessCode)
	assert.Len(t, *stored.AccessCode, 6)
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	env := setupEnv(t)
	owner := createTestUser(t, env.db, "Owner")
	intruder := createTestUser(t, env.db, "Intruder")

	event := createTestEvent(t, env.db, "Mine", time.Now().Add(24*time.Hour), func(e *models.Event) {
		e.OwnerID = &owner.ID
	})

	// Intruder cannot touch it.
	w := doJSON(t, env.router, http.MethodPut, "/api/v1/events/"+event.ID, tokenFor(t, intruder.ID),
		map[string]string{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, env.router, http.MethodDelete, "/api/v1/events/"+event.ID, tokenFor(t, intruder.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Owner can update.
	w = doJSON(t, env.router, http.MethodPut, "/api/v1/events/"+event.ID, tokenFor(t, owner.ID),
		map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Event
	require.NoError(t, env.db.First(&updated, "id = ?", event.ID).Error)
	assert.Equal(t, "Renamed", updated.Title)

	// Delete cleans up RSVP rows too.
	rsvpUser := createTestUser(t, env.db, "Guest")
	w = doJSON(t, env.router, http.MethodPost, "/api/v1/attendances/rsvp", tokenFor(t, rsvpUser.ID),
		map[string]string{"event_id": event.ID, "status": "going"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.router, http.MethodDelete, "/api/v1/events/"+event.ID, tokenFor(t, owner.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var attendanceCount int64
	env.db.Model(&models.Attendance{}).Where("event_id = ?", event.ID).Count(&attendanceCount)
	assert.Zero(t, attendanceCount)

	w = doJSON(t, env.router, http.MethodPut, "/api/v1/events/"+event.ID, tokenFor(t, owner.ID),
		map[string]string{"title": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFallbackOnlyWhenLocalEmpty(t *testing.T) {
	env := setupEnv(t)

	var tmHits, bitHits int64
	tmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&tmHits, 1)
		if r.URL.Query().Get("countryCode") != "CZ" {
			fmt.Fprint(w, `{}`)
			return
		}
		start := time.Now().Add(24 * time.Hour).UTC().Format("2006-01-02T15:04:05Z")
		payload := map[string]interface{}{
			"_embedded": map[string]interface{}{
				"events": []map[string]interface{}{{
					"id":   "tm-1",
					"name": "Symphonic Evening",
					"dates": map[string]interface{}{
						"start": map[string]interface{}{"dateTime": start},
					},
					"_embedded": map[string]interface{}{
						"venues": []map[string]interface{}{{
							"name":    "Rudolfinum",
							"city":    map[string]interface{}{"name": "Prague"},
							"country": map[string]interface{}{"countryCode": "CZ"},
						}},
					},
				}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	defer tmServer.Close()

	bitServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&bitHits, 1)
		fmt.Fprint(w, `[]`)
	}))
	defer bitServer.Close()

	env.discovery.TicketmasterBaseURL = tmServer.URL
	env.discovery.BandsintownBaseURL = bitServer.URL

	// Local inventory satisfies the query: no external calls.
	local := createTestEvent(t, env.db, "Local Gig", time.Now().Add(24*time.Hour))
	events := listEvents(t, env, "/api/v1/events/upcoming")
	require.Len(t, events, 1)
	assert.Equal(t, local.ID, events[0].ID)
	assert.Zero(t, atomic.LoadInt64(&tmHits))
	assert.Zero(t, atomic.LoadInt64(&bitHits))

	// Empty local window: external sources answer instead.
	require.NoError(t, env.db.Delete(&models.Event{}, "id = ?", local.ID).Error)
	events = listEvents(t, env, "/api/v1/events/upcoming")
	require.Len(t, events, 1)
	assert.Equal(t, "Symphonic Evening", events[0].Title)
	assert.Equal(t, models.SourceTicketmaster, events[0].Source)
	assert.Positive(t, atomic.LoadInt64(&tmHits))
}
