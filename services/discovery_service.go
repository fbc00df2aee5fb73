// File: /services/discovery_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"eventdojo-api/config"
	"eventdojo-api/models"
	"eventdojo-api/utils"
)

var defaultCountryCodes = []string{"CZ", "SK", "PL", "AT", "DE"}

var defaultArtists = []string{
	"Hans Zimmer",
	"Ludovico Einaudi",
	"Two Steps From Hell",
	"André Rieu",
	"Apocalyptica",
	"Rammstein",
	"Imagine Dragons",
	"Depeche Mode",
}

// DiscoveryService queries third-party event sources (Ticketmaster Discovery,
// Bandsintown) and normalizes their payloads into the local event shape. It is
// a read-through fallback: results are never persisted and only requested when
// a local query comes back empty.
type DiscoveryService struct {
	client *http.Client

	// Base URLs are fields so tests can point them at stub servers.
	TicketmasterBaseURL string
	BandsintownBaseURL  string

	ticketmasterAPIKey string
	bandsintownAppID   string
}

func NewDiscoveryService(cfg *config.Config) *DiscoveryService {
	return &DiscoveryService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		TicketmasterBaseURL: "https://app.ticketmaster.com/discovery/v2",
		BandsintownBaseURL:  "https://rest.bandsintown.com",
		ticketmasterAPIKey:  cfg.TicketmasterAPIKey,
		bandsintownAppID:    cfg.BandsintownAppID,
	}
}

// DiscoveryQuery narrows the external lookup to the caller's filters.
type DiscoveryQuery struct {
	Keyword string
	City    string
	From    *time.Time
	To      *time.Time
}

// FetchEvents queries both sources, merges the results and sorts them by
// start time. Upstream failures degrade to fewer results, never to an error.
func (ds *DiscoveryService) FetchEvents(ctx context.Context, query DiscoveryQuery) []models.Event {
	events := ds.fetchTicketmaster(ctx, query)
	events = append(events, ds.fetchBandsintown(ctx, query)...)

	// Bandsintown has no server-side window filter, so enforce the window here.
	filtered := events[:0]
	for _, e := range events {
		if query.From != nil && e.StartDate.Before(*query.From) {
			continue
		}
		if query.To != nil && e.StartDate.After(*query.To) {
			continue
		}
		filtered = append(filtered, e)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].StartDate.Before(filtered[j].StartDate)
	})
	return filtered
}

type tmResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Images []struct {
		URL   string `json:"url"`
		Width int    `json:"width"`
	} `json:"images"`
	Dates struct {
		Start struct {
			DateTime string `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			Country struct {
				CountryCode string `json:"countryCode"`
			} `json:"country"`
		} `json:"venues"`
		Classifications []struct {
			Genre struct {
				Name string `json:"name"`
			} `json:"genre"`
		} `json:"classifications"`
	} `json:"_embedded"`
}

func (ds *DiscoveryService) fetchTicketmaster(ctx context.Context, query DiscoveryQuery) []models.Event {
	if ds.ticketmasterAPIKey == "" {
		return nil
	}

	params := url.Values{}
	params.Set("apikey", ds.ticketmasterAPIKey)
	params.Set("size", "50")
	if query.Keyword != "" {
		params.Set("keyword", query.Keyword)
	}
	if query.City != "" {
		params.Set("city", query.City)
	}
	if query.From != nil {
		params.Set("startDateTime", query.From.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if query.To != nil {
		params.Set("endDateTime", query.To.UTC().Format("2006-01-02T15:04:05Z"))
	}

	var events []models.Event
	for _, cc := range defaultCountryCodes {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("countryCode", cc)

		var payload tmResponse
		if err := ds.getJSON(ctx, ds.TicketmasterBaseURL+"/events.json?"+q.Encode(), &payload); err != nil {
			fmt.Printf("Ticketmaster lookup failed country=%s: %v\n", cc, err)
			continue
		}
		for _, e := range payload.Embedded.Events {
			if mapped, ok := mapTicketmasterEvent(e); ok {
				events = append(events, mapped)
			}
		}
	}
	return events
}

func mapTicketmasterEvent(e tmEvent) (models.Event, bool) {
	start, err := time.Parse(time.RFC3339, e.Dates.Start.DateTime)
	if err != nil {
		return models.Event{}, false
	}

	externalID := e.ID
	slug := externalID
	if slug == "" {
		slug = utils.Slugify(e.Name)
	}

	event := models.Event{
		Title:      e.Name,
		Slug:       slug,
		StartDate:  start,
		Source:     models.SourceTicketmaster,
		ExternalID: &externalID,
	}

	if len(e.Embedded.Venues) > 0 && e.Embedded.Venues[0].Name != "" {
		v := e.Embedded.Venues[0]
		event.Venue = &models.Venue{
			Name:    v.Name,
			City:    v.City.Name,
			Country: v.Country.CountryCode,
		}
	}
	if len(e.Embedded.Classifications) > 0 && e.Embedded.Classifications[0].Genre.Name != "" {
		genre := e.Embedded.Classifications[0].Genre.Name
		event.Category = &models.Category{
			Name: genre,
			Slug: strings.ToLower(genre),
		}
	}

	best := ""
	bestWidth := 0
	for _, img := range e.Images {
		if img.Width > bestWidth {
			best, bestWidth = img.URL, img.Width
		}
	}
	if best != "" {
		event.ImageURL = &best
	}

	return event, true
}

type bitEvent struct {
	ID       string `json:"id"`
	Datetime string `json:"datetime"`
	Artist   struct {
		Name string `json:"name"`
	} `json:"artist"`
	Venue struct {
		Name    string `json:"name"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"venue"`
}

func (ds *DiscoveryService) fetchBandsintown(ctx context.Context, query DiscoveryQuery) []models.Event {
	artists := defaultArtists
	if query.Keyword != "" {
		artists = []string{query.Keyword}
	}

	var events []models.Event
	for _, artist := range artists {
		endpoint := fmt.Sprintf("%s/artists/%s/events?app_id=%s&date=upcoming",
			ds.BandsintownBaseURL, url.PathEscape(artist), url.QueryEscape(ds.bandsintownAppID))

		var payload []bitEvent
		if err := ds.getJSON(ctx, endpoint, &payload); err != nil {
			fmt.Printf("Bandsintown lookup failed artist=%s: %v\n", artist, err)
			continue
		}
		for _, e := range payload {
			if mapped, ok := mapBandsintownEvent(e); ok {
				events = append(events, mapped)
			}
		}
	}
	return events
}

func mapBandsintownEvent(e bitEvent) (models.Event, bool) {
	start, err := time.Parse(time.RFC3339, e.Datetime)
	if err != nil {
		// Bandsintown commonly omits the zone designator.
		start, err = time.Parse("2006-01-02T15:04:05", e.Datetime)
		if err != nil {
			return models.Event{}, false
		}
	}

	artist := e.Artist.Name
	if artist == "" {
		artist = "Artist"
	}
	venueName := e.Venue.Name
	if venueName == "" {
		venueName = "Venue"
	}

	externalID := e.ID
	slug := utils.Slugify(artist) + "-" + utils.Slugify(venueName) + "-" + externalID
	if len(slug) > 100 {
		slug = slug[:100]
	}

	event := models.Event{
		Title:      artist + " @ " + venueName,
		Slug:       slug,
		StartDate:  start,
		Source:     models.SourceBandsintown,
		ExternalID: &externalID,
	}
	if e.Venue.Name != "" {
		event.Venue = &models.Venue{
			Name:    e.Venue.Name,
			City:    e.Venue.City,
			Country: e.Venue.Country,
		}
	}

	return event, true
}

func (ds *DiscoveryService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := ds.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
