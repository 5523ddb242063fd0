// Package catalog reads the public event catalog and turns backend records
// into fully populated events.
package catalog

import (
	"strings"
	"time"

	"tickethub-cli/model"
)

// DefaultPoster is shown for events without artwork.
const DefaultPoster = "/logo192.png"

var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Normalize maps a backend record to an Event, filling every missing field
// with its default. placeholder replaces a missing poster; empty means DefaultPoster.
func Normalize(payload model.EventPayload, placeholder string) model.Event {
	if placeholder == "" {
		placeholder = DefaultPoster
	}

	event := model.Event{
		Id:          payload.Id.String(),
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Category:    normalizeCategory(payload.Category),
		Venue:       strings.TrimSpace(payload.Venue),
		Poster:      strings.TrimSpace(payload.Poster),
		Status:      normalizeStatus(payload.Status),
		Tags:        normalizeTags(payload.Tags),
	}
	if event.Poster == "" {
		event.Poster = placeholder
	}

	start := strings.TrimSpace(payload.StartTime)
	event.Date = start
	if event.Date == "" {
		event.Date = strings.TrimSpace(payload.Date)
	}
	event.Time = strings.TrimSpace(payload.Time)
	if event.Time == "" && start != "" {
		if parsed, ok := parseStartTime(start); ok {
			event.Time = parsed.Format("15:04")
		}
	}

	if payload.Price != nil {
		event.Price = model.PriceTiers{
			Regular: nonNegative(payload.Price.Regular),
			Vip:     nonNegative(payload.Price.Vip),
			Premium: nonNegative(payload.Price.Premium),
		}
	}

	if payload.TotalSeats != nil && *payload.TotalSeats > 0 {
		event.TotalSeats = *payload.TotalSeats
	}
	if payload.AvailableSeats != nil {
		event.SeatsReported = true
		event.AvailableSeats = max(*payload.AvailableSeats, 0)
		if event.TotalSeats == 0 {
			event.TotalSeats = event.AvailableSeats
		}
		event.AvailableSeats = min(event.AvailableSeats, event.TotalSeats)
	}

	if payload.Rating != nil {
		rating := min(max(*payload.Rating, 0), 5)
		event.Rating = &rating
	}
	return event
}

// NormalizeAll normalizes a list, dropping records without an id.
func NormalizeAll(payloads []model.EventPayload, placeholder string) []model.Event {
	events := make([]model.Event, 0, len(payloads))
	for _, payload := range payloads {
		if payload.Id.String() == "" {
			continue
		}
		events = append(events, Normalize(payload, placeholder))
	}
	return events
}

func parseStartTime(value string) (time.Time, bool) {
	for _, layout := range startTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func normalizeCategory(raw string) model.Category {
	category := model.Category(strings.ToLower(strings.TrimSpace(raw)))
	if category.Valid() {
		return category
	}
	return model.CategoryMovies
}

func normalizeStatus(raw string) model.EventStatus {
	status := model.EventStatus(strings.ToLower(strings.TrimSpace(raw)))
	if status.Valid() {
		return status
	}
	return model.EventUpcoming
}

func normalizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func nonNegative(value *float64) float64 {
	if value == nil || *value < 0 {
		return 0
	}
	return *value
}
