package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryMovies   Category = "movies"
	CategoryConcerts Category = "concerts"
	CategorySports   Category = "sports"
)

// Categories lists the catalog categories in display order.
var Categories = []Category{CategoryMovies, CategoryConcerts, CategorySports}

func (c Category) Valid() bool {
	switch c {
	case CategoryMovies, CategoryConcerts, CategorySports:
		return true
	}
	return false
}

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventOngoing, EventCompleted, EventCancelled:
		return true
	}
	return false
}

// PriceTiers holds the per-seat price of each tier.
type PriceTiers struct {
	Regular float64 `json:"regular"`
	Vip     float64 `json:"vip"`
	Premium float64 `json:"premium"`
}

// For returns the price of the given tier. Unknown tiers cost the regular price.
func (p PriceTiers) For(tier SeatType) float64 {
	switch tier {
	case SeatVip:
		return p.Vip
	case SeatPremium:
		return p.Premium
	default:
		return p.Regular
	}
}

// Event is the canonical, fully populated event record.
type Event struct {
	Id             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Category       Category    `json:"category"`
	Date           string      `json:"date"`
	Time           string      `json:"time"`
	Venue          string      `json:"venue"`
	Poster         string      `json:"poster"`
	Price          PriceTiers  `json:"price"`
	TotalSeats     int         `json:"totalSeats"`
	AvailableSeats int         `json:"availableSeats"`
	SeatsReported  bool        `json:"seatsReported"`
	Rating         *float64    `json:"rating,omitempty"`
	Tags           []string    `json:"tags"`
	Status         EventStatus `json:"status"`
}

// EventPayload is an event record as the backend sends it. Every optional
// field is a pointer so normalization can tell "missing" from "zero".
type EventPayload struct {
	Id             FlexibleID    `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Category       string        `json:"category"`
	StartTime      string        `json:"startTime"`
	Date           string        `json:"date"`
	Time           string        `json:"time"`
	Venue          string        `json:"venue"`
	Poster         string        `json:"poster"`
	Price          *PricePayload `json:"price"`
	AvailableSeats *int          `json:"availableSeats"`
	TotalSeats     *int          `json:"totalSeats"`
	Rating         *float64      `json:"rating"`
	Tags           []string      `json:"tags"`
	Status         string        `json:"status"`
}

type PricePayload struct {
	Regular *float64 `json:"regular"`
	Vip     *float64 `json:"vip"`
	Premium *float64 `json:"premium"`
}

// FlexibleID accepts identifiers sent either as JSON strings or numbers.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string {
	return string(f)
}
