package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type SeatType string

const (
	SeatRegular SeatType = "regular"
	SeatVip     SeatType = "vip"
	SeatPremium SeatType = "premium"
)

// SeatTypes lists the tiers from cheapest to most expensive layout position.
var SeatTypes = []SeatType{SeatRegular, SeatVip, SeatPremium}

func (t SeatType) Valid() bool {
	switch t {
	case SeatRegular, SeatVip, SeatPremium:
		return true
	}
	return false
}

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
	SeatSelected  SeatStatus = "selected"
)

// Seat is one seat of an event layout. Status is available or booked as
// reported (or generated); selected only appears on a selection overlay.
type Seat struct {
	Id     string     `json:"id"`
	Row    string     `json:"row"`
	Number int        `json:"number"`
	Type   SeatType   `json:"type"`
	Status SeatStatus `json:"status"`
	Price  float64    `json:"price"`
}

func (s Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}

// SeatPayload is a seat record from the backend seats endpoint.
type SeatPayload struct {
	Id     string `json:"id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// SeatID is the structured form of an external seat identifier like "A1".
type SeatID struct {
	Row    string
	Number int
}

var seatIDPattern = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)

var ErrInvalidSeatID = errors.New("invalid seat id")

// ParseSeatID parses "{row}{number}" identifiers. Rows are one or more
// uppercase letters, numbers are positive.
func ParseSeatID(raw string) (SeatID, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	match := seatIDPattern.FindStringSubmatch(value)
	if match == nil {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeatID, raw)
	}
	number, err := strconv.Atoi(match[2])
	if err != nil || number <= 0 {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeatID, raw)
	}
	return SeatID{Row: match[1], Number: number}, nil
}

func (id SeatID) String() string {
	return fmt.Sprintf("%s%d", id.Row, id.Number)
}

func (id SeatID) IsZero() bool {
	return id.Row == "" && id.Number == 0
}
