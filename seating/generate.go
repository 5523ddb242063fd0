// Package seating produces seat layouts for events and tracks the seats a
// user has picked.
package seating

import (
	"tickethub-cli/model"
)

const (
	// DefaultTotalSeats is used when an event does not report its capacity.
	DefaultTotalSeats = 120
	SeatsPerRow       = 12
	// DefaultAvailableRatio is the share of seats shown as available when the
	// event does not report availability.
	DefaultAvailableRatio = 0.8
)

// Rows are the fixed row labels of a generated layout.
var Rows = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

// Source tells where a layout came from.
type Source string

const (
	SourceBackend   Source = "backend"
	SourceGenerated Source = "generated"
)

// Layout is an event's seat map.
type Layout struct {
	EventId string
	Source  Source
	Seats   []model.Seat
}

// Generated reports whether the layout was synthesized locally. Generated
// availability is an estimate; the backend stays authoritative at checkout.
func (l Layout) Generated() bool {
	return l.Source == SourceGenerated
}

// Seat returns the seat with the given id.
func (l Layout) Seat(id string) (model.Seat, bool) {
	for _, seat := range l.Seats {
		if seat.Id == id {
			return seat, true
		}
	}
	return model.Seat{}, false
}

// Rows returns the layout's seats grouped by row in layout order.
func (l Layout) Rows() [][]model.Seat {
	var rows [][]model.Seat
	index := map[string]int{}
	for _, seat := range l.Seats {
		i, ok := index[seat.Row]
		if !ok {
			i = len(rows)
			index[seat.Row] = i
			rows = append(rows, nil)
		}
		rows[i] = append(rows[i], seat)
	}
	return rows
}

// TierForRow returns the tier of a generated row: the first two rows are vip,
// the last two premium and the rest regular.
func TierForRow(rowIndex int) model.SeatType {
	switch {
	case rowIndex < 2:
		return model.SeatVip
	case rowIndex >= len(Rows)-2:
		return model.SeatPremium
	default:
		return model.SeatRegular
	}
}

// Generate synthesizes a deterministic layout for an event: up to ten rows
// of twelve seats, filled row-major until the event's capacity is reached.
func Generate(event model.Event) Layout {
	total := event.TotalSeats
	if total <= 0 {
		total = DefaultTotalSeats
	}

	available := int(float64(total) * DefaultAvailableRatio)
	if event.SeatsReported {
		available = event.AvailableSeats
	}
	if available < 0 {
		available = 0
	}

	seats := make([]model.Seat, 0, min(total, len(Rows)*SeatsPerRow))
	for rowIndex, row := range Rows {
		tier := TierForRow(rowIndex)
		for number := 1; number <= SeatsPerRow; number++ {
			if len(seats) >= total {
				break
			}
			status := model.SeatBooked
			if len(seats) < available {
				status = model.SeatAvailable
			}
			seats = append(seats, model.Seat{
				Id:     model.SeatID{Row: row, Number: number}.String(),
				Row:    row,
				Number: number,
				Type:   tier,
				Status: status,
				Price:  event.Price.For(tier),
			})
		}
	}

	return Layout{EventId: event.Id, Source: SourceGenerated, Seats: seats}
}
