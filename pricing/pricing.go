// Package pricing derives order totals from a seat selection.
package pricing

import (
	"math"

	"tickethub-cli/model"
)

// ConvenienceFeeRate is the share of the subtotal charged as a convenience fee.
const ConvenienceFeeRate = 0.05

// Quote is the price breakdown of an order.
type Quote struct {
	Subtotal       float64 `json:"subtotal"`
	ConvenienceFee float64 `json:"convenienceFee"`
	Total          float64 `json:"total"`
}

// IsZero reports whether nothing is being charged.
func (q Quote) IsZero() bool {
	return q.Subtotal == 0 && q.ConvenienceFee == 0 && q.Total == 0
}

// Price computes subtotal, fee and total for the given seats. The fee is
// rounded half-up to a whole currency unit.
func Price(seats []model.Seat) Quote {
	var subtotal float64
	for _, seat := range seats {
		subtotal += seat.Price
	}
	fee := Fee(subtotal)
	return Quote{
		Subtotal:       subtotal,
		ConvenienceFee: fee,
		Total:          subtotal + fee,
	}
}

// Fee returns the convenience fee for a subtotal.
func Fee(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	return math.Floor(subtotal*ConvenienceFeeRate + 0.5)
}

// OrderDraft is the order handed to checkout. It is rebuilt from the
// selection whenever it is needed and never mutated.
type OrderDraft struct {
	Event model.Event
	Seats []model.Seat
	Quote Quote
}

// NewDraft builds an order draft for the given event and seats.
func NewDraft(event model.Event, seats []model.Seat) OrderDraft {
	copied := make([]model.Seat, len(seats))
	copy(copied, seats)
	return OrderDraft{
		Event: event,
		Seats: copied,
		Quote: Price(copied),
	}
}

// SeatIDs returns the external ids of the draft's seats in selection order.
func (d OrderDraft) SeatIDs() []string {
	ids := make([]string, 0, len(d.Seats))
	for _, seat := range d.Seats {
		ids = append(ids, seat.Id)
	}
	return ids
}

// Empty reports whether the draft has no seats.
func (d OrderDraft) Empty() bool {
	return len(d.Seats) == 0
}

// TierCount is the number of seats of one tier in an order and their cost.
type TierCount struct {
	Type   model.SeatType
	Count  int
	Amount float64
}

// ByTier groups the draft's seats per tier in regular, vip, premium order.
// Tiers without seats are omitted.
func (d OrderDraft) ByTier() []TierCount {
	counts := map[model.SeatType]*TierCount{}
	for _, seat := range d.Seats {
		entry, ok := counts[seat.Type]
		if !ok {
			entry = &TierCount{Type: seat.Type}
			counts[seat.Type] = entry
		}
		entry.Count++
		entry.Amount += seat.Price
	}
	var out []TierCount
	for _, tier := range model.SeatTypes {
		if entry, ok := counts[tier]; ok {
			out = append(out, *entry)
		}
	}
	return out
}
