package seating

import "tickethub-cli/model"

// TierStats counts seats of one tier by status.
type TierStats struct {
	Type      model.SeatType
	Price     float64
	Available int
	Booked    int
	Selected  int
}

// Stats summarizes an overlaid layout per tier in regular, vip, premium order.
func Stats(seats []model.Seat) []TierStats {
	byTier := map[model.SeatType]*TierStats{}
	for _, seat := range seats {
		entry, ok := byTier[seat.Type]
		if !ok {
			entry = &TierStats{Type: seat.Type, Price: seat.Price}
			byTier[seat.Type] = entry
		}
		switch seat.Status {
		case model.SeatAvailable:
			entry.Available++
		case model.SeatSelected:
			entry.Selected++
		default:
			entry.Booked++
		}
	}

	var out []TierStats
	for _, tier := range model.SeatTypes {
		if entry, ok := byTier[tier]; ok {
			out = append(out, *entry)
		}
	}
	return out
}
