package seating

import (
	"testing"

	"tickethub-cli/model"
)

func testEvent(total, available int, reported bool) model.Event {
	return model.Event{
		Id:             "evt-1",
		Title:          "Arena Night",
		Price:          model.PriceTiers{Regular: 20, Vip: 50, Premium: 35},
		TotalSeats:     total,
		AvailableSeats: available,
		SeatsReported:  reported,
	}
}

func TestGenerate_SeatTypeDerivation(t *testing.T) {
	layout := Generate(testEvent(120, 120, true))

	for _, seat := range layout.Seats {
		var want model.SeatType
		switch seat.Row {
		case "A", "B":
			want = model.SeatVip
		case "I", "J":
			want = model.SeatPremium
		default:
			want = model.SeatRegular
		}
		if seat.Type != want {
			t.Fatalf("seat %s: expected %s, got %s", seat.Id, want, seat.Type)
		}
		if seat.Price != testEvent(0, 0, false).Price.For(want) {
			t.Fatalf("seat %s: unexpected price %v", seat.Id, seat.Price)
		}
	}
}

func TestGenerate_SeatCountInvariant(t *testing.T) {
	tests := []struct {
		name      string
		event     model.Event
		total     int
		available int
	}{
		{name: "small venue", event: testEvent(24, 20, true), total: 24, available: 20},
		{name: "missing capacity", event: testEvent(0, 0, false), total: 120, available: 96},
		{name: "negative capacity", event: testEvent(-5, 0, false), total: 120, available: 96},
		{name: "availability not reported", event: testEvent(50, 0, false), total: 50, available: 40},
		{name: "sold out", event: testEvent(30, 0, true), total: 30, available: 0},
		{name: "available above total", event: testEvent(10, 25, true), total: 10, available: 10},
		{name: "capacity beyond grid", event: testEvent(500, 500, true), total: 120, available: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := Generate(tt.event)
			if len(layout.Seats) != tt.total {
				t.Fatalf("expected %d seats, got %d", tt.total, len(layout.Seats))
			}
			available := 0
			for i, seat := range layout.Seats {
				if seat.IsAvailable() {
					if i != available {
						t.Fatalf("available seats must come first, seat %s at %d", seat.Id, i)
					}
					available++
				}
			}
			if available != tt.available {
				t.Fatalf("expected %d available, got %d", tt.available, available)
			}
			if layout.Source != SourceGenerated || !layout.Generated() {
				t.Fatalf("expected generated source, got %s", layout.Source)
			}
		})
	}
}

func TestGenerate_RowMajorIds(t *testing.T) {
	layout := Generate(testEvent(14, 14, true))
	if layout.Seats[0].Id != "A1" || layout.Seats[11].Id != "A12" || layout.Seats[12].Id != "B1" || layout.Seats[13].Id != "B2" {
		t.Fatalf("unexpected ids: %s %s %s %s", layout.Seats[0].Id, layout.Seats[11].Id, layout.Seats[12].Id, layout.Seats[13].Id)
	}
	rows := layout.Rows()
	if len(rows) != 2 || len(rows[0]) != 12 || len(rows[1]) != 2 {
		t.Fatalf("unexpected row grouping: %d rows", len(rows))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	first := Generate(testEvent(60, 33, true))
	second := Generate(testEvent(60, 33, true))
	for i := range first.Seats {
		if first.Seats[i] != second.Seats[i] {
			t.Fatalf("seat %d differs: %+v vs %+v", i, first.Seats[i], second.Seats[i])
		}
	}
}
