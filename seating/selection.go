package seating

import (
	"sync"

	"tickethub-cli/model"
)

// Selection is the ordered set of seats a user has picked for one event.
// It is safe for concurrent use.
type Selection struct {
	mu     sync.Mutex
	layout Layout
	ids    []string
}

func NewSelection() *Selection {
	return &Selection{}
}

// Bind attaches a layout. Binding a different event clears the selection;
// rebinding the same event keeps seats that are still available.
func (s *Selection) Bind(layout Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if layout.EventId != s.layout.EventId {
		s.ids = nil
	}
	s.layout = layout

	kept := s.ids[:0]
	for _, id := range s.ids {
		if seat, ok := layout.Seat(id); ok && seat.IsAvailable() {
			kept = append(kept, id)
		}
	}
	s.ids = kept
}

// EventId returns the id of the bound event.
func (s *Selection) EventId() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.EventId
}

// Layout returns the bound layout without the selection applied.
func (s *Selection) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// Toggle adds an available seat or removes a selected one. Booked and
// unknown seats are ignored. It reports whether the selection changed.
func (s *Selection) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
		return true
	}
	seat, ok := s.layout.Seat(id)
	if !ok || !seat.IsAvailable() {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove drops a seat from the selection if present.
func (s *Selection) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
	}
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
}

func (s *Selection) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the selected seat ids in selection order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Seats returns the selected seats in selection order.
func (s *Selection) Seats() []model.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Seat, 0, len(s.ids))
	for _, id := range s.ids {
		if seat, ok := s.layout.Seat(id); ok {
			out = append(out, seat)
		}
	}
	return out
}

// Overlay returns the bound layout's seats with selected seats marked.
func (s *Selection) Overlay() []model.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Seat, len(s.layout.Seats))
	copy(out, s.layout.Seats)
	for i := range out {
		if s.indexOf(out[i].Id) >= 0 {
			out[i].Status = model.SeatSelected
		}
	}
	return out
}

func (s *Selection) indexOf(id string) int {
	for i, existing := range s.ids {
		if existing == id {
			return i
		}
	}
	return -1
}
