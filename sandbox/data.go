package sandbox

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tickethub-cli/model"
	"tickethub-cli/seating"
)

type account struct {
	Id           int64
	FullName     string
	Email        string
	Phone        string
	Role         model.Role
	PasswordHash []byte
	JoinedAt     time.Time
}

type eventRecord struct {
	Id          int64
	Title       string
	Description string
	Category    model.Category
	StartTime   time.Time
	Venue       string
	Poster      string
	Price       model.PriceTiers
	TotalSeats  int
	Rating      *float64
	Tags        []string
	Status      model.EventStatus
	Published   bool
	// seats is the authoritative layout; booked seats are marked in place.
	seats []model.Seat
}

func (e *eventRecord) available() int {
	count := 0
	for _, seat := range e.seats {
		if seat.IsAvailable() {
			count++
		}
	}
	return count
}

type bookingRecord struct {
	Id            string
	UserId        int64
	EventId       int64
	Seats         []string
	Subtotal      float64
	Fee           float64
	TotalAmount   float64
	PaymentMethod model.PaymentMethod
	Status        model.BookingStatus
	CreatedAt     time.Time
}

// memStore holds all sandbox state behind one lock.
type memStore struct {
	mu          sync.Mutex
	nextUserId  int64
	accounts    []*account
	events      []*eventRecord
	bookings    []*bookingRecord
	idempotency map[string]string
}

func newMemStore() *memStore {
	return &memStore{nextUserId: 1, idempotency: map[string]string{}}
}

func (s *memStore) addAccount(fullName, email, phone, password string, role model.Role, cost int, now time.Time) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acct := &account{
		Id:           s.nextUserId,
		FullName:     fullName,
		Email:        strings.ToLower(email),
		Phone:        phone,
		Role:         role,
		PasswordHash: hash,
		JoinedAt:     now,
	}
	s.nextUserId++
	s.accounts = append(s.accounts, acct)
	return acct, nil
}

func (s *memStore) accountByEmail(email string) *account {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, acct := range s.accounts {
		if acct.Email == email {
			return acct
		}
	}
	return nil
}

func (s *memStore) accountById(id int64) *account {
	for _, acct := range s.accounts {
		if acct.Id == id {
			return acct
		}
	}
	return nil
}

func (s *memStore) eventById(id int64) *eventRecord {
	for _, event := range s.events {
		if event.Id == id {
			return event
		}
	}
	return nil
}

func (s *memStore) addEvent(event *eventRecord, available int) {
	layout := seating.Generate(model.Event{
		Id:             fmt.Sprint(event.Id),
		Price:          event.Price,
		TotalSeats:     event.TotalSeats,
		AvailableSeats: available,
		SeatsReported:  true,
	})
	event.seats = layout.Seats
	event.TotalSeats = len(layout.Seats)
	s.events = append(s.events, event)
}

func rating(v float64) *float64 { return &v }

func seedEvents(s *memStore, now time.Time) {
	day := now.Truncate(24 * time.Hour)
	s.addEvent(&eventRecord{
		Id: 1, Title: "Midnight Premiere: Orbit", Description: "Opening night of the space thriller in IMAX.",
		Category: model.CategoryMovies, StartTime: day.Add(5*24*time.Hour + 21*time.Hour), Venue: "Galaxy Cinemas, Screen 1",
		Price: model.PriceTiers{Regular: 12, Vip: 30, Premium: 20}, TotalSeats: 120, Rating: rating(4.5),
		Tags: []string{"IMAX", "Sci-Fi"}, Status: model.EventUpcoming, Published: true,
	}, 96)
	s.addEvent(&eventRecord{
		Id: 2, Title: "Arena Night Live", Description: "An intimate acoustic set.",
		Category: model.CategoryConcerts, StartTime: day.Add(9*24*time.Hour + 19*time.Hour + 30*time.Minute), Venue: "Blue Note Hall",
		Price: model.PriceTiers{Regular: 20, Vip: 50, Premium: 35}, TotalSeats: 24, Rating: rating(4.8),
		Tags: []string{"Live", "Acoustic"}, Status: model.EventUpcoming, Published: true,
	}, 20)
	s.addEvent(&eventRecord{
		Id: 3, Title: "City Derby", Description: "Season decider between the city rivals.",
		Category: model.CategorySports, StartTime: day.Add(12*24*time.Hour + 18*time.Hour), Venue: "Riverside Stadium",
		Price: model.PriceTiers{Regular: 25, Vip: 60, Premium: 40}, TotalSeats: 60,
		Tags: []string{"Football", "Live"}, Status: model.EventUpcoming, Published: true,
	}, 45)
	s.addEvent(&eventRecord{
		Id: 4, Title: "Director's Cut Screening", Description: "Private screening, not yet on sale.",
		Category: model.CategoryMovies, StartTime: day.Add(30 * 24 * time.Hour), Venue: "Galaxy Cinemas, Screen 3",
		Price: model.PriceTiers{Regular: 15, Vip: 35, Premium: 25}, TotalSeats: 36,
		Status: model.EventUpcoming, Published: false,
	}, 36)
}
