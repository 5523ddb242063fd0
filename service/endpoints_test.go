package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"tickethub-cli/model"
)

func TestListPublicEvents_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events/public" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
  {"id": 1, "title": "Arena Night", "category": "concerts", "startTime": "2026-05-01T19:30:00", "price": {"regular": 30, "vip": 50, "premium": 40}},
  {"id": "evt-2", "title": "Derby"}
]`))
	}))
	defer server.Close()

	client := newTestClient(server)

	events, err := client.ListPublicEvents(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Id != "1" || events[1].Id != "evt-2" {
		t.Fatalf("unexpected ids: %q %q", events[0].Id, events[1].Id)
	}
	if events[0].Price == nil || events[0].Price.Vip == nil || *events[0].Price.Vip != 50 {
		t.Fatalf("unexpected price: %+v", events[0].Price)
	}
}

func TestGetPublicEvent_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events/public/42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.GetPublicEvent(context.Background(), "42")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := client.GetPublicEvent(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestGetSeats_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/events/7/seats" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"A1","row":"A","number":1,"type":"vip","status":"available"}]`))
	}))
	defer server.Close()

	client := newTestClient(server)

	seats, err := client.GetSeats(context.Background(), "7")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(seats) != 1 || seats[0].Id != "A1" || seats[0].Type != "vip" {
		t.Fatalf("unexpected seats: %+v", seats)
	}
}

func TestCreateBooking_SinglePostWithHeaders(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/user/bookings" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(HeaderIdempotencyKey) != "key-1" {
			t.Errorf("expected idempotency key, got %q", r.Header.Get(HeaderIdempotencyKey))
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		var body model.BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.TotalAmount != 105 || len(body.Seats) != 2 {
			t.Errorf("unexpected body: %+v", body)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.CreateBooking(context.Background(), "tok", "key-1", model.BookingRequest{
		EventId:     "7",
		Seats:       []string{"A1", "A2"},
		TotalAmount: 105,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestCreateBooking_RequiresToken(t *testing.T) {
	client := NewClient(nil, "http://127.0.0.1:1")
	if _, err := client.CreateBooking(context.Background(), "", "", model.BookingRequest{}); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestCreateBooking_Confirmation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 991, "status": "CONFIRMED"}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	confirmation, err := client.CreateBooking(context.Background(), "tok", "", model.BookingRequest{EventId: "1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if confirmation.Reference() != "991" {
		t.Fatalf("expected reference 991, got %q", confirmation.Reference())
	}
}

func TestCreateBooking_MalformedSuccessBody(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html>created</html>`))
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.CreateBooking(context.Background(), "tok", "key-1", model.BookingRequest{EventId: "1"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestLogin_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "ana@example.com" {
			t.Errorf("unexpected email: %s", body.Email)
		}
		_, _ = w.Write([]byte(`{"token":"abc","role":"ADMIN","id":3,"fullName":"Ana"}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	res, err := client.Login(context.Background(), model.LoginRequest{Email: "ana@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if res.Token != "abc" || res.ToUser().Role != model.RoleAdmin || res.ToUser().Id != "3" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestLogin_RejectedIsUnauthorized(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.Login(context.Background(), model.LoginRequest{Email: "a@b.co", Password: "x"})
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/details":
			_, _ = w.Write([]byte(`{"id": 5, "fullName": "Ravi", "email": "ravi@example.com", "role": "user"}`))
		case "/api/users/5/bookings":
			_, _ = w.Write([]byte(`[{"id": 1, "userId": 5, "eventId": 2, "totalAmount": 105, "status": "CONFIRMED", "createdAt": "2026-04-01"}]`))
		case "/api/admin/users":
			_, _ = w.Write([]byte(`[{"id": 5, "name": "Ravi"}]`))
		case "/api/admin/events":
			_, _ = w.Write([]byte(`[{"id": 2, "title": "Gig"}]`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server)
	ctx := context.Background()

	user, err := client.GetUserDetails(ctx, "tok")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if user.Id != "5" || user.Role != model.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}

	bookings, err := client.ListUserBookings(ctx, "tok", user.Id)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(bookings) != 1 || bookings[0].Status != model.BookingConfirmed || bookings[0].PaymentMethod != "card" {
		t.Fatalf("unexpected bookings: %+v", bookings)
	}

	users, err := client.ListAdminUsers(ctx, "tok")
	if err != nil || len(users) != 1 || users[0].FullName != "Ravi" {
		t.Fatalf("unexpected admin users: %+v (%v)", users, err)
	}

	events, err := client.ListAdminEvents(ctx, "tok")
	if err != nil || len(events) != 1 || events[0].Id != "2" {
		t.Fatalf("unexpected admin events: %+v (%v)", events, err)
	}
}
