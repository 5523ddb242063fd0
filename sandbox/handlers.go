package sandbox

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tickethub-cli/model"
	"tickethub-cli/pricing"
)

// eventResponse mirrors the backend event shape: numeric id and an RFC 3339 start time.
type eventResponse struct {
	Id             int64             `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Category       model.Category    `json:"category"`
	StartTime      string            `json:"startTime"`
	Venue          string            `json:"venue"`
	Poster         string            `json:"poster,omitempty"`
	Price          model.PriceTiers  `json:"price"`
	TotalSeats     int               `json:"totalSeats"`
	AvailableSeats int               `json:"availableSeats"`
	Rating         *float64          `json:"rating,omitempty"`
	Tags           []string          `json:"tags"`
	Status         model.EventStatus `json:"status"`
	Published      *bool             `json:"published,omitempty"`
}

type userResponse struct {
	Id            int64   `json:"id"`
	FullName      string  `json:"fullName"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	Role          string  `json:"role"`
	Status        string  `json:"status"`
	JoinDate      string  `json:"joinDate"`
	TotalBookings int     `json:"totalBookings"`
	TotalSpent    float64 `json:"totalSpent"`
}

type authResponse struct {
	userResponse
	Token string `json:"token"`
}

type bookingResponse struct {
	Id            string   `json:"id"`
	UserId        int64    `json:"userId"`
	EventId       int64    `json:"eventId"`
	Seats         []string `json:"seats"`
	TotalAmount   float64  `json:"totalAmount"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"createdAt"`
	PaymentMethod string   `json:"paymentMethod"`
}

type confirmationResponse struct {
	BookingId string `json:"bookingId"`
	Id        string `json:"id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerInput struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=20"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN user admin"`
}

type bookingInput struct {
	EventId        string              `json:"eventId" validate:"required"`
	Seats          []string            `json:"seats" validate:"required,min=1,dive,required"`
	Subtotal       float64             `json:"subtotal" validate:"gte=0"`
	ConvenienceFee float64             `json:"convenienceFee" validate:"gte=0"`
	TotalAmount    float64             `json:"totalAmount" validate:"gt=0"`
	PaymentMethod  model.PaymentMethod `json:"paymentMethod" validate:"required,oneof=card upi wallet"`
	Payer          model.Payer         `json:"payer"`
}

func (s *Server) validationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s failed on %s", first.Field(), first.Tag()))
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request body")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(in); err != nil {
		s.validationError(w, err)
		return
	}

	s.store.mu.Lock()
	acct := s.store.accountByEmail(in.Email)
	s.store.mu.Unlock()
	if acct == nil || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.respondAuth(w, http.StatusOK, acct)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(in); err != nil {
		s.validationError(w, err)
		return
	}
	role := model.ParseRole(in.Role)
	if role == "" {
		role = model.RoleUser
	}

	s.store.mu.Lock()
	if s.store.accountByEmail(in.Email) != nil {
		s.store.mu.Unlock()
		writeError(w, http.StatusConflict, "Email is already registered")
		return
	}
	acct, err := s.store.addAccount(strings.TrimSpace(in.FullName), in.Email, in.Phone, in.Password, role, s.opts.BcryptCost, s.opts.Now())
	s.store.mu.Unlock()
	if err != nil {
		s.log.Error("register failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	s.log.Info("account registered", zap.Int64("user_id", acct.Id), zap.String("role", string(acct.Role)))
	s.respondAuth(w, http.StatusCreated, acct)
}

func (s *Server) respondAuth(w http.ResponseWriter, status int, acct *account) {
	token, err := s.issueToken(acct)
	if err != nil {
		s.log.Error("sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	s.store.mu.Lock()
	user := s.userResponse(acct)
	s.store.mu.Unlock()
	writeJSON(w, status, authResponse{userResponse: user, Token: token})
}

func (s *Server) handleUserDetails(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	acct := s.store.accountById(userIDFromContext(r.Context()))
	if acct == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, s.userResponse(acct))
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]eventResponse, 0, len(s.store.events))
	for _, event := range s.store.events {
		if !event.Published {
			continue
		}
		out = append(out, eventToResponse(event, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	event := s.publishedEvent(chi.URLParam(r, "id"))
	if event == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, eventToResponse(event, false))
}

func (s *Server) handleSeats(w http.ResponseWriter, r *http.Request) {
	if s.opts.SeatsUnavailable {
		writeError(w, http.StatusServiceUnavailable, "Seat service unavailable")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	event := s.publishedEvent(chi.URLParam(r, "id"))
	if event == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	out := make([]model.SeatPayload, 0, len(event.seats))
	for _, seat := range event.seats {
		out = append(out, model.SeatPayload{
			Id:     seat.Id,
			Row:    seat.Row,
			Number: seat.Number,
			Type:   string(seat.Type),
			Status: string(seat.Status),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var in bookingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(in); err != nil {
		s.validationError(w, err)
		return
	}

	userID := userIDFromContext(r.Context())
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if key != "" {
		if bookingID, ok := s.store.idempotency[idempotencyScope(userID, key)]; ok {
			writeJSON(w, http.StatusOK, confirmationResponse{
				BookingId: bookingID,
				Id:        bookingID,
				Status:    "CONFIRMED",
				Message:   "Booking already confirmed",
			})
			return
		}
	}

	event := s.publishedEvent(in.EventId)
	if event == nil {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	indexes := make([]int, 0, len(in.Seats))
	ids := make([]string, 0, len(in.Seats))
	seats := make([]model.Seat, 0, len(in.Seats))
	seen := make(map[string]bool, len(in.Seats))
	for _, raw := range in.Seats {
		id := strings.ToUpper(strings.TrimSpace(raw))
		if seen[id] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Seat %s listed twice", id))
			return
		}
		seen[id] = true

		idx := seatIndex(event.seats, id)
		if idx < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Seat %s does not exist", id))
			return
		}
		if !event.seats[idx].IsAvailable() {
			writeError(w, http.StatusConflict, fmt.Sprintf("Seat %s is no longer available", id))
			return
		}
		indexes = append(indexes, idx)
		ids = append(ids, id)
		seats = append(seats, event.seats[idx])
	}

	quote := pricing.Price(seats)
	if !sameAmount(quote.Total, in.TotalAmount) {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("Total %.2f does not match expected %.2f", in.TotalAmount, quote.Total))
		return
	}

	for _, idx := range indexes {
		event.seats[idx].Status = model.SeatBooked
	}
	booking := &bookingRecord{
		Id:            uuid.NewString(),
		UserId:        userID,
		EventId:       event.Id,
		Seats:         ids,
		Subtotal:      quote.Subtotal,
		Fee:           quote.ConvenienceFee,
		TotalAmount:   quote.Total,
		PaymentMethod: in.PaymentMethod,
		Status:        model.BookingConfirmed,
		CreatedAt:     s.opts.Now(),
	}
	s.store.bookings = append(s.store.bookings, booking)
	if key != "" {
		s.store.idempotency[idempotencyScope(userID, key)] = booking.Id
	}

	s.log.Info("booking confirmed",
		zap.String("booking_id", booking.Id),
		zap.Int64("event_id", event.Id),
		zap.Int64("user_id", userID),
		zap.Strings("seats", booking.Seats),
		zap.Float64("total", booking.TotalAmount),
	)
	writeJSON(w, http.StatusCreated, confirmationResponse{
		BookingId: booking.Id,
		Id:        booking.Id,
		Status:    "CONFIRMED",
		Message:   "Booking confirmed",
	})
}

func (s *Server) handleUserBookings(w http.ResponseWriter, r *http.Request) {
	target, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if target != userIDFromContext(r.Context()) && roleFromContext(r.Context()) != model.RoleAdmin {
		writeError(w, http.StatusForbidden, "Cannot view another user's bookings")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := []bookingResponse{}
	for _, booking := range s.store.bookings {
		if booking.UserId != target {
			continue
		}
		out = append(out, bookingResponse{
			Id:            booking.Id,
			UserId:        booking.UserId,
			EventId:       booking.EventId,
			Seats:         booking.Seats,
			TotalAmount:   booking.TotalAmount,
			Status:        strings.ToUpper(string(booking.Status)),
			CreatedAt:     booking.CreatedAt.UTC().Format(time.RFC3339),
			PaymentMethod: string(booking.PaymentMethod),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]userResponse, 0, len(s.store.accounts))
	for _, acct := range s.store.accounts {
		out = append(out, s.userResponse(acct))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminEvents(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]eventResponse, 0, len(s.store.events))
	for _, event := range s.store.events {
		out = append(out, eventToResponse(event, true))
	}
	writeJSON(w, http.StatusOK, out)
}

// publishedEvent resolves a path id. Caller holds the store lock.
func (s *Server) publishedEvent(raw string) *eventRecord {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	event := s.store.eventById(id)
	if event == nil || !event.Published {
		return nil
	}
	return event
}

// userResponse summarises an account with its booking totals. Caller holds the store lock.
func (s *Server) userResponse(acct *account) userResponse {
	res := userResponse{
		Id:       acct.Id,
		FullName: acct.FullName,
		Email:    acct.Email,
		Phone:    acct.Phone,
		Role:     string(acct.Role),
		Status:   "active",
		JoinDate: acct.JoinedAt.UTC().Format("2006-01-02"),
	}
	for _, booking := range s.store.bookings {
		if booking.UserId == acct.Id {
			res.TotalBookings++
			res.TotalSpent += booking.TotalAmount
		}
	}
	return res
}

func eventToResponse(event *eventRecord, admin bool) eventResponse {
	res := eventResponse{
		Id:             event.Id,
		Title:          event.Title,
		Description:    event.Description,
		Category:       event.Category,
		StartTime:      event.StartTime.UTC().Format(time.RFC3339),
		Venue:          event.Venue,
		Poster:         event.Poster,
		Price:          event.Price,
		TotalSeats:     event.TotalSeats,
		AvailableSeats: event.available(),
		Rating:         event.Rating,
		Tags:           event.Tags,
		Status:         event.Status,
	}
	if res.Tags == nil {
		res.Tags = []string{}
	}
	if admin {
		published := event.Published
		res.Published = &published
	}
	return res
}

func seatIndex(seats []model.Seat, id string) int {
	for i, seat := range seats {
		if seat.Id == id {
			return i
		}
	}
	return -1
}

func idempotencyScope(userID int64, key string) string {
	return strconv.FormatInt(userID, 10) + ":" + key
}

func sameAmount(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
