// Package checkout validates the payment form and submits the order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tickethub-cli/auth"
	"tickethub-cli/logging"
	"tickethub-cli/model"
	"tickethub-cli/pricing"
	"tickethub-cli/seating"
	"tickethub-cli/service"
	"tickethub-cli/store"
)

const (
	MsgLoginRequired = "You must be logged in to complete this booking"
	MsgPaymentFailed = "Payment processing failed. Please try again."
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSubmissionInFlight = errors.New("a booking submission is already in progress")
	ErrNoSeatsSelected    = errors.New("no seats selected")
	ErrAlreadyCompleted   = errors.New("booking already completed")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrAbandoned          = errors.New("checkout abandoned")
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	}
	return "unknown"
}

// Submitter creates bookings on the backend.
type Submitter interface {
	CreateBooking(ctx context.Context, token string, idempotencyKey string, booking model.BookingRequest) (model.BookingConfirmation, error)
}

// Confirmation summarizes a completed booking.
type Confirmation struct {
	BookingId string
	// Provisional is set when the backend accepted the order without
	// returning an id and a local reference was issued instead.
	Provisional bool
	Event       model.Event
	Seats       []model.Seat
	Quote       pricing.Quote
	Method      model.PaymentMethod
	CreatedAt   time.Time
}

// SeatIDs returns the booked seat ids.
func (c Confirmation) SeatIDs() []string {
	ids := make([]string, 0, len(c.Seats))
	for _, seat := range c.Seats {
		ids = append(ids, seat.Id)
	}
	return ids
}

// Status is a snapshot of the checkout for rendering.
type Status struct {
	State        State
	FieldErrors  map[string]string
	Message      string
	Confirmation *Confirmation
}

// Checkout drives one order from form submission to confirmation.
// A failed submission returns it to idle with the message kept; a successful
// one must be Reset before the next order.
type Checkout struct {
	api       Submitter
	selection *seating.Selection
	drafts    store.DraftStore
	log       *zap.Logger
	now       func() time.Time

	mu           sync.Mutex
	state        State
	fieldErrors  map[string]string
	message      string
	confirmation *Confirmation
	generation   uint64
	// inflight stays set until the backend call returns, even after Abandon.
	inflight bool

	idempotencyKey   string
	idempotencyOrder string
}

// New creates a checkout over a seat selection. drafts may be nil.
func New(api Submitter, selection *seating.Selection, drafts store.DraftStore, log *zap.Logger) *Checkout {
	return &Checkout{
		api:       api,
		selection: selection,
		drafts:    drafts,
		log:       logging.Component(log, "checkout"),
		now:       time.Now,
	}
}

// Status returns the current state.
func (c *Checkout) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{State: c.state, Message: c.message, Confirmation: c.confirmation}
	if len(c.fieldErrors) > 0 {
		status.FieldErrors = make(map[string]string, len(c.fieldErrors))
		for k, v := range c.fieldErrors {
			status.FieldErrors[k] = v
		}
	}
	return status
}

// Draft returns the order draft for the current selection.
func (c *Checkout) Draft(event model.Event) pricing.OrderDraft {
	return pricing.NewDraft(event, c.selection.Seats())
}

// Submit validates the form, checks the session and sends the order once.
// It returns a *ValidationError for invalid input, ErrNotAuthenticated when
// the session cannot authorize the order, ErrSubmissionInFlight while another
// submission is pending and ErrPaymentFailed when the backend rejects it.
func (c *Checkout) Submit(ctx context.Context, session auth.Session, event model.Event, form Form) (Confirmation, error) {
	c.mu.Lock()
	if c.inflight || c.state == StateSubmitting {
		c.mu.Unlock()
		return Confirmation{}, ErrSubmissionInFlight
	}
	switch c.state {
	case StateSucceeded:
		c.mu.Unlock()
		return Confirmation{}, ErrAlreadyCompleted
	}
	c.state = StateValidating
	c.fieldErrors = nil
	c.message = ""

	seats := c.selection.Seats()
	if len(seats) == 0 || c.selection.EventId() != event.Id {
		c.state = StateIdle
		c.message = "Please select at least one seat"
		c.mu.Unlock()
		return Confirmation{}, ErrNoSeatsSelected
	}

	form = form.Normalized()
	if err := Validate(form); err != nil {
		c.state = StateIdle
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			c.fieldErrors = validationErr.Fields
		}
		c.mu.Unlock()
		return Confirmation{}, err
	}

	if err := session.Valid(c.now()); err != nil {
		c.state = StateIdle
		c.message = MsgLoginRequired
		c.mu.Unlock()
		return Confirmation{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	draft := pricing.NewDraft(event, seats)
	booking := model.BookingRequest{
		EventId:        event.Id,
		UserId:         session.User.Id,
		Seats:          draft.SeatIDs(),
		Subtotal:       draft.Quote.Subtotal,
		ConvenienceFee: draft.Quote.ConvenienceFee,
		TotalAmount:    draft.Quote.Total,
		PaymentMethod:  form.Method,
		PaymentDetails: form.PaymentDetails(),
		Payer:          form.Payer(),
		BillingAddress: form.BillingAddress(),
	}
	key := c.keyFor(booking)
	c.state = StateSubmitting
	c.inflight = true
	generation := c.generation
	c.mu.Unlock()

	log := c.log.With(
		zap.String("event_id", event.Id),
		zap.Strings("seats", booking.Seats),
		zap.Float64("total", booking.TotalAmount),
	)
	log.Info("submitting booking")

	res, err := c.api.CreateBooking(ctx, session.Token, key, booking)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = false

	if generation != c.generation {
		log.Info("ignoring booking response after checkout was abandoned", zap.Error(err))
		return Confirmation{}, ErrAbandoned
	}

	if errors.Is(err, service.ErrMalformedResponse) {
		log.Warn("booking accepted with an unreadable response body", zap.Error(err))
		res, err = model.BookingConfirmation{}, nil
	}
	if err != nil {
		c.state = StateIdle
		c.message = MsgPaymentFailed
		log.Warn("booking failed", zap.Error(err))
		return Confirmation{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	confirmation := Confirmation{
		BookingId: strings.TrimSpace(res.Reference()),
		Event:     event,
		Seats:     draft.Seats,
		Quote:     draft.Quote,
		Method:    form.Method,
		CreatedAt: c.now(),
	}
	if confirmation.BookingId == "" {
		confirmation.BookingId = provisionalReference(confirmation.CreatedAt)
		confirmation.Provisional = true
		log.Warn("backend returned no booking id, issued local reference", zap.String("booking_id", confirmation.BookingId))
	}

	c.state = StateSucceeded
	c.confirmation = &confirmation
	c.idempotencyKey = ""
	c.idempotencyOrder = ""
	c.selection.Clear()
	if c.drafts != nil {
		if err := c.drafts.Clear(); err != nil {
			log.Warn("failed to clear session draft", zap.Error(err))
		}
	}
	log.Info("booking confirmed", zap.String("booking_id", confirmation.BookingId))
	return confirmation, nil
}

// Abandon is called when the user navigates away. A pending response that
// arrives afterwards leaves the state untouched, and Submit keeps returning
// ErrSubmissionInFlight until it does.
func (c *Checkout) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.state != StateSucceeded {
		c.state = StateIdle
	}
	c.fieldErrors = nil
	c.message = ""
}

// Reset returns a completed checkout to idle for the next order.
func (c *Checkout) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = StateIdle
	c.fieldErrors = nil
	c.message = ""
	c.confirmation = nil
}

// keyFor reuses the idempotency key while the user retries the same order.
func (c *Checkout) keyFor(booking model.BookingRequest) string {
	order := fmt.Sprintf("%s|%s|%.2f|%s", booking.EventId, strings.Join(booking.Seats, ","), booking.TotalAmount, booking.PaymentMethod)
	if c.idempotencyKey == "" || c.idempotencyOrder != order {
		c.idempotencyKey = uuid.NewString()
		c.idempotencyOrder = order
	}
	return c.idempotencyKey
}

func provisionalReference(now time.Time) string {
	return fmt.Sprintf("BK%08d", now.UnixMilli()%100_000_000)
}
