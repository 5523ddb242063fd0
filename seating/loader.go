package seating

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tickethub-cli/logging"
	"tickethub-cli/model"
)

// SeatFetcher reads a backend seat layout.
type SeatFetcher interface {
	GetSeats(ctx context.Context, eventID string) ([]model.SeatPayload, error)
}

// Loader returns an event's layout from the backend, falling back to a
// generated layout when the backend has none to offer.
type Loader struct {
	fetcher SeatFetcher
	log     *zap.Logger
	timeout time.Duration
}

// NewLoader creates a loader. A zero timeout leaves the deadline to the
// fetcher's HTTP client.
func NewLoader(fetcher SeatFetcher, log *zap.Logger, timeout time.Duration) *Loader {
	return &Loader{
		fetcher: fetcher,
		log:     logging.Component(log, "seating"),
		timeout: timeout,
	}
}

var errEmptyLayout = errors.New("backend returned no seats")

// Load never fails: any backend problem yields a generated layout.
func (l *Loader) Load(ctx context.Context, event model.Event) Layout {
	if l.fetcher == nil {
		return Generate(event)
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	payloads, err := l.fetcher.GetSeats(ctx, event.Id)
	if err == nil {
		var seats []model.Seat
		seats, err = FromPayloads(event, payloads)
		if err == nil {
			return Layout{EventId: event.Id, Source: SourceBackend, Seats: seats}
		}
	}

	l.log.Warn("using generated seat layout",
		zap.String("event_id", event.Id),
		zap.Error(err),
	)
	return Generate(event)
}

// FromPayloads converts a backend layout. It rejects empty layouts,
// malformed or duplicate seat ids.
func FromPayloads(event model.Event, payloads []model.SeatPayload) ([]model.Seat, error) {
	if len(payloads) == 0 {
		return nil, errEmptyLayout
	}

	seen := make(map[string]bool, len(payloads))
	seats := make([]model.Seat, 0, len(payloads))
	for _, payload := range payloads {
		id, err := payloadSeatID(payload)
		if err != nil {
			return nil, err
		}
		key := id.String()
		if seen[key] {
			return nil, fmt.Errorf("duplicate seat id %q", key)
		}
		seen[key] = true

		tier := model.SeatType(strings.ToLower(strings.TrimSpace(payload.Type)))
		if !tier.Valid() {
			tier = rowTier(id.Row)
		}
		seats = append(seats, model.Seat{
			Id:     key,
			Row:    id.Row,
			Number: id.Number,
			Type:   tier,
			Status: payloadStatus(payload.Status),
			Price:  event.Price.For(tier),
		})
	}
	return seats, nil
}

func payloadSeatID(payload model.SeatPayload) (model.SeatID, error) {
	if strings.TrimSpace(payload.Id) != "" {
		return model.ParseSeatID(payload.Id)
	}
	return model.ParseSeatID(fmt.Sprintf("%s%d", payload.Row, payload.Number))
}

// payloadStatus maps backend statuses; anything not clearly available is booked.
func payloadStatus(raw string) model.SeatStatus {
	if strings.EqualFold(strings.TrimSpace(raw), string(model.SeatAvailable)) {
		return model.SeatAvailable
	}
	return model.SeatBooked
}

func rowTier(row string) model.SeatType {
	for i, label := range Rows {
		if label == row {
			return TierForRow(i)
		}
	}
	return model.SeatRegular
}
