package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"tickethub-cli/model"
)

// CreateBooking submits an order. It is sent exactly once; idempotencyKey lets
// the backend recognise a user-initiated resubmission of the same order.
func (c *Client) CreateBooking(ctx context.Context, token string, idempotencyKey string, booking model.BookingRequest) (model.BookingConfirmation, error) {
	if strings.TrimSpace(token) == "" {
		return model.BookingConfirmation{}, errors.New("auth token is required")
	}
	endpoint := fmt.Sprintf("%s/api/user/bookings", c.baseURL)

	req := request{endpoint: endpoint, token: token, body: booking}
	if idempotencyKey != "" {
		req.headers = map[string]string{HeaderIdempotencyKey: idempotencyKey}
	}

	var confirmation model.BookingConfirmation
	if err := c.postJSON(ctx, req, &confirmation); err != nil {
		return model.BookingConfirmation{}, err
	}
	return confirmation, nil
}

// ListUserBookings fetches the bookings of a user for the dashboard.
func (c *Client) ListUserBookings(ctx context.Context, token string, userID string) ([]model.Booking, error) {
	id := strings.TrimSpace(userID)
	if id == "" {
		return nil, errors.New("user id is required")
	}
	endpoint := fmt.Sprintf("%s/api/users/%s/bookings", c.baseURL, url.PathEscape(id))

	var payloads []model.BookingPayload
	if err := c.getJSON(ctx, endpoint, token, &payloads); err != nil {
		return nil, err
	}
	bookings := make([]model.Booking, 0, len(payloads))
	for _, payload := range payloads {
		bookings = append(bookings, payload.ToBooking())
	}
	return bookings, nil
}
