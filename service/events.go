package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"tickethub-cli/model"
)

// ListPublicEvents fetches the public catalog as raw backend records.
func (c *Client) ListPublicEvents(ctx context.Context) ([]model.EventPayload, error) {
	endpoint := fmt.Sprintf("%s/api/events/public", c.baseURL)

	var events []model.EventPayload
	if err := c.getJSON(ctx, endpoint, "", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetPublicEvent fetches a single public event.
func (c *Client) GetPublicEvent(ctx context.Context, eventID string) (model.EventPayload, error) {
	id := strings.TrimSpace(eventID)
	if id == "" {
		return model.EventPayload{}, errors.New("event id is required")
	}
	endpoint := fmt.Sprintf("%s/api/events/public/%s", c.baseURL, url.PathEscape(id))

	var event model.EventPayload
	if err := c.getJSON(ctx, endpoint, "", &event); err != nil {
		return model.EventPayload{}, err
	}
	if event.Id == "" && event.Title == "" {
		return model.EventPayload{}, errors.New("event not found")
	}
	return event, nil
}

// GetSeats fetches the backend seat layout for an event. An empty body
// yields a nil slice and no error.
func (c *Client) GetSeats(ctx context.Context, eventID string) ([]model.SeatPayload, error) {
	id := strings.TrimSpace(eventID)
	if id == "" {
		return nil, errors.New("event id is required")
	}
	endpoint := fmt.Sprintf("%s/api/events/%s/seats", c.baseURL, url.PathEscape(id))

	var seats []model.SeatPayload
	if err := c.getJSON(ctx, endpoint, "", &seats); err != nil {
		return nil, err
	}
	return seats, nil
}
