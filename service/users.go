package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tickethub-cli/model"
)

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, credentials model.LoginRequest) (model.AuthResponse, error) {
	if strings.TrimSpace(credentials.Email) == "" || credentials.Password == "" {
		return model.AuthResponse{}, errors.New("email and password are required")
	}
	endpoint := fmt.Sprintf("%s/api/auth/login", c.baseURL)

	var res model.AuthResponse
	if err := c.postJSON(ctx, request{endpoint: endpoint, body: credentials}, &res); err != nil {
		return model.AuthResponse{}, err
	}
	if res.Token == "" {
		return model.AuthResponse{}, errors.New("login response did not include a token")
	}
	return res, nil
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, account model.RegisterRequest) (model.AuthResponse, error) {
	endpoint := fmt.Sprintf("%s/api/auth/register", c.baseURL)

	var res model.AuthResponse
	if err := c.postJSON(ctx, request{endpoint: endpoint, body: account}, &res); err != nil {
		return model.AuthResponse{}, err
	}
	return res, nil
}

// GetUserDetails fetches the profile of the token's owner.
func (c *Client) GetUserDetails(ctx context.Context, token string) (model.User, error) {
	endpoint := fmt.Sprintf("%s/user/details", c.baseURL)

	var payload model.UserPayload
	if err := c.getJSON(ctx, endpoint, token, &payload); err != nil {
		return model.User{}, err
	}
	return payload.ToUser(), nil
}

// ListAdminUsers fetches every account. Requires an ADMIN token.
func (c *Client) ListAdminUsers(ctx context.Context, token string) ([]model.User, error) {
	endpoint := fmt.Sprintf("%s/api/admin/users", c.baseURL)

	var payloads []model.UserPayload
	if err := c.getJSON(ctx, endpoint, token, &payloads); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(payloads))
	for _, payload := range payloads {
		users = append(users, payload.ToUser())
	}
	return users, nil
}

// ListAdminEvents fetches every event including unpublished ones. Requires an ADMIN token.
func (c *Client) ListAdminEvents(ctx context.Context, token string) ([]model.EventPayload, error) {
	endpoint := fmt.Sprintf("%s/api/admin/events", c.baseURL)

	var events []model.EventPayload
	if err := c.getJSON(ctx, endpoint, token, &events); err != nil {
		return nil, err
	}
	return events, nil
}
