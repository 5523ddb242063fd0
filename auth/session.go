// Package auth holds the login session and the role checks built on it.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tickethub-cli/model"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrTokenExpired = errors.New("session expired, please log in again")
	ErrForbidden    = errors.New("forbidden")
)

// Session is the client's view of a login. The zero value is logged out.
type Session struct {
	Token string
	Role  model.Role
	User  model.User
}

// NewSession builds a session from a token and the role and user the backend
// returned with it. A missing role is read from the token's "role" claim.
func NewSession(token string, role model.Role, user model.User) Session {
	token = strings.TrimSpace(token)
	if role == "" {
		role = user.Role
	}
	if role == "" {
		if claims, ok := parseClaims(token); ok {
			if raw, ok := claims["role"].(string); ok {
				role = model.ParseRole(raw)
			}
		}
	}
	if user.Id == "" {
		if claims, ok := parseClaims(token); ok {
			if sub, err := claims.GetSubject(); err == nil {
				user.Id = sub
			} else if id, ok := claims["sub"].(float64); ok {
				user.Id = fmt.Sprintf("%.0f", id)
			}
		}
	}
	user.Role = role
	return Session{Token: token, Role: role, User: user}
}

// LoggedIn reports whether a token is present, expired or not.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// ExpiresAt returns the token's exp claim. Tokens that are not JWTs, or carry
// no exp, never expire on the client; the backend still decides.
func (s Session) ExpiresAt() (time.Time, bool) {
	claims, ok := parseClaims(s.Token)
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token's exp claim lies before now.
func (s Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}

// Valid returns nil when the session can authorize a request at now.
func (s Session) Valid(now time.Time) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	if s.Expired(now) {
		return ErrTokenExpired
	}
	return nil
}

func (s Session) HasRole(roles ...model.Role) bool {
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

func (s Session) IsAdmin() bool { return s.HasRole(model.RoleAdmin) }
func (s Session) IsUser() bool  { return s.HasRole(model.RoleUser) }

// RequireRole checks a session before calling a role-gated endpoint.
func RequireRole(s Session, now time.Time, roles ...model.Role) error {
	if err := s.Valid(now); err != nil {
		return err
	}
	if len(roles) > 0 && !s.HasRole(roles...) {
		return fmt.Errorf("%w: requires role %s", ErrForbidden, joinRoles(roles))
	}
	return nil
}

func joinRoles(roles []model.Role) string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return strings.Join(names, " or ")
}

// parseClaims decodes a JWT without verifying its signature. The client
// cannot verify tokens; it only reads expiry and role hints.
func parseClaims(token string) (jwt.MapClaims, bool) {
	if strings.Count(token, ".") != 2 {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
