package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tickethub-cli/model"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestSession_ExpiryFromClaims(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{"sub": "9", "role": "USER", "exp": now.Add(time.Hour).Unix()})

	session := NewSession(token, "", model.User{})
	if session.Role != model.RoleUser || session.User.Id != "9" {
		t.Fatalf("expected claims to fill role and user id, got %+v", session)
	}
	if err := session.Valid(now); err != nil {
		t.Fatalf("expected valid session, got %v", err)
	}
	if err := session.Valid(now.Add(2 * time.Hour)); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestSession_NumericSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": 42, "role": "admin"})
	session := NewSession(token, "", model.User{})
	if session.User.Id != "42" || !session.IsAdmin() {
		t.Fatalf("unexpected session: %+v", session)
	}
	if _, ok := session.ExpiresAt(); ok {
		t.Fatal("expected no expiry without exp claim")
	}
}

func TestSession_OpaqueTokenNeverExpiresLocally(t *testing.T) {
	session := NewSession("opaque-session-token", model.RoleUser, model.User{Id: "1"})
	if err := session.Valid(time.Now().Add(24 * 365 * time.Hour)); err != nil {
		t.Fatalf("expected opaque token to be valid, got %v", err)
	}
	if !session.IsUser() || session.IsAdmin() {
		t.Fatalf("unexpected roles: %+v", session)
	}
}

func TestSession_LoggedOut(t *testing.T) {
	var session Session
	if err := session.Valid(time.Now()); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected not logged in, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	now := time.Now()
	user := NewSession("tok", model.RoleUser, model.User{Id: "1"})
	admin := NewSession("tok", model.RoleAdmin, model.User{Id: "2"})

	if err := RequireRole(admin, now, model.RoleAdmin); err != nil {
		t.Fatalf("expected admin allowed, got %v", err)
	}
	if err := RequireRole(user, now, model.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := RequireRole(user, now); err != nil {
		t.Fatalf("expected any role allowed, got %v", err)
	}
	if err := RequireRole(Session{}, now, model.RoleUser); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected not logged in, got %v", err)
	}
}
