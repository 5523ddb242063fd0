// Package sandbox serves the storefront backend API from memory so the
// client can be exercised without the real services.
package sandbox

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tickethub-cli/logging"
	"tickethub-cli/model"
)

const (
	DemoAdminEmail    = "admin@tickethub.local"
	DemoAdminPassword = "admin123"
	DemoUserEmail     = "user@tickethub.local"
	DemoUserPassword  = "user123"

	defaultTokenTTL = 24 * time.Hour
)

type Options struct {
	// Secret signs issued tokens. Empty generates a random one per server.
	Secret string
	// SeatsUnavailable makes the seats endpoint answer 503 so clients fall
	// back to generated layouts.
	SeatsUnavailable bool
	TokenTTL         time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

// Server is the in-memory backend.
type Server struct {
	router   *chi.Mux
	store    *memStore
	validate *validator.Validate
	log      *zap.Logger
	secret   []byte
	opts     Options
}

// New builds a seeded server with a demo admin and a demo user.
func New(opts Options, log *zap.Logger) (*Server, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	secret := []byte(opts.Secret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
	}

	s := &Server{
		store:    newMemStore(),
		validate: validator.New(),
		log:      logging.Component(log, "sandbox"),
		secret:   secret,
		opts:     opts,
	}

	now := opts.Now()
	if _, err := s.store.addAccount("Demo Admin", DemoAdminEmail, "", DemoAdminPassword, model.RoleAdmin, opts.BcryptCost, now); err != nil {
		return nil, err
	}
	if _, err := s.store.addAccount("Demo User", DemoUserEmail, "", DemoUserPassword, model.RoleUser, opts.BcryptCost, now); err != nil {
		return nil, err
	}
	seedEvents(s.store, now)

	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestLogger(s.log))
	r.Use(recoverer(s.log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Get("/events/public", s.handleListEvents)
		r.Get("/events/public/{id}", s.handleGetEvent)
		r.Get("/events/{id}/seats", s.handleSeats)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/user/bookings", s.handleCreateBooking)
			r.Get("/users/{id}/bookings", s.handleUserBookings)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(model.RoleAdmin))
				r.Get("/admin/users", s.handleAdminUsers)
				r.Get("/admin/events", s.handleAdminEvents)
			})
		})
	})

	r.With(s.authenticate).Get("/user/details", s.handleUserDetails)
	return r
}

// Serve listens on addr until ctx is cancelled. ready, when non-nil, receives
// the bound address once the listener is open.
func (s *Server) Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if ready != nil {
		ready(listener.Addr())
	}
	s.log.Info("sandbox listening", zap.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
