package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tickethub-cli/logging"
	"tickethub-cli/model"
	"tickethub-cli/store"
)

// API is the subset of the backend client used for authentication.
type API interface {
	Login(ctx context.Context, credentials model.LoginRequest) (model.AuthResponse, error)
	Register(ctx context.Context, account model.RegisterRequest) (model.AuthResponse, error)
}

// Persister saves the session between runs.
type Persister interface {
	Load() (store.AuthRecord, error)
	Save(store.AuthRecord) error
	Clear() error
}

// FilePersister stores the session in the user config dir.
type FilePersister struct{}

func (FilePersister) Load() (store.AuthRecord, error)    { return store.LoadAuth() }
func (FilePersister) Save(record store.AuthRecord) error { return store.SaveAuth(record) }
func (FilePersister) Clear() error                       { return store.ClearAuth() }

// Manager owns the current session. Only Login, Register and Logout change it.
type Manager struct {
	api     API
	persist Persister
	log     *zap.Logger

	mu      sync.RWMutex
	session Session
}

// NewManager loads any persisted session. A corrupt auth file is logged and
// treated as logged out.
func NewManager(api API, persist Persister, log *zap.Logger) *Manager {
	m := &Manager{
		api:     api,
		persist: persist,
		log:     logging.Component(log, "auth"),
	}
	if persist == nil {
		return m
	}
	record, err := persist.Load()
	if err != nil {
		m.log.Warn("ignoring unreadable auth state", zap.Error(err))
		return m
	}
	var user model.User
	if record.User != nil {
		user = *record.User
	}
	m.session = NewSession(record.Token, record.Role, user)
	return m
}

// Session returns the current session.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	if m.api == nil {
		return Session{}, errors.New("auth api is not configured")
	}
	res, err := m.api.Login(ctx, model.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	return m.establish(res)
}

func (m *Manager) Register(ctx context.Context, account model.RegisterRequest) (Session, error) {
	if m.api == nil {
		return Session{}, errors.New("auth api is not configured")
	}
	account.Email = strings.TrimSpace(account.Email)
	account.FullName = strings.TrimSpace(account.FullName)
	if account.Role != "" {
		account.Role = model.ParseRole(string(account.Role))
	}
	res, err := m.api.Register(ctx, account)
	if err != nil {
		return Session{}, fmt.Errorf("register: %w", err)
	}
	if res.Token == "" {
		return Session{}, errors.New("register: account created but no token returned, please log in")
	}
	return m.establish(res)
}

// Logout forgets the session locally.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.session = Session{}
	m.mu.Unlock()

	if m.persist == nil {
		return nil
	}
	if err := m.persist.Clear(); err != nil {
		return fmt.Errorf("clear auth state: %w", err)
	}
	m.log.Info("logged out")
	return nil
}

func (m *Manager) establish(res model.AuthResponse) (Session, error) {
	user := res.ToUser()
	session := NewSession(res.Token, user.Role, user)

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	if m.persist != nil {
		if err := m.persist.Save(store.AuthRecord{Token: session.Token, Role: session.Role, User: &session.User}); err != nil {
			return session, fmt.Errorf("save auth state: %w", err)
		}
	}
	m.log.Info("logged in", zap.String("user_id", session.User.Id), zap.String("role", string(session.Role)))
	return session, nil
}
