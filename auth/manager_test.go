package auth

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"tickethub-cli/model"
	"tickethub-cli/store"
)

type fakeAPI struct {
	login    model.AuthResponse
	register model.AuthResponse
	err      error
	gotReg   model.RegisterRequest
}

func (f *fakeAPI) Login(ctx context.Context, credentials model.LoginRequest) (model.AuthResponse, error) {
	return f.login, f.err
}

func (f *fakeAPI) Register(ctx context.Context, account model.RegisterRequest) (model.AuthResponse, error) {
	f.gotReg = account
	return f.register, f.err
}

type memoryPersister struct {
	record  store.AuthRecord
	cleared bool
	loadErr error
}

func (m *memoryPersister) Load() (store.AuthRecord, error) { return m.record, m.loadErr }
func (m *memoryPersister) Save(record store.AuthRecord) error {
	m.record = record
	return nil
}
func (m *memoryPersister) Clear() error {
	m.record = store.AuthRecord{}
	m.cleared = true
	return nil
}

func TestManager_LoginPersistsSession(t *testing.T) {
	api := &fakeAPI{login: model.AuthResponse{
		Token:       "tok",
		UserPayload: model.UserPayload{Id: "5", FullName: "Ravi", Role: "ADMIN"},
	}}
	persist := &memoryPersister{}
	manager := NewManager(api, persist, zap.NewNop())

	session, err := manager.Login(context.Background(), " ravi@example.com ", "pw")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !session.IsAdmin() || session.User.Id != "5" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if persist.record.Token != "tok" || persist.record.Role != model.RoleAdmin {
		t.Fatalf("expected persisted record, got %+v", persist.record)
	}

	reloaded := NewManager(api, persist, zap.NewNop())
	if reloaded.Session().Token != "tok" || reloaded.Session().User.FullName != "Ravi" {
		t.Fatalf("expected reloaded session, got %+v", reloaded.Session())
	}
}

func TestManager_LoginFailureKeepsSession(t *testing.T) {
	api := &fakeAPI{err: errors.New("401 Unauthorized")}
	persist := &memoryPersister{record: store.AuthRecord{Token: "old", Role: model.RoleUser}}
	manager := NewManager(api, persist, zap.NewNop())

	if _, err := manager.Login(context.Background(), "a@b.co", "bad"); err == nil {
		t.Fatal("expected error")
	}
	if manager.Session().Token != "old" {
		t.Fatalf("expected previous session kept, got %+v", manager.Session())
	}
}

func TestManager_RegisterNormalizesRole(t *testing.T) {
	api := &fakeAPI{register: model.AuthResponse{Token: "tok", UserPayload: model.UserPayload{Id: "8", Role: "USER"}}}
	manager := NewManager(api, &memoryPersister{}, zap.NewNop())

	session, err := manager.Register(context.Background(), model.RegisterRequest{FullName: " Mia ", Email: "mia@example.com", Password: "pw", Role: "user"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if api.gotReg.Role != model.RoleUser || api.gotReg.FullName != "Mia" {
		t.Fatalf("unexpected register request: %+v", api.gotReg)
	}
	if !session.IsUser() {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestManager_Logout(t *testing.T) {
	persist := &memoryPersister{record: store.AuthRecord{Token: "tok", Role: model.RoleUser}}
	manager := NewManager(nil, persist, zap.NewNop())

	if err := manager.Logout(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if manager.Session().LoggedIn() || !persist.cleared {
		t.Fatalf("expected logged out, got %+v", manager.Session())
	}
}

func TestManager_UnreadableStateIsLoggedOut(t *testing.T) {
	manager := NewManager(nil, &memoryPersister{loadErr: errors.New("bad json")}, zap.NewNop())
	if manager.Session().LoggedIn() {
		t.Fatal("expected logged out session")
	}
}
