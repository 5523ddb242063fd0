package store

import (
	"encoding/json"
	"os"
	"sync"

	"tickethub-cli/model"
)

const draftFile = "session.json"

// Draft is the session-scoped selection handed from the seat map to checkout.
type Draft struct {
	SelectedSeats []string     `json:"selectedSeats"`
	SelectedEvent *model.Event `json:"selectedEvent,omitempty"`
}

func (d Draft) Empty() bool {
	return len(d.SelectedSeats) == 0 && d.SelectedEvent == nil
}

// DraftStore holds the session draft.
type DraftStore interface {
	Load() (Draft, error)
	Save(Draft) error
	Clear() error
}

// MemoryDraft keeps the draft for the lifetime of the process.
type MemoryDraft struct {
	mu    sync.Mutex
	draft Draft
}

func NewMemoryDraft() *MemoryDraft {
	return &MemoryDraft{}
}

func (m *MemoryDraft) Load() (Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyDraft(m.draft), nil
}

func (m *MemoryDraft) Save(draft Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = copyDraft(draft)
	return nil
}

func (m *MemoryDraft) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = Draft{}
	return nil
}

// FileDraft keeps the draft under the user cache dir so separate CLI
// invocations can share it.
type FileDraft struct{}

func NewFileDraft() FileDraft {
	return FileDraft{}
}

func (FileDraft) Load() (Draft, error) {
	path, err := cachePath(draftFile)
	if err != nil {
		return Draft{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Draft{}, nil
		}
		return Draft{}, err
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

func (FileDraft) Save(draft Draft) error {
	path, err := cachePath(draftFile)
	if err != nil {
		return err
	}
	return writeJSON(path, draft, 0o600)
}

func (FileDraft) Clear() error {
	path, err := cachePath(draftFile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func copyDraft(draft Draft) Draft {
	out := Draft{}
	if draft.SelectedSeats != nil {
		out.SelectedSeats = append([]string(nil), draft.SelectedSeats...)
	}
	if draft.SelectedEvent != nil {
		event := *draft.SelectedEvent
		out.SelectedEvent = &event
	}
	return out
}
