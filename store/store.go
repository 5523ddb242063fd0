package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tickethub-cli/model"
)

const (
	appDir           = "tickethub-cli"
	eventsCacheFile  = "events.json"
	recentEventsFile = "history.json"
	maxRecentEvents  = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

type RecentEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

type eventHistory struct {
	Events []RecentEvent `json:"events"`
}

// LoadEventCache returns the cached catalog and whether it is younger than ttl.
// A missing cache yields no events and no error.
func LoadEventCache(ttl time.Duration) ([]model.Event, bool, error) {
	path, err := cachePath(eventsCacheFile)
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Event](path)
	if err != nil {
		return nil, false, err
	}
	if cache.UpdatedAt.IsZero() {
		return cache.Data, false, nil
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= ttl, nil
}

func SaveEventCache(events []model.Event) error {
	path, err := cachePath(eventsCacheFile)
	if err != nil {
		return err
	}
	return saveCache(path, events)
}

func LoadRecentEvents() ([]RecentEvent, error) {
	path, err := configPath(recentEventsFile)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history eventHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid event history format")
	}
	return history.Events, nil
}

// RememberEvent moves the event to the front of the recently viewed list.
func RememberEvent(event model.Event) error {
	if strings.TrimSpace(event.Id) == "" {
		return errors.New("event id is required")
	}
	history, _ := LoadRecentEvents()
	next := []RecentEvent{{ID: event.Id, Title: event.Title, Date: event.Date}}

	for _, existing := range history {
		if existing.ID == event.Id {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentEvents {
			break
		}
	}

	path, err := configPath(recentEventsFile)
	if err != nil {
		return err
	}
	return writeJSON(path, eventHistory{Events: next}, 0o644)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	return writeJSON(path, cache, 0o644)
}

func writeJSON(path string, value any, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, perm)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}
