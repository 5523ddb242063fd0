package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tickethub-cli/logging"
	"tickethub-cli/model"
	"tickethub-cli/store"
)

// Fetcher reads raw event records from the backend.
type Fetcher interface {
	ListPublicEvents(ctx context.Context) ([]model.EventPayload, error)
	GetPublicEvent(ctx context.Context, eventID string) (model.EventPayload, error)
}

// Cache keeps the last good catalog.
type Cache interface {
	Load(ttl time.Duration) ([]model.Event, bool, error)
	Save(events []model.Event) error
}

// FileCache is the on-disk catalog cache under the user cache dir.
type FileCache struct{}

func (FileCache) Load(ttl time.Duration) ([]model.Event, bool, error) {
	return store.LoadEventCache(ttl)
}

func (FileCache) Save(events []model.Event) error {
	return store.SaveEventCache(events)
}

// Origin tells where a listing came from.
type Origin string

const (
	OriginBackend    Origin = "backend"
	OriginCache      Origin = "cache"
	OriginStaleCache Origin = "stale-cache"
	OriginNone       Origin = "none"
)

// Listing is the result of a catalog read.
type Listing struct {
	Events []model.Event
	Origin Origin
	// Err is the backend failure that forced a cache or empty listing.
	Err error
}

type ReaderOptions struct {
	CacheTTL          time.Duration
	PosterPlaceholder string
}

// Reader lists and looks up events. Backend failures never surface as
// errors; they yield the cached catalog or an empty one.
type Reader struct {
	fetcher Fetcher
	cache   Cache
	opts    ReaderOptions
	log     *zap.Logger
}

// NewReader creates a reader. cache may be nil.
func NewReader(fetcher Fetcher, cache Cache, opts ReaderOptions, log *zap.Logger) *Reader {
	return &Reader{
		fetcher: fetcher,
		cache:   cache,
		opts:    opts,
		log:     logging.Component(log, "catalog"),
	}
}

// List returns the catalog, served from a fresh cache when one exists.
func (r *Reader) List(ctx context.Context) Listing {
	if r.cache != nil && r.opts.CacheTTL > 0 {
		if events, fresh, err := r.cache.Load(r.opts.CacheTTL); err == nil && fresh && len(events) > 0 {
			return Listing{Events: events, Origin: OriginCache}
		}
	}
	return r.Refresh(ctx)
}

// Refresh bypasses the fresh-cache shortcut and asks the backend.
func (r *Reader) Refresh(ctx context.Context) Listing {
	payloads, err := r.fetcher.ListPublicEvents(ctx)
	if err == nil {
		events := NormalizeAll(payloads, r.opts.PosterPlaceholder)
		if r.cache != nil {
			if saveErr := r.cache.Save(events); saveErr != nil {
				r.log.Warn("failed to cache catalog", zap.Error(saveErr))
			}
		}
		return Listing{Events: events, Origin: OriginBackend}
	}

	r.log.Warn("failed to fetch events", zap.Error(err))
	if r.cache != nil {
		if events, _, cacheErr := r.cache.Load(0); cacheErr == nil && len(events) > 0 {
			return Listing{Events: events, Origin: OriginStaleCache, Err: err}
		}
	}
	return Listing{Events: []model.Event{}, Origin: OriginNone, Err: err}
}

// Get returns a single event. ok is false when the backend cannot provide it
// and the cached catalog does not know it either.
func (r *Reader) Get(ctx context.Context, id string) (model.Event, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Event{}, false
	}

	payload, err := r.fetcher.GetPublicEvent(ctx, id)
	if err == nil {
		event := Normalize(payload, r.opts.PosterPlaceholder)
		if event.Id == "" {
			event.Id = id
		}
		return event, true
	}

	r.log.Warn("failed to fetch event", zap.String("event_id", id), zap.Error(err))
	if r.cache != nil {
		if events, _, cacheErr := r.cache.Load(0); cacheErr == nil {
			for _, event := range events {
				if event.Id == id {
					return event, true
				}
			}
		}
	}
	return model.Event{}, false
}

// Describe renders a one-line note about where a listing came from, or "".
func (l Listing) Describe() string {
	switch l.Origin {
	case OriginStaleCache:
		return fmt.Sprintf("Showing cached events (backend unavailable: %v)", l.Err)
	case OriginNone:
		if l.Err != nil {
			return "Events could not be loaded."
		}
	}
	return ""
}
