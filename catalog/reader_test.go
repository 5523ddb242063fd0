package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tickethub-cli/model"
)

type fakeFetcher struct {
	events []model.EventPayload
	event  model.EventPayload
	err    error
	calls  int
}

func (f *fakeFetcher) ListPublicEvents(ctx context.Context) ([]model.EventPayload, error) {
	f.calls++
	return f.events, f.err
}

func (f *fakeFetcher) GetPublicEvent(ctx context.Context, id string) (model.EventPayload, error) {
	return f.event, f.err
}

type memoryCache struct {
	events []model.Event
	fresh  bool
	saves  int
}

func (m *memoryCache) Load(ttl time.Duration) ([]model.Event, bool, error) {
	return m.events, m.fresh && ttl > 0, nil
}

func (m *memoryCache) Save(events []model.Event) error {
	m.events = events
	m.fresh = true
	m.saves++
	return nil
}

func TestReader_ListFromBackendFillsCache(t *testing.T) {
	fetcher := &fakeFetcher{events: []model.EventPayload{{Id: "1", Title: "One"}}}
	cache := &memoryCache{}
	reader := NewReader(fetcher, cache, ReaderOptions{CacheTTL: time.Minute}, zap.NewNop())

	listing := reader.List(context.Background())
	if listing.Origin != OriginBackend || len(listing.Events) != 1 {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	if cache.saves != 1 {
		t.Fatalf("expected cache save, got %d", cache.saves)
	}

	listing = reader.List(context.Background())
	if listing.Origin != OriginCache || fetcher.calls != 1 {
		t.Fatalf("expected fresh cache hit, got %s after %d calls", listing.Origin, fetcher.calls)
	}
}

func TestReader_FailureFallsBackToStaleCache(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("502 Bad Gateway")}
	cache := &memoryCache{events: []model.Event{{Id: "old"}}}
	reader := NewReader(fetcher, cache, ReaderOptions{CacheTTL: time.Minute}, zap.NewNop())

	listing := reader.List(context.Background())
	if listing.Origin != OriginStaleCache || len(listing.Events) != 1 || listing.Err == nil {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	if listing.Describe() == "" {
		t.Fatal("expected a note about the cached listing")
	}
}

func TestReader_FailureWithoutCacheIsEmpty(t *testing.T) {
	reader := NewReader(&fakeFetcher{err: errors.New("dial tcp: refused")}, nil, ReaderOptions{}, zap.NewNop())

	listing := reader.List(context.Background())
	if listing.Origin != OriginNone || listing.Events == nil || len(listing.Events) != 0 {
		t.Fatalf("expected empty listing, got %+v", listing)
	}
}

func TestReader_Get(t *testing.T) {
	fetcher := &fakeFetcher{event: model.EventPayload{Id: "5", Title: "Five"}}
	reader := NewReader(fetcher, nil, ReaderOptions{PosterPlaceholder: "/p.png"}, zap.NewNop())

	event, ok := reader.Get(context.Background(), "5")
	if !ok || event.Title != "Five" || event.Poster != "/p.png" {
		t.Fatalf("unexpected event: %+v ok=%v", event, ok)
	}

	fetcher.err = errors.New("404 Not Found")
	if _, ok := reader.Get(context.Background(), "5"); ok {
		t.Fatal("expected ok=false on failure")
	}
	if _, ok := reader.Get(context.Background(), ""); ok {
		t.Fatal("expected ok=false for empty id")
	}

	cached := NewReader(fetcher, &memoryCache{events: []model.Event{{Id: "5", Title: "Cached"}}}, ReaderOptions{}, zap.NewNop())
	if event, ok := cached.Get(context.Background(), "5"); !ok || event.Title != "Cached" {
		t.Fatalf("expected cached event, got %+v ok=%v", event, ok)
	}
}
