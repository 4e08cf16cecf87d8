package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"indcat/internal/core"
	"indcat/internal/observability"
	"indcat/internal/store"
)

// ServiceConfig holds the read-path and population policy knobs.
type ServiceConfig struct {
	// PageSize is the fixed number of items per catalog read.
	PageSize int

	// EmptyRetryInterval is how long a populated-but-empty entry is served
	// before a read may trigger a fresh populate for its key. Entries with
	// data never re-trigger automatically.
	EmptyRetryInterval time.Duration

	// MaxConcurrentFetches bounds populate runs in flight across all keys.
	MaxConcurrentFetches int
}

// Service answers paginated catalog reads against the store, triggering
// background population on miss without blocking the caller.
type Service struct {
	store    store.Store
	pipeline *Pipeline
	cfg      ServiceConfig
	hooks    observability.Hooks

	// mu guards inflight so the is-a-run-underway check and the marker
	// insert happen in one critical section; without it two reads racing
	// on an absent key would both start a populate.
	mu       sync.Mutex
	inflight map[core.CacheKey]struct{}

	// slots is a counting semaphore bounding concurrent populate runs.
	slots chan struct{}

	now func() time.Time
}

// NewService creates a catalog service. A nil hooks falls back to NopHooks.
func NewService(st store.Store, pipeline *Pipeline, cfg ServiceConfig, hooks observability.Hooks) *Service {
	if hooks == nil {
		hooks = observability.NopHooks{}
	}
	if cfg.MaxConcurrentFetches <= 0 {
		cfg.MaxConcurrentFetches = 1
	}
	return &Service{
		store:    st,
		pipeline: pipeline,
		cfg:      cfg,
		hooks:    hooks,
		inflight: make(map[core.CacheKey]struct{}),
		slots:    make(chan struct{}, cfg.MaxConcurrentFetches),
		now:      time.Now,
	}
}

// List returns the sub-range [skip, skip+PageSize) of the cached list for
// (credential, category), clamped to list bounds. On a miss it triggers an
// asynchronous populate and returns an empty result immediately; the caller
// is expected to retry. Internal fetch failures are never surfaced here.
func (s *Service) List(ctx context.Context, credential, category string, skip int) ([]core.CatalogItem, error) {
	if credential == "" {
		return nil, core.NewInvalidConfigError("credential is required", nil)
	}
	key := core.NewCacheKey(credential, category)

	entry, err := s.store.Get(ctx, key)
	if err != nil {
		// A store failure reads as a miss; the caller only ever sees an
		// empty page.
		slog.Warn("store read failed, treating as miss", "key", key, "error", err)
		entry = nil
	}

	if entry == nil {
		s.hooks.CacheMiss(category)
		s.trigger(credential, category, key)
		return []core.CatalogItem{}, nil
	}

	s.hooks.CacheHit(category)

	// A populated-but-empty entry usually means the first fetch hit an
	// upstream failure. Re-trigger once it has aged past the retry
	// interval; until then keep serving it as empty.
	if entry.Empty() && s.now().Sub(entry.FetchedAt) >= s.cfg.EmptyRetryInterval {
		s.trigger(credential, category, key)
	}

	return pageOf(entry.Items, skip, s.cfg.PageSize), nil
}

// Refresh forces a new populate run for every given category, regardless of
// current cache state. It returns immediately; runs already in flight for a
// key are not duplicated.
func (s *Service) Refresh(ctx context.Context, credential string, categories []string) error {
	if credential == "" {
		return core.NewInvalidConfigError("credential is required", nil)
	}
	for _, category := range categories {
		s.trigger(credential, category, core.NewCacheKey(credential, category))
	}
	return nil
}

// trigger starts a background populate for key unless one is already in
// flight. Check and mark happen under one lock.
func (s *Service) trigger(credential, category string, key core.CacheKey) {
	s.mu.Lock()
	if _, running := s.inflight[key]; running {
		s.mu.Unlock()
		return
	}
	s.inflight[key] = struct{}{}
	s.mu.Unlock()

	go s.populate(credential, category, key)
}

// populate executes one fetch run and writes its result. The in-flight
// marker is always cleared on completion, whatever the outcome, so a key
// can never be stuck populating.
func (s *Service) populate(credential, category string, key core.CacheKey) {
	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	s.slots <- struct{}{}
	defer func() { <-s.slots }()

	// Background runs are detached from the request that triggered them;
	// they run to their natural stopping condition.
	ctx := context.Background()

	items, err := s.pipeline.Populate(ctx, credential, category)
	if err != nil {
		// Total failure. Keep an existing populated entry untouched; for a
		// never-populated key write an empty entry so the empty-retry
		// policy governs the next attempt.
		if existing, getErr := s.store.Get(ctx, key); getErr == nil && existing != nil {
			slog.Warn("populate failed, keeping previous entry", "key", key, "error", err)
			return
		}
		items = nil
	}

	entry := &store.Entry{Items: items, FetchedAt: s.now()}
	if err := s.store.Put(ctx, key, entry); err != nil {
		slog.Error("failed to store populated entry", "key", key, "error", err)
	}
}

// pageOf clamps [skip, skip+size) to the list bounds.
func pageOf(items []core.CatalogItem, skip, size int) []core.CatalogItem {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []core.CatalogItem{}
	}
	end := skip + size
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
