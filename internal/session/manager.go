package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/raihasa-dev/raihasa/internal/storage"
)

// CookieName identifies the visitor session. The cookie carries no expiry,
// so it lives for the browser session only.
const CookieName = "@raihasa/sid"

// Manager hands out one lazily-created Store per session ID and sweeps
// stores that have gone idle.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	kv      storage.KV
	idleTTL time.Duration
	cron    *cron.Cron
	log     zerolog.Logger
}

// NewManager creates a manager over the given session storage backend
func NewManager(kv storage.KV, idleTTL time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		kv:      kv,
		idleTTL: idleTTL,
		log:     log,
	}
}

// NewID mints a fresh session identifier
func (m *Manager) NewID() string {
	return ulid.Make().String()
}

// Get returns the store for sid, creating and hydrating it on first use.
// Creation is the hydration point: the new store loads any persisted state
// and stops loading before it is handed out.
func (m *Manager) Get(ctx context.Context, sid string) *Store {
	m.mu.Lock()
	store, ok := m.stores[sid]
	if !ok {
		store = New(ctx, m.kv, sid, m.log)
		store.StopLoading()
		m.stores[sid] = store
	}
	m.mu.Unlock()

	store.Touch()
	return store
}

// StartSweeper schedules the idle sweep with the given cron expression
func (m *Manager) StartSweeper(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { m.Sweep(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	m.cron = c
	return nil
}

// Stop halts the sweeper
func (m *Manager) Stop() {
	if m.cron != nil {
		m.cron.Stop()
	}
}

// Sweep evicts sessions idle longer than the TTL and deletes their
// persisted state.
func (m *Manager) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	var expired []*Store
	for sid, store := range m.stores {
		if store.LastSeen().Before(cutoff) {
			expired = append(expired, store)
			delete(m.stores, sid)
		}
	}
	m.mu.Unlock()

	for _, store := range expired {
		store.destroy(ctx)
	}
	if len(expired) > 0 {
		m.log.Info().Int("count", len(expired)).Msg("Swept idle sessions")
	}
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
