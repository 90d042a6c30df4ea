// Package session holds the authenticated-identity state of one visitor:
// the user record, the bearer token, and the derived authenticated flag.
// Stores are observable, persisted on every mutation, and mutated only
// through Login, Logout and StopLoading.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/raihasa-dev/raihasa/internal/models"
	"github.com/raihasa-dev/raihasa/internal/storage"
	"github.com/raihasa-dev/raihasa/internal/token"
)

// Field identifies a subscribable slice of the session state
type Field int

const (
	FieldUser Field = iota
	FieldToken
	FieldAuthenticated
	FieldLoading
)

// State is a snapshot of the session. Authenticated is true iff User and
// Token are both present; no mutation sets one without the other.
type State struct {
	User          *models.User `json:"user"`
	Token         string       `json:"token"`
	Authenticated bool         `json:"isAuthenticated"`

	// Loading is true until hydration from persisted storage completes.
	// It is recomputed fresh per store and never persisted.
	Loading bool `json:"-"`
}

// Store is the authoritative session state for one visitor. All mutations
// are serialized; overlapping callers see last-write-wins.
type Store struct {
	mu        sync.Mutex
	state     State
	expiresAt time.Time // token expiry when the payload carries one
	lastSeen  time.Time

	kv        storage.KV
	key       string
	returnKey string
	log       zerolog.Logger

	subs map[Field][]func(State)
}

// New creates a store for the given session ID and hydrates it from kv.
// The store starts loading; the owner calls StopLoading once it is ready
// to serve guard decisions.
func New(ctx context.Context, kv storage.KV, sid string, log zerolog.Logger) *Store {
	s := &Store{
		kv:        kv,
		key:       storage.SessionKeyPrefix + ":" + sid,
		returnKey: storage.ReturnPathKeyPrefix + ":" + sid,
		log:       log,
		state:     State{Loading: true},
		lastSeen:  time.Now(),
		subs:      make(map[Field][]func(State)),
	}
	s.hydrate(ctx)
	return s
}

// hydrate loads previously persisted state. Any failure falls back to the
// unauthenticated defaults; a broken storage must not lock a visitor out.
func (s *Store) hydrate(ctx context.Context) {
	data, err := s.kv.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn().Err(err).Msg("Failed to hydrate session, using defaults")
		}
		return
	}

	var persisted State
	if err := json.Unmarshal(data, &persisted); err != nil {
		s.log.Warn().Err(err).Msg("Corrupt persisted session, using defaults")
		return
	}

	s.mu.Lock()
	s.state.User = persisted.User
	s.state.Token = persisted.Token
	s.state.Authenticated = persisted.User != nil && persisted.Token != ""
	s.rememberExpiryLocked(persisted.Token)
	s.mu.Unlock()
}

// Login atomically writes the token to the token store, replaces the user
// and marks the session authenticated, then persists. The two stores never
// disagree: both are updated under one mutation.
func (s *Store) Login(ctx context.Context, tokens token.Store, user *models.User, tok string) {
	s.mu.Lock()
	tokens.Set(tok)
	before := s.state
	s.state.User = user
	s.state.Token = tok
	s.state.Authenticated = true
	s.rememberExpiryLocked(tok)
	s.persistLocked(ctx)
	after := s.state
	subs := s.changedSubsLocked(before, after)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(after)
	}
}

// Logout atomically clears the token store and resets the session to its
// defaults, then persists. Logging out when already logged out is a no-op
// in effect: nothing changes and no subscriber fires.
func (s *Store) Logout(ctx context.Context, tokens token.Store) {
	s.mu.Lock()
	tokens.Remove()
	before := s.state
	s.state.User = nil
	s.state.Token = ""
	s.state.Authenticated = false
	s.expiresAt = time.Time{}
	if before.User != nil || before.Token != "" || before.Authenticated {
		s.persistLocked(ctx)
	}
	after := s.state
	subs := s.changedSubsLocked(before, after)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(after)
	}
}

// StopLoading flips Loading to false. It is a one-way latch: once stopped,
// the session never reports loading again.
func (s *Store) StopLoading() {
	s.mu.Lock()
	if !s.state.Loading {
		s.mu.Unlock()
		return
	}
	s.state.Loading = false
	after := s.state
	subs := append([]func(State){}, s.subs[FieldLoading]...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(after)
	}
}

// Subscribe registers fn for changes to one field. Subscribers are only
// notified when that field actually changes. There is no unsubscribe;
// stores are session-lived.
func (s *Store) Subscribe(field Field, fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[field] = append(s.subs[field], fn)
}

// State returns a snapshot of the session
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the current user, or nil
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User
}

// Token returns the session's copy of the bearer token
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Authenticated reports whether the session is usable: user and token both
// present and the token not past its recorded expiry. Expiry is detected
// here rather than waiting for the backend to reject a request.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Authenticated {
		return false
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return false
	}
	return true
}

// Loading reports whether hydration is still pending
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Loading
}

// RememberPath stores the originally requested path so a later successful
// login can send the visitor back to it.
func (s *Store) RememberPath(ctx context.Context, path string) {
	if err := s.kv.Save(ctx, s.returnKey, []byte(path)); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("Failed to remember return path")
	}
}

// ConsumeReturnPath returns the remembered path and clears the slot, or ""
// when none was remembered.
func (s *Store) ConsumeReturnPath(ctx context.Context) string {
	data, err := s.kv.Load(ctx, s.returnKey)
	if err != nil {
		return ""
	}
	if err := s.kv.Delete(ctx, s.returnKey); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear return path")
	}
	return string(data)
}

// Touch records activity for the idle sweep
func (s *Store) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

// LastSeen returns the time of the most recent activity
func (s *Store) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// destroy removes the persisted state. Called by the manager when the
// session is swept.
func (s *Store) destroy(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete persisted session")
	}
	if err := s.kv.Delete(ctx, s.returnKey); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete return path slot")
	}
}

// persistLocked serializes {user, token, isAuthenticated} to the session
// storage. Loading is excluded. Persistence is best effort: on failure the
// in-memory state stays authoritative and the error is logged.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to serialize session")
		return
	}
	if err := s.kv.Save(ctx, s.key, data); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist session")
	}
}

func (s *Store) rememberExpiryLocked(tok string) {
	s.expiresAt = time.Time{}
	if claims := token.Parse(tok); claims != nil {
		if exp, ok := claims.ExpiresAt(); ok {
			s.expiresAt = exp
		}
	}
}

// changedSubsLocked collects the subscribers of every field whose value
// differs between before and after.
func (s *Store) changedSubsLocked(before, after State) []func(State) {
	var out []func(State)
	if before.User != after.User {
		out = append(out, s.subs[FieldUser]...)
	}
	if before.Token != after.Token {
		out = append(out, s.subs[FieldToken]...)
	}
	if before.Authenticated != after.Authenticated {
		out = append(out, s.subs[FieldAuthenticated]...)
	}
	if before.Loading != after.Loading {
		out = append(out, s.subs[FieldLoading]...)
	}
	return out
}
