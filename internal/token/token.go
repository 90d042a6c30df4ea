// Package token is the single source of truth for the bearer token attached
// to outgoing backend requests. Absence of a token is a normal state, never
// an error.
package token

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// CookieName is the token cookie key. The path scope covers the whole site.
const CookieName = "@raihasa/token"

// Store reads and writes the bearer token. A Set must be observable by the
// next Get on the same store.
type Store interface {
	// Get returns the current token, or "" when absent.
	Get() string

	// Set persists value; subsequent Gets observe it immediately.
	Set(value string)

	// Remove deletes the token; subsequent Gets return "".
	Remove()
}

// CookieStore holds the token in the visitor's cookie. Writes go to the
// response; pending mirrors them so Gets within the same request observe
// the new value before the browser echoes the cookie back.
type CookieStore struct {
	c       *gin.Context
	secure  bool
	pending *string
}

// NewCookieStore creates a token store bound to one request/response pair
func NewCookieStore(c *gin.Context, secure bool) *CookieStore {
	return &CookieStore{c: c, secure: secure}
}

func (s *CookieStore) Get() string {
	if s.pending != nil {
		return *s.pending
	}
	value, err := s.c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return value
}

func (s *CookieStore) Set(value string) {
	// No explicit expiry: the cookie lives for the browser session
	s.c.SetCookie(CookieName, value, 0, "/", "", s.secure, true)
	s.pending = &value
}

func (s *CookieStore) Remove() {
	s.c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
	empty := ""
	s.pending = &empty
}

// MemoryStore is an in-process token store for tests and non-HTTP callers
type MemoryStore struct {
	mu    sync.Mutex
	value string
}

// NewMemory creates an empty in-memory token store
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *MemoryStore) Set(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}

func (s *MemoryStore) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
}
