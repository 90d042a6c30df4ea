// Package storage provides the key-value repositories behind the session,
// token and wizard state. Three drivers cover the lifetimes the app needs:
// memory (lives with the process), sqlite (durable across restarts) and
// redis (shared across instances).
package storage

import "context"

// Well-known storage keys. Session- and visitor-scoped slots append the
// session or user identifier to these prefixes.
const (
	SessionKeyPrefix    = "@raihasa/session"
	ReturnPathKeyPrefix = "@raihasa/return-path"
	WizardDraftPrefix   = "@raihasa/recommendation-draft"
)

// KV abstracts session/token/draft persistence. A Save must be observable
// by the next Load on the same store.
type KV interface {
	// Load returns the value stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
