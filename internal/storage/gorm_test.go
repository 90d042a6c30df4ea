package storage

import (
	"context"
	"errors"
	"testing"
)

func newTestGorm(t *testing.T) *Gorm {
	t.Helper()

	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return NewGorm(db)
}

func TestGorm_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	kv := newTestGorm(t)

	if _, err := kv.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := kv.Save(ctx, "a", []byte("one")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	value, err := kv.Load(ctx, "a")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(value) != "one" {
		t.Errorf("expected %q, got %q", "one", string(value))
	}

	// Upsert path: save to an existing key
	if err := kv.Save(ctx, "a", []byte("two")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	value, _ = kv.Load(ctx, "a")
	if string(value) != "two" {
		t.Errorf("expected %q after upsert, got %q", "two", string(value))
	}

	if err := kv.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := kv.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := kv.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("delete of absent key should not error, got %v", err)
	}
}
