package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

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

	// Overwrite replaces the previous value
	if err := kv.Save(ctx, "a", []byte("two")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	value, _ = kv.Load(ctx, "a")
	if string(value) != "two" {
		t.Errorf("expected %q after overwrite, got %q", "two", string(value))
	}

	if err := kv.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := kv.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent key is not an error
	if err := kv.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("delete of absent key should not error, got %v", err)
	}
}

func TestMemory_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	if err := kv.Save(ctx, "a", []byte("original")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	value, _ := kv.Load(ctx, "a")
	value[0] = 'X'

	again, _ := kv.Load(ctx, "a")
	if string(again) != "original" {
		t.Errorf("stored value was mutated through a loaded slice: %q", string(again))
	}
}
