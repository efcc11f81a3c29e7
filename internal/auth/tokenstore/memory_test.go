package tokenstore

import (
	"context"
	"testing"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, _ := s.Get(ctx, "user@example.com"); ok {
		t.Fatal("empty store should have no entry")
	}
	if ok, _ := s.Exists(ctx, "user@example.com"); ok {
		t.Fatal("Exists should be false on empty store")
	}

	if err := s.Upsert(ctx, "user@example.com", "token-1"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	token, ok, err := s.Get(ctx, "user@example.com")
	if err != nil || !ok || token != "token-1" {
		t.Fatalf("Get = (%q, %v, %v), want (token-1, true, nil)", token, ok, err)
	}
	if ok, _ := s.Exists(ctx, "user@example.com"); !ok {
		t.Error("Exists should be true after Upsert")
	}

	// Upsert replaces wholesale
	if err := s.Upsert(ctx, "user@example.com", "token-2"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	token, _, _ = s.Get(ctx, "user@example.com")
	if token != "token-2" {
		t.Errorf("after replace, Get = %q, want token-2", token)
	}

	if err := s.Delete(ctx, "user@example.com"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "user@example.com"); ok {
		t.Error("entry should be gone after Delete")
	}

	// Deleting a missing entry is not an error
	if err := s.Delete(ctx, "user@example.com"); err != nil {
		t.Errorf("Delete on missing entry: %v", err)
	}
}

func TestMemoryStore_PerEmailIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Upsert(ctx, "a@example.com", "token-a")
	_ = s.Upsert(ctx, "b@example.com", "token-b")
	_ = s.Delete(ctx, "a@example.com")

	if _, ok, _ := s.Get(ctx, "a@example.com"); ok {
		t.Error("a's entry should be deleted")
	}
	token, ok, _ := s.Get(ctx, "b@example.com")
	if !ok || token != "token-b" {
		t.Errorf("b's entry should be untouched, got (%q, %v)", token, ok)
	}
}
