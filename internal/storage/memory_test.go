package storage

import (
	"context"
	"testing"

	"github.com/example/campus-portal/internal/session"
)

var _ session.Store = (*Memory)(nil)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	var m Memory

	if _, ok, err := m.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get on empty store = %v, %v", ok, err)
	}
	if err := m.Set(ctx, session.TokenKey, "tok"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := m.Set(ctx, session.TokenKey, "tok-2"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if v, ok, _ := m.Get(ctx, session.TokenKey); !ok || v != "tok-2" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if err := m.Delete(ctx, session.TokenKey, "never-set"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok, _ := m.Get(ctx, session.TokenKey); ok {
		t.Fatal("token still stored after Delete")
	}
}

func TestMemoryBacksSessionManager(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.Set(ctx, session.TokenKey, "tok"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, session.UserKey, `{"id":"s1","name":"Sara","role":"student"}`); err != nil {
		t.Fatal(err)
	}

	m := session.NewManager(nil, store)
	s, ok := m.Restore(ctx)
	if !ok || s.Principal.Name != "Sara" {
		t.Fatalf("Restore = %+v, %v", s, ok)
	}
	m.Logout(ctx)
	for _, key := range []string{session.TokenKey, session.UserKey} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Fatalf("logout left %s behind", key)
		}
	}
}
