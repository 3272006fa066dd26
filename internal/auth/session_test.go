package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeKV は有効期限付きのインメモリ KV です。テスト専用。
type fakeKV struct {
	mu      sync.Mutex
	values  map[string]string
	expires map[string]time.Time
	err     error // 設定するとすべての操作がこのエラーを返す
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		values:  make(map[string]string),
		expires: make(map[string]time.Time),
	}
}

func (f *fakeKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.values[key] = value
	f.expires[key] = time.Now().Add(ttl)
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", false, f.err
	}
	value, ok := f.values[key]
	if !ok || time.Now().After(f.expires[key]) {
		return "", false, nil
	}
	return value, true, nil
}

func (f *fakeKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.values[key]; ok {
		f.expires[key] = time.Now().Add(ttl)
	}
	return nil
}

func (f *fakeKV) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.values, key)
	delete(f.expires, key)
	return nil
}

func TestSessionCreateValidate(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newFakeKV(), 0)

	token, err := store.Create(ctx, "42")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	callerID, ok := store.Validate(ctx, token)
	if !ok {
		t.Fatal("Validate returned not found for a live session")
	}
	if callerID != "42" {
		t.Fatalf("callerID = %q, want %q", callerID, "42")
	}
}

func TestSessionStoreTTL(t *testing.T) {
	store := NewSessionStore(newFakeKV(), 0)
	if got := store.TTL(); got != SessionTTL {
		t.Fatalf("TTL() = %v, want default %v", got, SessionTTL)
	}

	store = NewSessionStore(newFakeKV(), 48*time.Hour)
	if got := store.TTL(); got != 48*time.Hour {
		t.Fatalf("TTL() = %v, want %v", got, 48*time.Hour)
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newFakeKV(), 0)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := store.Create(ctx, "1")
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestSessionRevoke(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newFakeKV(), 0)

	token, err := store.Create(ctx, "42")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, ok := store.Validate(ctx, token); ok {
		t.Fatal("Validate returned ok for a revoked session")
	}

	// 冪等性: 二度目の Revoke もエラーにならない
	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("second Revoke returned error: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := NewSessionStore(kv, 50*time.Millisecond)

	token, err := store.Create(ctx, "42")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := store.Validate(ctx, token); ok {
		t.Fatal("Validate returned ok for an expired session")
	}
}

func TestSessionRefreshExtendsTTL(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := NewSessionStore(kv, 80*time.Millisecond)

	token, err := store.Create(ctx, "42")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := store.Refresh(ctx, token); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	// 作成から100ms経過しているが、延長により有効のまま
	if _, ok := store.Validate(ctx, token); !ok {
		t.Fatal("Validate returned not found after Refresh")
	}
}

func TestSessionValidateStoreError(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := NewSessionStore(kv, 0)

	token, err := store.Create(ctx, "42")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// ストア障害はセッションなしに格下げされ、エラーにはならない
	kv.err = errors.New("connection refused")
	if _, ok := store.Validate(ctx, token); ok {
		t.Fatal("Validate returned ok during a store outage")
	}
}
