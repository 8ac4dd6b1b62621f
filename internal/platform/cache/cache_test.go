package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

type fakeKV struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	now     time.Time
	getErr  error
	setErr  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		entries: make(map[string]fakeEntry),
		now:     time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeKV) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	entry, ok := f.entries[key]
	if !ok || f.now.After(entry.expiresAt) {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(entry.value, nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	raw, _ := value.([]byte)
	f.entries[key] = fakeEntry{value: string(raw), expiresAt: f.now.Add(expiration)}
	return redis.NewStatusResult("OK", nil)
}

type account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestGetOrLoadInvokesLoaderOnceOnColdCache(t *testing.T) {
	kv := newFakeKV()
	c := New(kv, nil)

	loads := 0
	loader := func(ctx context.Context) (account, error) {
		loads++
		return account{ID: "a-1", Name: "cold"}, nil
	}

	got, err := GetOrLoad(context.Background(), c, "Account_a-1", 5*time.Minute, loader)
	if err != nil {
		t.Fatalf("cold GetOrLoad failed: %v", err)
	}
	if got.Name != "cold" || loads != 1 {
		t.Fatalf("expected one load and value from loader, got %+v loads=%d", got, loads)
	}

	got, err = GetOrLoad(context.Background(), c, "Account_a-1", 5*time.Minute, loader)
	if err != nil {
		t.Fatalf("warm GetOrLoad failed: %v", err)
	}
	if loads != 1 {
		t.Fatalf("expected warm hit to skip loader, loads=%d", loads)
	}
	if got.ID != "a-1" {
		t.Fatalf("unexpected cached value %+v", got)
	}
}

func TestGetOrLoadReloadsAfterExpiry(t *testing.T) {
	kv := newFakeKV()
	c := New(kv, nil)

	loads := 0
	loader := func(ctx context.Context) (account, error) {
		loads++
		return account{ID: "a-2"}, nil
	}

	if _, err := GetOrLoad(context.Background(), c, "Account_a-2", 5*time.Minute, loader); err != nil {
		t.Fatalf("GetOrLoad failed: %v", err)
	}
	kv.advance(6 * time.Minute)
	if _, err := GetOrLoad(context.Background(), c, "Account_a-2", 5*time.Minute, loader); err != nil {
		t.Fatalf("GetOrLoad after expiry failed: %v", err)
	}
	if loads != 2 {
		t.Fatalf("expected expired entry to invoke loader again, loads=%d", loads)
	}
}

func TestGetOrLoadFallsThroughOnCacheFailure(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	c := New(kv, nil)

	got, err := GetOrLoad(context.Background(), c, "Account_a-3", 5*time.Minute, func(ctx context.Context) (account, error) {
		return account{ID: "a-3"}, nil
	})
	if err != nil {
		t.Fatalf("expected cache failure to degrade to loader, got %v", err)
	}
	if got.ID != "a-3" {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestGetOrLoadPropagatesLoaderFailure(t *testing.T) {
	kv := newFakeKV()
	c := New(kv, nil)

	wantErr := errors.New("record not found")
	_, err := GetOrLoad(context.Background(), c, "Account_a-4", 5*time.Minute, func(ctx context.Context) (account, error) {
		return account{}, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestGetOrLoadOverwritesUndecodableEntry(t *testing.T) {
	kv := newFakeKV()
	kv.entries["Account_a-5"] = fakeEntry{value: "{not json", expiresAt: kv.now.Add(time.Hour)}
	c := New(kv, nil)

	loads := 0
	got, err := GetOrLoad(context.Background(), c, "Account_a-5", 5*time.Minute, func(ctx context.Context) (account, error) {
		loads++
		return account{ID: "a-5"}, nil
	})
	if err != nil || got.ID != "a-5" || loads != 1 {
		t.Fatalf("expected undecodable entry to behave as a miss, got %+v loads=%d err=%v", got, loads, err)
	}
}

func TestKeyConfigPrefixes(t *testing.T) {
	keys := DefaultKeys()
	if got := keys.UserKey("u-1"); got != "User_u-1" {
		t.Fatalf("unexpected user key %q", got)
	}
	if got := keys.OrderKey("o-1"); got != "Order_o-1" {
		t.Fatalf("unexpected order key %q", got)
	}
}
