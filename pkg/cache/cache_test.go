package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/vidtree/pkg/treemap"
)

func init() {
	retryDelay = time.Millisecond
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	value := []byte("layout")
	if err := c.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	value[0] = 'X'

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get = %v, %v; want hit", hit, err)
	}
	if string(data) != "layout" {
		t.Errorf("Get() = %q, want %q (stored value must be copied)", data, "layout")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expiry", c.Len())
	}

	_ = c.Set(ctx, "forever", []byte("x"), 0)
	now = now.Add(1000 * time.Hour)
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}

	_ = c.Delete(ctx, "forever")
	if _, hit, _ := c.Get(ctx, "forever"); hit {
		t.Error("deleted entry should miss")
	}

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Close()
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Close", c.Len())
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestItemsHash(t *testing.T) {
	base := []treemap.Item{
		{ID: "movies/heat.mkv", Weight: 14000, Meta: map[string]any{"title": "Heat"}},
		{ID: "movies/alien.mp4", Weight: 9000},
	}
	h := ItemsHash(base)
	if len(h) != 16 {
		t.Errorf("ItemsHash length should be 16, got %d", len(h))
	}
	if ItemsHash(base) != h {
		t.Error("ItemsHash should be deterministic")
	}

	tests := []struct {
		name  string
		items []treemap.Item
	}{
		{"weight changed", []treemap.Item{{ID: "movies/heat.mkv", Weight: 14000.5, Meta: map[string]any{"title": "Heat"}}, base[1]}},
		{"id changed", []treemap.Item{{ID: "movies/heat.mp4", Weight: 14000, Meta: map[string]any{"title": "Heat"}}, base[1]}},
		{"meta changed", []treemap.Item{{ID: "movies/heat.mkv", Weight: 14000, Meta: map[string]any{"title": "Heat (1995)"}}, base[1]}},
		{"reordered", []treemap.Item{base[1], base[0]}},
		{"dropped", base[:1]},
		{"id boundary", []treemap.Item{{ID: "movies/heat.mkvmovies/alien.mp4"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ItemsHash(tt.items) == h {
				t.Errorf("ItemsHash should change when %s", tt.name)
			}
		})
	}

	if ItemsHash(nil) != ItemsHash([]treemap.Item{}) {
		t.Error("nil and empty item lists should hash the same")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	opts := LayoutKeyOpts{Mode: "log", Width: 1200, Height: 800}
	lk1 := k.LayoutKey("hash123", opts)
	if !strings.HasPrefix(lk1, "layout:") || len(lk1) != len("layout:")+64 {
		t.Errorf("LayoutKey unexpected: %s", lk1)
	}
	if k.LayoutKey("hash123", opts) != lk1 {
		t.Error("LayoutKey should be deterministic")
	}

	variants := []LayoutKeyOpts{
		{Mode: "linear", Width: 1200, Height: 800},
		{Mode: "log", Width: 1201, Height: 800},
		{Mode: "log", Width: 1200, Height: 800, Hierarchical: true},
		{Mode: "log", Width: 1200, Height: 800, Hierarchical: true, GroupBy: "top"},
		{Mode: "log", Width: 1200, Height: 800, Padding: 4},
		{Mode: "log", Width: 1200, Height: 800, Folder: "shows"},
	}
	for _, v := range variants {
		if k.LayoutKey("hash123", v) == lk1 {
			t.Errorf("LayoutKeyOpts %+v should produce a different key", v)
		}
	}
	if k.LayoutKey("hash456", opts) == lk1 {
		t.Error("Different items hashes should produce different keys")
	}

	ak1 := k.ArtifactKey(lk1, ArtifactKeyOpts{Format: "svg", Labels: true})
	ak2 := k.ArtifactKey(lk1, ArtifactKeyOpts{Format: "json", Labels: true})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ak1, "artifact:") {
		t.Errorf("ArtifactKey unexpected: %s", ak1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "api:")

	opts := LayoutKeyOpts{Mode: "log", Width: 10, Height: 10}
	key := scoped.LayoutKey("h", opts)
	if key != "api:"+inner.LayoutKey("h", opts) {
		t.Errorf("ScopedKeyer LayoutKey unexpected: %s", key)
	}

	art := scoped.ArtifactKey("layout:x", ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(art, "api:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", art)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(key, "prefix:layout:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	if IsRetryable(ErrCacheMiss) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrCacheMiss
	})
	if err != ErrCacheMiss {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	// Gives up after three attempts
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Should return last error: %v", err)
	}
	if calls != 3 {
		t.Errorf("Should attempt three times: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
