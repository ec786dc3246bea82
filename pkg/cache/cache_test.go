package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// exerciseCache runs the behavior every backend must share.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v1"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get(k) = %q, %v, %v, want v1, true, nil", data, hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("Get after overwrite = %q, want v2", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}

	if cl, ok := c.(Clearer); ok {
		_ = c.Set(ctx, "a", []byte("1"), 0)
		_ = c.Set(ctx, "b", []byte("2"), 0)
		if err := cl.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		for _, k := range []string{"a", "b"} {
			if _, hit, _ := c.Get(ctx, k); hit {
				t.Errorf("Get(%s) hit after Clear", k)
			}
		}
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseCache(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(59 * time.Second)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Error("entry expired early")
	}
	now = now.Add(2 * time.Second)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v, want miss", hit, err)
	}
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache(0))
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("oldest entry not evicted")
	}
	if _, hit, _ := c.Get(ctx, "c"); !hit {
		t.Error("newest entry missing")
	}
}

func TestMemoryCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	if data, _, _ := c.Get(ctx, "k"); string(data) != "abc" {
		t.Errorf("Get() = %q, want abc", data)
	}

	hit, _, _ := c.Get(ctx, "k")
	hit[1] = 'x'
	if data, _, _ := c.Get(ctx, "k"); string(data) != "abc" {
		t.Errorf("Get() after mutating a hit = %q, want abc", data)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		want    any
	}{
		{"", &FileCache{}},
		{BackendFile, &FileCache{}},
		{BackendMemory, &MemoryCache{}},
		{BackendNone, NullCache{}},
	}
	for _, tt := range tests {
		c, err := Open(ctx, Config{Backend: tt.backend, Dir: t.TempDir()})
		if err != nil {
			t.Fatalf("Open(%q): %v", tt.backend, err)
		}
		switch tt.want.(type) {
		case *FileCache:
			if _, ok := c.(*FileCache); !ok {
				t.Errorf("Open(%q) = %T, want *FileCache", tt.backend, c)
			}
		case *MemoryCache:
			if _, ok := c.(*MemoryCache); !ok {
				t.Errorf("Open(%q) = %T, want *MemoryCache", tt.backend, c)
			}
		case NullCache:
			if _, ok := c.(NullCache); !ok {
				t.Errorf("Open(%q) = %T, want NullCache", tt.backend, c)
			}
		}
		c.Close()
	}

	if _, err := Open(ctx, Config{Backend: "etcd"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(etcd) = %v, want ErrUnknownBackend", err)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if got := len(Hash([]byte("hello"))); got != 64 {
		t.Errorf("Hash length = %d, want 64", got)
	}
	if HashInputs([]byte("ab"), []byte("c")) == HashInputs([]byte("a"), []byte("bc")) {
		t.Error("HashInputs should separate inputs")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("asset", "https://x/y.png"); got != "http:asset:https://x/y.png" {
		t.Errorf("HTTPKey() = %s", got)
	}

	base := FrameKeyOpts{Index: 1.5, Format: "svg"}
	variants := []FrameKeyOpts{
		{Index: 1.6, Format: "svg"},
		{Index: 1.5, Format: "png"},
		{Index: 1.5, Format: "svg", Locale: "de"},
		{Index: 1.5, Format: "svg", Embed: true},
	}
	bk := k.FrameKey("h", base)
	if bk != k.FrameKey("h", base) {
		t.Error("FrameKey not deterministic")
	}
	if bk == k.FrameKey("other", base) {
		t.Error("FrameKey ignores the input hash")
	}
	for _, v := range variants {
		if k.FrameKey("h", v) == bk {
			t.Errorf("FrameKey(%+v) collides with %+v", v, base)
		}
	}

	p1 := k.PlanKey(PlanKeyOpts{Steps: 10, Duration: 30, FPS: 30})
	p2 := k.PlanKey(PlanKeyOpts{Steps: 10, Duration: 30, FPS: 60})
	if p1 == p2 {
		t.Error("PlanKey ignores fps")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:")
	if got := scoped.HTTPKey("asset", "a"); got != "tenant:http:asset:a" {
		t.Errorf("HTTPKey() = %s", got)
	}
	if got := scoped.FrameKey("h", FrameKeyOpts{}); got[:7] != "tenant:" {
		t.Errorf("FrameKey() not prefixed: %s", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.PlanKey(PlanKeyOpts{}); got[:7] != "p:plan:" {
		t.Errorf("PlanKey() with nil inner = %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	fast := Backoff{Attempts: 3, Initial: time.Millisecond}

	calls := 0
	err := fast.Do(ctx, func() error {
		calls++
		if calls < 3 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Do() = %v after %d calls, want nil after 3", err, calls)
	}

	calls = 0
	err = fast.Do(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound || calls != 1 {
		t.Errorf("non-retryable: %v after %d calls", err, calls)
	}

	calls = 0
	err = fast.Do(ctx, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: %v after %d calls", err, calls)
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("RetryWithBackoff() = %v, want context.Canceled", err)
	}
}
