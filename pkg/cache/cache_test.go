package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/lifeline/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// backends runs fn against every local backend.
func backends(t *testing.T, fn func(t *testing.T, c Cache, advance func(time.Duration))) {
	t.Run("memory", func(t *testing.T) {
		c := NewMemoryCache()
		now := time.Unix(1_700_000_000, 0)
		c.now = func() time.Time { return now }
		fn(t, c, func(d time.Duration) { now = now.Add(d) })
	})
	t.Run("file", func(t *testing.T) {
		c, err := NewFileCache(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		now := time.Unix(1_700_000_000, 0)
		c.now = func() time.Time { return now }
		fn(t, c, func(d time.Duration) { now = now.Add(d) })
	})
}

func TestCacheRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, c Cache, _ func(time.Duration)) {
		ctx := context.Background()
		want := []byte(`<svg/>`)
		if err := c.Set(ctx, "artifact:abc", want, time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, hit, err := c.Get(ctx, "artifact:abc")
		if err != nil || !hit {
			t.Fatalf("Get = %v, %v", hit, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Get = %q, want %q", got, want)
		}

		if err := c.Delete(ctx, "artifact:abc"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "artifact:abc"); hit {
			t.Error("entry still present after Delete")
		}
		if err := c.Delete(ctx, "never-set"); err != nil {
			t.Errorf("Delete of missing key: %v", err)
		}
	})
}

func TestCacheExpiry(t *testing.T) {
	backends(t, func(t *testing.T, c Cache, advance func(time.Duration)) {
		ctx := context.Background()
		c.Set(ctx, "short", []byte("1"), time.Minute)
		c.Set(ctx, "forever", []byte("2"), 0)

		advance(2 * time.Minute)

		if _, hit, _ := c.Get(ctx, "short"); hit {
			t.Error("expired entry returned")
		}
		if _, hit, _ := c.Get(ctx, "forever"); !hit {
			t.Error("entry without ttl expired")
		}
	})
}

func TestMemoryCacheCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	data := []byte("abc")
	c.Set(ctx, "k", data, 0)
	data[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller slice: %q", got)
	}
	got[1] = 'y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("returned value aliased stored slice: %q", again)
	}
}

func TestMemoryCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			for j := 0; j < 100; j++ {
				c.Set(ctx, key, []byte{byte(j)}, time.Hour)
				c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 8 {
		t.Errorf("Len = %d, want 8", c.Len())
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c.Set(ctx, "k", []byte("v"), 0)
	path := c.path("k")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir removed: %v", err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir = %q, want %q", c.Dir(), dir)
	}
}

func TestFileCacheLayout(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	p := c.path("layout:123")
	rel, _ := filepath.Rel(c.Dir(), p)
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || len(parts[0]) != 2 || !strings.HasSuffix(parts[1], ".json") {
		t.Errorf("unexpected entry path %q", rel)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	a, err := HashJSON(LayoutKeyOpts{ConfigHash: "x"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(LayoutKeyOpts{ConfigHash: "x"})
	if a != b {
		t.Error("HashJSON should be deterministic")
	}
	if _, err := HashJSON(make(chan int)); err == nil {
		t.Error("HashJSON should fail on unencodable values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("doc", LayoutKeyOpts{ConfigHash: "a"})
	lk2 := k.LayoutKey("doc", LayoutKeyOpts{ConfigHash: "b"})
	lk3 := k.LayoutKey("doc", LayoutKeyOpts{ConfigHash: "a", Trace: true})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("doc", LayoutKeyOpts{ConfigHash: "a"}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey = %q, want layout: prefix", lk1)
	}

	ak1 := k.ArtifactKey("l", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("l", ArtifactKeyOpts{Format: "json"})
	ak3 := k.ArtifactKey("l", ArtifactKeyOpts{Format: "svg", SequenceNumbers: true})
	if ak1 == ak2 || ak1 == ak3 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:1:")
	key := scoped.LayoutKey("doc", LayoutKeyOpts{})
	if !strings.HasPrefix(key, "tenant:1:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", key)
	}

	bare := NewScopedKeyer(nil, "p:")
	if got, want := bare.ArtifactKey("l", ArtifactKeyOpts{Format: "svg"}), "p:"+NewDefaultKeyer().ArtifactKey("l", ArtifactKeyOpts{Format: "svg"}); got != want {
		t.Errorf("nil inner: got %s, want %s", got, want)
	}
}

func TestKeyType(t *testing.T) {
	k := NewScopedKeyer(nil, "tenant:1:")
	tests := []struct {
		key  string
		want string
	}{
		{NewDefaultKeyer().LayoutKey("d", LayoutKeyOpts{}), "layout"},
		{NewDefaultKeyer().ArtifactKey("l", ArtifactKeyOpts{}), "artifact"},
		{k.LayoutKey("d", LayoutKeyOpts{}), "layout"},
		{k.ArtifactKey("l", ArtifactKeyOpts{}), "artifact"},
		{"plain", "other"},
		{"session:abc", "other"},
	}
	for _, tt := range tests {
		if got := KeyType(tt.key); got != tt.want {
			t.Errorf("KeyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, misses, set map[string]int
}

func newCountingHooks() *countingHooks {
	return &countingHooks{hits: map[string]int{}, misses: map[string]int{}, set: map[string]int{}}
}

func (h *countingHooks) OnCacheHit(_ context.Context, kt string) {
	h.mu.Lock()
	h.hits[kt]++
	h.mu.Unlock()
}

func (h *countingHooks) OnCacheMiss(_ context.Context, kt string) {
	h.mu.Lock()
	h.misses[kt]++
	h.mu.Unlock()
}

func (h *countingHooks) OnCacheSet(_ context.Context, kt string, size int) {
	h.mu.Lock()
	h.set[kt] += size
	h.mu.Unlock()
}

func TestWithHooks(t *testing.T) {
	hooks := newCountingHooks()
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c := WithHooks(NewMemoryCache())
	key := NewDefaultKeyer().LayoutKey("d", LayoutKeyOpts{})

	c.Get(ctx, key)
	c.Set(ctx, key, []byte("12345"), 0)
	c.Get(ctx, key)

	if hooks.misses["layout"] != 1 || hooks.hits["layout"] != 1 || hooks.set["layout"] != 5 {
		t.Errorf("hooks = hits %v misses %v set %v", hooks.hits, hooks.misses, hooks.set)
	}
}

func TestWithHooksNilCache(t *testing.T) {
	hooks := newCountingHooks()
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c := WithHooks(nil)
	key := NewDefaultKeyer().LayoutKey("d", LayoutKeyOpts{})

	c.Set(ctx, key, []byte("12345"), 0)
	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get = hit %v, err %v; want miss", hit, err)
	}
	if hooks.misses["layout"] != 1 || hooks.hits["layout"] != 0 {
		t.Errorf("hooks = hits %v misses %v", hooks.hits, hooks.misses)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	calls = 0
	plain := errors.New("boom")
	if err := RetryWithBackoff(ctx, func() error { calls++; return plain }); err != plain || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry then succeed: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrUnavailable) })
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
