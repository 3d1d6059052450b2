package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "tree:a"); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "tree:a", []byte("payload"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "tree:a")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "tree:a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "tree:a"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "tree:a"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry missed")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry hit")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("{not json"), 0o644)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d entries left in cache dir", len(entries))
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	var out struct{ N int }
	if err := GetJSON(ctx, c, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("GetJSON on empty cache = %v, want ErrCacheMiss", err)
	}
	if err := SetJSON(ctx, c, "k", struct{ N int }{7}, 0); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, "k", &out); err != nil || out.N != 7 {
		t.Errorf("GetJSON = %+v, %v", out, err)
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
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	tk1 := k.TreeKey(TreeKeyOpts{Source: "radial", Seed: 1, ParamsHash: "p"})
	tk2 := k.TreeKey(TreeKeyOpts{Source: "radial", Seed: 2, ParamsHash: "p"})
	if tk1 == tk2 {
		t.Error("Different seeds should produce different tree keys")
	}
	if !strings.HasPrefix(tk1, "tree:radial:") {
		t.Errorf("TreeKey unexpected: %s", tk1)
	}

	ak1 := k.ArtifactKey(tk1, ArtifactKeyOpts{Format: "svg", Width: 800})
	ak2 := k.ArtifactKey(tk1, ArtifactKeyOpts{Format: "png", Width: 800})
	ak3 := k.ArtifactKey(tk2, ArtifactKeyOpts{Format: "svg", Width: 800})
	if ak1 == ak2 || ak1 == ak3 {
		t.Error("Artifact keys should depend on format and tree")
	}
	if !strings.HasPrefix(ak2, "artifact:png:") {
		t.Errorf("ArtifactKey unexpected: %s", ak2)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	opts := TreeKeyOpts{Source: "mask"}
	if got, want := scoped.TreeKey(opts), "user:123:"+inner.TreeKey(opts); got != want {
		t.Errorf("TreeKey = %s, want %s", got, want)
	}
	if got := scoped.ArtifactKey("t", ArtifactKeyOpts{Format: "obj"}); !strings.HasPrefix(got, "user:123:artifact:obj:") {
		t.Errorf("ArtifactKey = %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.TreeKey(TreeKeyOpts{Source: "x"}); !strings.HasPrefix(key, "prefix:tree:x:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrBackend)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrBackend) {
		t.Error("wrapped error should unwrap to ErrBackend")
	}
	if err.Error() != ErrBackend.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrCacheMiss) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	retryDelay = time.Millisecond
	defer func() { retryDelay = 200 * time.Millisecond }()

	tests := []struct {
		name      string
		fail      int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"FirstTry", 0, true, 1, false},
		{"NonRetryable", 5, false, 1, true},
		{"RecoversAfterOne", 1, true, 2, false},
		{"GivesUp", 5, true, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls > tt.fail {
					return nil
				}
				if tt.retryable {
					return Retryable(ErrBackend)
				}
				return ErrCacheMiss
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrBackend)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
