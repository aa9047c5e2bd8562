package relcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "relationships.json"), ttl)
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t, time.Hour)
	s.Put("o", "r", map[string]string{"feature": "main"})

	got := s.Get("o", "r")
	if got == nil || got["feature"] != "main" {
		t.Fatalf("Get = %v, want feature->main", got)
	}

	// Returned map is a copy; mutating it must not poison the store.
	got["feature"] = "poisoned"
	if s.Get("o", "r")["feature"] != "main" {
		t.Error("store shares its internal map with callers")
	}
}

func TestGetUnknownRepo(t *testing.T) {
	s := newTestStore(t, time.Hour)
	if got := s.Get("o", "missing"); got != nil {
		t.Errorf("Get = %v, want nil", got)
	}
}

func TestTTLExpiry(t *testing.T) {
	s := newTestStore(t, time.Hour)

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Put("o", "r", map[string]string{"a": "main"})

	s.now = func() time.Time { return base.Add(59 * time.Minute) }
	if s.Get("o", "r") == nil {
		t.Error("entry expired before its TTL")
	}

	s.now = func() time.Time { return base.Add(61 * time.Minute) }
	if s.Get("o", "r") != nil {
		t.Error("entry survived past its TTL")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relationships.json")

	s := NewStore(path, time.Hour)
	s.Put("o", "r", map[string]string{"feature": "develop", "develop": "main"})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fresh := NewStore(path, time.Hour)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := fresh.Get("o", "r")
	if got["feature"] != "develop" || got["develop"] != "main" {
		t.Errorf("reloaded parents = %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t, time.Hour)
	if err := s.Load(); err != nil {
		t.Errorf("Load of missing file: %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relationships.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, time.Hour)
	if err := s.Load(); err != nil {
		t.Errorf("corrupt cache should be discarded, not fatal: %v", err)
	}
	if got := s.Get("o", "r"); got != nil {
		t.Errorf("Get after corrupt load = %v, want nil", got)
	}
}

func TestForget(t *testing.T) {
	s := newTestStore(t, time.Hour)
	s.Put("o", "r", map[string]string{"a": "main"})
	s.Forget("o", "r")
	if s.Get("o", "r") != nil {
		t.Error("entry survived Forget")
	}
}

func TestConcurrentSaves(t *testing.T) {
	s := newTestStore(t, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Put("o", fmt.Sprintf("r%d", i), map[string]string{"a": "main"})
			if err := s.Save(); err != nil {
				t.Errorf("Save: %v", err)
			}
		}()
	}
	wg.Wait()

	// The last rename wins and the file must still be parseable.
	fresh := NewStore(s.path, time.Hour)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load after concurrent saves: %v", err)
	}
	for i := 0; i < 8; i++ {
		if got := fresh.Get("o", fmt.Sprintf("r%d", i)); got["a"] != "main" {
			t.Errorf("r%d after reload = %v", i, got)
		}
	}
}
