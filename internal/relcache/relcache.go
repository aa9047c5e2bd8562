// Package relcache persists inferred branch relationships (child →
// parent, per repository) across analysis runs, so a reload reuses the
// previous resolution instead of re-running the expensive comparison
// scan. Entries expire on their own TTL, independent of any branch-list
// caching the caller does.
package relcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTTL is how long a repository's relationship map stays valid.
const DefaultTTL = 30 * time.Minute

// repoEntry is the persisted relationship map for one repository.
type repoEntry struct {
	UpdatedAt time.Time         `json:"updated_at"`
	Parents   map[string]string `json:"parents"`
}

// Store is a file-backed relationship cache keyed by "owner/repo".
type Store struct {
	path   string
	ttl    time.Duration
	mu     sync.RWMutex
	repos  map[string]repoEntry
	logger *log.Logger
	now    func() time.Time
}

// NewStore creates a Store backed by the given file. The file is not
// read until Load is called.
func NewStore(path string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		path:   path,
		ttl:    ttl,
		repos:  make(map[string]repoEntry),
		logger: log.WithPrefix("relcache"),
		now:    time.Now,
	}
}

// Load reads the cache file. A missing file is not an error; a corrupt
// file is discarded so analysis starts from an empty cache.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read relationship cache: %w", err)
	}

	var repos map[string]repoEntry
	if err := json.Unmarshal(data, &repos); err != nil {
		s.logger.Warn("discarding corrupt relationship cache", "path", s.path, "err", err)
		s.repos = make(map[string]repoEntry)
		return nil
	}
	if repos == nil {
		repos = make(map[string]repoEntry)
	}
	s.repos = repos
	return nil
}

// Save writes the cache file atomically. The whole marshal-and-rename
// runs under the write lock so concurrent saves cannot race on the
// temp file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.repos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode relationship cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write relationship cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace relationship cache: %w", err)
	}
	return nil
}

// Get returns a copy of the cached child→parent map for a repository,
// or nil when there is no entry or the entry has expired. Staleness of
// individual parents against the live branch set is the analyzer's
// concern, not the store's.
func (s *Store) Get(owner, repo string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.repos[repoKey(owner, repo)]
	if !ok {
		return nil
	}
	if s.now().Sub(entry.UpdatedAt) > s.ttl {
		return nil
	}

	parents := make(map[string]string, len(entry.Parents))
	for child, parent := range entry.Parents {
		parents[child] = parent
	}
	return parents
}

// Put replaces a repository's relationship map and stamps it with the
// current time.
func (s *Store) Put(owner, repo string, parents map[string]string) {
	copied := make(map[string]string, len(parents))
	for child, parent := range parents {
		copied[child] = parent
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[repoKey(owner, repo)] = repoEntry{
		UpdatedAt: s.now(),
		Parents:   copied,
	}
}

// Forget drops a repository's entry.
func (s *Store) Forget(owner, repo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.repos, repoKey(owner, repo))
}

func repoKey(owner, repo string) string {
	return owner + "/" + repo
}
