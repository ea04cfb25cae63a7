package permcache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	perms      []string
	expiresAt  time.Time
	staleUntil time.Time
}

// MemoryStore is the in-process cache backend. It bounds its size with LRU
// eviction and runs a background sweep that removes entries whose stale
// retention window has elapsed. Close stops the sweep.
type MemoryStore struct {
	mu         sync.Mutex
	items      map[string]memoryEntry
	lru        []string // eviction order, least recently used first
	maxEntries int
	staleFor   time.Duration

	stop   chan struct{}
	done   chan struct{}
	closed bool

	now func() time.Time
}

// NewMemoryStore creates an in-process store and starts its cleanup goroutine.
func NewMemoryStore(cfg Config) *MemoryStore {
	cfg = cfg.withDefaults()

	s := &MemoryStore{
		items:      make(map[string]memoryEntry),
		lru:        make([]string, 0, cfg.MaxEntries),
		maxEntries: cfg.MaxEntries,
		staleFor:   cfg.StaleFor,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		now:        time.Now,
	}

	go s.cleanup(cfg.CleanupInterval)

	return s
}

// Get returns a copy of the cached permission set if it has not expired.
// A hit refreshes the entry's LRU position.
func (s *MemoryStore) Get(_ context.Context, key string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[key]
	if !ok || s.now().After(entry.expiresAt) {
		return nil, false
	}

	s.touchLRU(key)
	return copyPerms(entry.perms), true
}

// GetStale returns a copy of the cached permission set even past its TTL,
// as long as the stale retention window has not elapsed.
func (s *MemoryStore) GetStale(_ context.Context, key string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[key]
	if !ok || s.now().After(entry.staleUntil) {
		return nil, false
	}

	return copyPerms(entry.perms), true
}

// Set stores a copy of the permission set under key.
func (s *MemoryStore) Set(_ context.Context, key string, perms []string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists && len(s.items) >= s.maxEntries {
		if len(s.lru) > 0 {
			evict := s.lru[0]
			s.lru = s.lru[1:]
			delete(s.items, evict)
		}
	}

	now := s.now()
	s.items[key] = memoryEntry{
		perms:      copyPerms(perms),
		expiresAt:  now.Add(ttl),
		staleUntil: now.Add(ttl + s.staleFor),
	}
	s.touchLRU(key)
}

// DeletePattern removes every entry matching the pattern. A trailing "*"
// matches any suffix; otherwise the pattern is treated as an exact key.
func (s *MemoryStore) DeletePattern(_ context.Context, pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		if _, ok := s.items[pattern]; ok {
			delete(s.items, pattern)
			s.removeLRU(pattern)
		}
		return
	}

	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
			s.removeLRU(key)
		}
	}
}

// Close stops the cleanup goroutine and waits for it to finish.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return nil
}

// Len reports the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// SetClock overrides the store clock. Intended for tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stop:
			return
		}
	}
}

// removeExpired drops entries past their stale retention; entries that are
// merely past TTL stay available to GetStale.
func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.items {
		if now.After(entry.staleUntil) {
			delete(s.items, key)
			s.removeLRU(key)
		}
	}
}

// touchLRU moves key to the most recently used position. Lock must be held.
func (s *MemoryStore) touchLRU(key string) {
	s.removeLRU(key)
	s.lru = append(s.lru, key)
}

// removeLRU drops key from the eviction order. Lock must be held.
func (s *MemoryStore) removeLRU(key string) {
	for i, k := range s.lru {
		if k == key {
			s.lru = append(s.lru[:i], s.lru[i+1:]...)
			return
		}
	}
}

func copyPerms(perms []string) []string {
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
