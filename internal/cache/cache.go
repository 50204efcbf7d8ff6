// Package cache is a small TTL memo for single-entity lookups, keyed by
// (resource, id) and invalidated explicitly by the matching write paths.
// It deliberately covers one hot read path; it is not a general LRU.
package cache

import (
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry

	now func() time.Time // test hook
}

func New(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func key(resource string, id uint) string {
	return resource + ":" + strconv.FormatUint(uint64(id), 10)
}

// Get returns the cached value for (resource, id). Expired entries are
// removed and reported as missing.
func (s *Store) Get(resource string, id uint) (interface{}, bool) {
	k := key(resource, id)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, k)
		return nil, false
	}
	return e.value, true
}

func (s *Store) Set(resource string, id uint, v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key(resource, id)] = entry{value: v, expiresAt: s.now().Add(s.ttl)}
}

// Invalidate drops the entry for (resource, id); called by write paths.
func (s *Store) Invalidate(resource string, id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(resource, id))
}
