package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CleanupInterval is how often the background cleanup runs
const CleanupInterval = 30 * time.Second

var ErrSessionNotFound = errors.New("session not found")

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// MemoryStore keeps per-session view state in memory. Entries idle for longer
// than the TTL are evicted by a background loop.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]
	ttl     time.Duration
	onEvict func(id string, v T)
	now     func() time.Time

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewMemoryStore creates a store and starts its cleanup loop. onEvict may be nil.
func NewMemoryStore[T any](ttl time.Duration, onEvict func(id string, v T)) *MemoryStore[T] {
	s := &MemoryStore[T]{
		entries:     make(map[string]*entry[T]),
		ttl:         ttl,
		onEvict:     onEvict,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop(CleanupInterval)

	return s
}

func (s *MemoryStore[T]) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.stopCleanup:
			return
		}
	}
}

// expire removes idle entries and runs the eviction hook outside the lock.
func (s *MemoryStore[T]) expire() {
	now := s.now()

	s.mu.Lock()
	var evicted []struct {
		id string
		v  T
	}
	for id, e := range s.entries {
		if s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, id)
			evicted = append(evicted, struct {
				id string
				v  T
			}{id, e.value})
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, e := range evicted {
			s.onEvict(e.id, e.v)
		}
	}
}

// NewID returns a random session id.
func NewID() string {
	return uuid.New().String()
}

// Put stores v under id, replacing any previous value.
func (s *MemoryStore[T]) Put(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry[T]{value: v, lastSeen: s.now()}
}

// GetOrCreate returns the value under key, creating it with fn on first use.
func (s *MemoryStore[T]) GetOrCreate(key string, fn func() T) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.lastSeen = s.now()
		return e.value
	}
	v := fn()
	s.entries[key] = &entry[T]{value: v, lastSeen: s.now()}
	return v
}

// Get returns the value and refreshes its idle timer.
func (s *MemoryStore[T]) Get(id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		var zero T
		return zero, ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return e.value, nil
}

func (s *MemoryStore[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (s *MemoryStore[T]) Close() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
	s.wg.Wait()
}
