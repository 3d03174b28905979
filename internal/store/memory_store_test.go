package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore[string](time.Minute, nil)
	defer s.Close()

	id := NewID()
	require.NotEmpty(t, id)
	s.Put(id, "board")

	v, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "board", v)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_GetOrCreate(t *testing.T) {
	s := NewMemoryStore[*int](time.Minute, nil)
	defer s.Close()

	calls := 0
	mk := func() *int {
		calls++
		n := calls
		return &n
	}

	a := s.GetOrCreate("admin-1", mk)
	b := s.GetOrCreate("admin-1", mk)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)

	c := s.GetOrCreate("admin-2", mk)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStore_ExpireIdleEntries(t *testing.T) {
	var mu sync.Mutex
	var evicted []string
	s := NewMemoryStore[string](time.Minute, func(id string, v string) {
		mu.Lock()
		defer mu.Unlock()
		evicted = append(evicted, v)
	})
	defer s.Close()

	now := time.Now()
	s.now = func() time.Time { return now }

	stale, fresh := NewID(), NewID()
	s.Put(stale, "stale")
	s.Put(fresh, "fresh")

	now = now.Add(50 * time.Second)
	_, err := s.Get(fresh) // touch
	require.NoError(t, err)

	now = now.Add(20 * time.Second)
	s.expire()

	_, err = s.Get(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Get(fresh)
	assert.NoError(t, err)
	assert.Equal(t, []string{"stale"}, evicted)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore[string](time.Minute, nil)
	defer s.Close()

	s.Put("x", "x")
	s.Delete("x")
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	s := NewMemoryStore[string](time.Minute, nil)
	s.Close()
	s.Close()
}
