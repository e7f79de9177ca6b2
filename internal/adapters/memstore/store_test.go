package memstore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle string

func (h handle) ID() string { return string(h) }

func TestStore_PutGetDelete(t *testing.T) {
	s := New[handle](time.Minute, 0)

	s.Put("a")
	s.Put("b")
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, handle("a"), got)
	assert.Equal(t, 2, s.Len())
	assert.ElementsMatch(t, []handle{"a", "b"}, s.List())

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	_, ok = s.Get("a")
	assert.False(t, ok)
	_, ok = s.Peek("b")
	assert.True(t, ok)
}

func TestStore_ConcurrentDeleteReportsOnce(t *testing.T) {
	s := New[handle](time.Minute, 0)
	s.Put("a")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Delete("a") {
				mu.Lock()
				deleted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ExpireCallback(t *testing.T) {
	s := New[handle](20*time.Millisecond, 0)
	var (
		mu      sync.Mutex
		expired []handle
	)
	s.OnExpire(func(h handle) {
		mu.Lock()
		expired = append(expired, h)
		mu.Unlock()
	})
	s.Start()
	defer s.Stop()

	s.Put("idle")
	s.Put("deleted")
	s.Delete("deleted")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(expired) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []handle{"idle"}, expired)
	assert.Equal(t, 0, s.Len())
}

func TestStore_CapacityEvicts(t *testing.T) {
	s := New[handle](time.Minute, 1)
	var evicted []handle
	done := make(chan struct{}, 1)
	s.OnExpire(func(h handle) {
		evicted = append(evicted, h)
		done <- struct{}{}
	})

	s.Put("first")
	s.Put("second")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("capacity eviction not reported")
	}
	assert.Equal(t, []handle{"first"}, evicted)
	assert.Equal(t, 1, s.Len())
}
