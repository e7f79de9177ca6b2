// Package memstore keeps live sessions in process memory with an idle timeout.
package memstore

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/samirrijal/geogrid/internal/core/ports"
)

// Store is a ttlcache-backed ports.SessionStore. Reading a session extends its
// lifetime; sessions nobody touches for the idle timeout are evicted.
type Store[T ports.SessionHandle] struct {
	cache *ttlcache.Cache[string, T]
}

var _ ports.SessionStore[ports.SessionHandle] = (*Store[ports.SessionHandle])(nil)

// New creates a Store. capacity 0 means unbounded; when the store is full the
// session closest to expiry is evicted. Call Start to run expiry.
func New[T ports.SessionHandle](idle time.Duration, capacity uint64) *Store[T] {
	opts := []ttlcache.Option[string, T]{ttlcache.WithTTL[string, T](idle)}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, T](capacity))
	}
	return &Store[T]{cache: ttlcache.New(opts...)}
}

// Start runs the expiry loop until Stop is called.
func (s *Store[T]) Start() {
	go s.cache.Start()
}

// Stop ends the expiry loop. Remaining sessions are kept.
func (s *Store[T]) Stop() {
	s.cache.Stop()
}

func (s *Store[T]) Put(session T) {
	s.cache.Set(session.ID(), session, ttlcache.DefaultTTL)
}

func (s *Store[T]) Get(id string) (T, bool) {
	item := s.cache.Get(id)
	if item == nil {
		var zero T
		return zero, false
	}
	return item.Value(), true
}

// Peek returns a session without extending its lifetime.
func (s *Store[T]) Peek(id string) (T, bool) {
	item := s.cache.Get(id, ttlcache.WithDisableTouchOnHit[string, T]())
	if item == nil {
		var zero T
		return zero, false
	}
	return item.Value(), true
}

// Delete removes a session. Of several concurrent deletes of the same id only
// one reports true.
func (s *Store[T]) Delete(id string) bool {
	_, present := s.cache.GetAndDelete(id)
	return present
}

func (s *Store[T]) List() []T {
	items := s.cache.Items()
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, item.Value())
	}
	return out
}

func (s *Store[T]) Len() int {
	return s.cache.Len()
}

// OnExpire registers fn for sessions evicted by the idle timeout or the
// capacity limit. Explicit deletes do not trigger it.
func (s *Store[T]) OnExpire(fn func(session T)) {
	s.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, T]) {
		if reason == ttlcache.EvictionReasonDeleted {
			return
		}
		fn(item.Value())
	})
}
