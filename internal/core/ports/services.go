package ports

import (
	"context"

	"github.com/samirrijal/geogrid/internal/core/domain"
)

// GridObserver receives the outcome of each reconcile cycle.
type GridObserver interface {
	GridReconciled(snapshot domain.GridSnapshot)
}

// GridObserverFunc adapts a function to GridObserver.
type GridObserverFunc func(snapshot domain.GridSnapshot)

func (f GridObserverFunc) GridReconciled(snapshot domain.GridSnapshot) { f(snapshot) }

// EventPublisher publishes grid events to a message broker.
type EventPublisher interface {
	PublishGridUpdate(ctx context.Context, sessionID string, snapshot *domain.GridSnapshot) error
	PublishSessionClosed(ctx context.Context, sessionID string) error
}

// EventSubscriber subscribes to session commands from a message broker.
type EventSubscriber interface {
	SubscribeCameraCommands(ctx context.Context, handler func(ctx context.Context, sessionID string, update domain.CameraUpdate) error) error
	SubscribeProjectionCommands(ctx context.Context, handler func(ctx context.Context, sessionID string, mode domain.ProjectionMode) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// SessionHandle is a live session as kept by a SessionStore.
type SessionHandle interface {
	ID() string
}

// SessionStore keeps live sessions and expires idle ones.
type SessionStore[T SessionHandle] interface {
	Put(session T)
	Get(id string) (T, bool)
	Delete(id string) bool
	List() []T
	Len() int
	// OnExpire registers a callback run when a session is evicted for inactivity.
	OnExpire(fn func(session T))
}
