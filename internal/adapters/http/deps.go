package http

import (
	"context"

	"github.com/samirrijal/geogrid/internal/core/usecases"
)

// ConnectionChecker reports broker connectivity.
type ConnectionChecker interface {
	Connected() bool
}

// Pinger checks that a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Grid     *usecases.GridService
	Sessions *usecases.SessionService
	NATS     ConnectionChecker
	Cache    Pinger
}
