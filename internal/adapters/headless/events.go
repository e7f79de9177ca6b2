package headless

import (
	"github.com/samirrijal/geogrid/internal/core/domain"
	"github.com/samirrijal/geogrid/internal/core/ports"
)

type subscription struct {
	id   int
	fn   func()
	once bool
}

// eventBus dispatches map events synchronously, in subscription order.
type eventBus struct {
	next     int
	handlers map[domain.MapEvent][]subscription
}

func newEventBus() *eventBus {
	return &eventBus{handlers: make(map[domain.MapEvent][]subscription)}
}

func (b *eventBus) subscribe(event domain.MapEvent, fn func(), once bool) ports.Disposer {
	b.next++
	id := b.next
	b.handlers[event] = append(b.handlers[event], subscription{id: id, fn: fn, once: once})
	return func() { b.unsubscribe(event, id) }
}

func (b *eventBus) unsubscribe(event domain.MapEvent, id int) bool {
	subs := b.handlers[event]
	for i, s := range subs {
		if s.id == id {
			b.handlers[event] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// emit runs every handler subscribed to event when emit was called. Handlers
// unsubscribed by an earlier handler of the same dispatch are skipped.
func (b *eventBus) emit(event domain.MapEvent) {
	pending := append([]subscription(nil), b.handlers[event]...)
	for _, s := range pending {
		if !b.live(event, s.id) {
			continue
		}
		if s.once {
			b.unsubscribe(event, s.id)
		}
		s.fn()
	}
}

func (b *eventBus) live(event domain.MapEvent, id int) bool {
	for _, s := range b.handlers[event] {
		if s.id == id {
			return true
		}
	}
	return false
}

// count returns the number of handlers subscribed to event.
func (b *eventBus) count(event domain.MapEvent) int {
	return len(b.handlers[event])
}

func (b *eventBus) clear() {
	b.handlers = make(map[domain.MapEvent][]subscription)
}
