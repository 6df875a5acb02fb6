// Package bus provides a page-scoped publish/subscribe channel for requests
// that cross component boundaries, such as asking a page to open a modal.
package bus

import (
	"slices"
	"sync"
)

// Bus delivers published values to every current subscriber, in subscription
// order. The zero value is ready to use.
type Bus[T any] struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[uint64]func(T)
}

func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	if b.handlers == nil {
		b.handlers = make(map[uint64]func(T))
	}
	b.next++
	id := b.next
	b.handlers[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish calls every subscriber with v and returns how many were reached.
// Handlers run on the caller's goroutine without the lock held, so they may
// subscribe or unsubscribe.
func (b *Bus[T]) Publish(v T) int {
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
	return len(fns)
}

// Len reports the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
