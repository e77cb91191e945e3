// Package event provides a typed, synchronous publish/subscribe bus.
package event

import (
	"reflect"
	"sync"
)

// Bus delivers events to handlers registered for the event's type.
// Publish runs handlers immediately, on the caller's goroutine, in
// registration order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]any
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]any)}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Publish delivers ev to every handler subscribed to T and returns the
// number of handlers invoked.
func Publish[T any](b *Bus, ev T) int {
	b.mu.RLock()
	handlers := b.handlers[typeOf[T]()]
	b.mu.RUnlock()

	for _, h := range handlers {
		h.(func(T))(ev)
	}
	return len(handlers)
}

// Reset drops every registered handler.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[reflect.Type][]any)
}
