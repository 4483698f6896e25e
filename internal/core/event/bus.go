package event

import (
	"reflect"
	"sync"
)

// message pairs a queued payload with the type key its handlers were
// registered under.
type message struct {
	key     reflect.Type
	payload any
}

// Bus is the double-buffered tick event queue. Everything emitted during
// tick N is delivered at the start of tick N+1, in emission order, so no
// consumer ever observes a half-applied tick.
type Bus struct {
	mu       sync.Mutex // guards handlers; emit and dispatch stay on the game goroutine
	handlers map[reflect.Type][]func(any)

	staged []message // filling up during the current tick
	ready  []message // being delivered
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]func(any))}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event for delivery on the next tick.
func Emit[T any](b *Bus, ev T) {
	b.staged = append(b.staged, message{key: typeKey[T](), payload: ev})
}

// Subscribe registers a handler for events of type T. The typed wrapper is
// built here once, so dispatch is a plain call.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := typeKey[T]()
	b.handlers[k] = append(b.handlers[k], func(v any) { fn(v.(T)) })
}

// SwapBuffers promotes the staged queue for delivery. Runs once at tick
// start; anything emitted after the swap waits a full tick.
func (b *Bus) SwapBuffers() {
	b.ready, b.staged = b.staged, b.ready[:0]
}

// DispatchAll delivers the promoted queue in emission order.
func (b *Bus) DispatchAll() {
	for _, m := range b.ready {
		for _, h := range b.handlers[m.key] {
			h(m.payload)
		}
	}
}
