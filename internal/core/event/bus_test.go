package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingEvent struct{ n int }
type pongEvent struct{ s string }

func TestBusDeliversAfterSwap(t *testing.T) {
	bus := NewBus()

	var got []pingEvent
	Subscribe(bus, func(ev pingEvent) { got = append(got, ev) })

	Emit(bus, pingEvent{n: 1})
	Emit(bus, pingEvent{n: 2})

	bus.DispatchAll()
	assert.Empty(t, got, "emits stay buffered until the swap")

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []pingEvent{{n: 1}, {n: 2}}, got)

	// Swapping again clears the delivered batch.
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Len(t, got, 2)
}

func TestBusRoutesByType(t *testing.T) {
	bus := NewBus()

	var pings, pongs int
	Subscribe(bus, func(pingEvent) { pings++ })
	Subscribe(bus, func(pongEvent) { pongs++ })

	Emit(bus, pingEvent{n: 1})
	Emit(bus, pongEvent{s: "a"})
	Emit(bus, pongEvent{s: "b"})

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, 1, pings)
	assert.Equal(t, 2, pongs)
}

func TestBusMultipleHandlers(t *testing.T) {
	bus := NewBus()

	var a, b int
	Subscribe(bus, func(pingEvent) { a++ })
	Subscribe(bus, func(pingEvent) { b++ })

	Emit(bus, pingEvent{})
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestBusKeepsEmissionOrderAcrossTypes(t *testing.T) {
	bus := NewBus()

	var order []string
	Subscribe(bus, func(pingEvent) { order = append(order, "ping") })
	Subscribe(bus, func(ev pongEvent) { order = append(order, ev.s) })

	Emit(bus, pongEvent{s: "first"})
	Emit(bus, pingEvent{})
	Emit(bus, pongEvent{s: "last"})

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []string{"first", "ping", "last"}, order)
}

func TestBusEmitDuringDispatchLandsNextTick(t *testing.T) {
	bus := NewBus()

	var seen int
	Subscribe(bus, func(ev pingEvent) {
		seen++
		if ev.n == 0 {
			Emit(bus, pingEvent{n: 1})
		}
	})

	Emit(bus, pingEvent{n: 0})
	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, 1, seen, "re-emit buffered for the next tick")

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, 2, seen)
}
