// Package event provides a simple in-process event dispatcher.
//
// Register listeners at boot, fire from anywhere:
//
//	event.Listen("product.changed", func(payload interface{}) { ... })
//	event.Fire("product.changed", ev)
//
// Delivery is synchronous and in registration order unless FireAsync is
// used. The dispatcher carries no persistence and no retry: it exists to
// decouple emitters from subscribers inside one process.
package event

import "sync"

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

// Dispatcher routes named events to registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (d *Dispatcher) Listen(event string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func (d *Dispatcher) Fire(event string, payload interface{}) {
	for _, h := range d.snapshot(event) {
		h(payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately without waiting for handlers to complete.
func (d *Dispatcher) FireAsync(event string, payload interface{}) {
	for _, h := range d.snapshot(event) {
		go h(payload)
	}
}

// Flush removes all listeners (useful in tests).
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = map[string][]Handler{}
}

func (d *Dispatcher) snapshot(event string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := make([]Handler, len(d.handlers[event]))
	copy(hs, d.handlers[event])
	return hs
}

// ─── Default dispatcher ───────────────────────────────────────────────────────

var defaultDispatcher = NewDispatcher()

// Listen registers a handler on the default dispatcher.
func Listen(event string, handler Handler) { defaultDispatcher.Listen(event, handler) }

// Fire dispatches on the default dispatcher.
func Fire(event string, payload interface{}) { defaultDispatcher.Fire(event, payload) }

// FireAsync dispatches asynchronously on the default dispatcher.
func FireAsync(event string, payload interface{}) { defaultDispatcher.FireAsync(event, payload) }

// Flush clears the default dispatcher.
func Flush() { defaultDispatcher.Flush() }
