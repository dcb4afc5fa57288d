// Package control maps keyboard input to actuator control values using
// per-scene binding tables.
package control

import (
	"sync"
)

// KeyEvent is one key transition from an input frontend.
type KeyEvent struct {
	// Code is the frontend key code, e.g. "ArrowUp" or "a".
	Code string
	// Down is true on press, false on release.
	Down bool
	// FromTextInput marks events originating while a text input field
	// owns the keyboard focus. Such events are never acted on.
	FromTextInput bool
}

// Bus fans key events out to subscribed handlers. It is safe for use
// from multiple goroutines.
type Bus struct {
	lock     sync.Mutex
	handlers map[int]func(KeyEvent)
	nextID   int
}

// Subscription is one installed handler. Closing it uninstalls the
// handler exactly once; further closes are no-ops.
type Subscription struct {
	bus *Bus
	id  int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[int]func(KeyEvent))}
}

// Subscribe installs a handler and returns its subscription.
func (b *Bus) Subscribe(h func(KeyEvent)) *Subscription {
	b.lock.Lock()
	defer b.lock.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	return &Subscription{bus: b, id: id}
}

// Post delivers an event to all current handlers.
func (b *Bus) Post(ev KeyEvent) {
	b.lock.Lock()
	handlers := make([]func(KeyEvent), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.lock.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// Close implements io.Closer. Idempotent.
func (s *Subscription) Close() error {
	if s.bus == nil {
		return nil
	}
	s.bus.lock.Lock()
	delete(s.bus.handlers, s.id)
	s.bus.lock.Unlock()
	s.bus = nil
	return nil
}
