package raspberry

import (
	"sync"
	"time"

	"rcswitch/pkg/port"
)

// Loopback emulates a transmitter output wired to a receiver input.
// It runs on a virtual clock: Delay advances the clock instead of waiting,
// and every level change is passed to the watching handler with the virtual timestamp.
// It's used without radio hardware, e.g. by the emulate mode and in tests.
type Loopback struct {
	mu      sync.Mutex
	now     time.Duration
	level   bool
	handler port.Handler
}

// NewLoopback returns a Loopback with the line at low level.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Watch passes every following edge to handler.
// There can only be one watcher at a time, a nil handler stops watching.
func (l *Loopback) Watch(handler port.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = handler
}

// High drives the line high.
func (l *Loopback) High() {
	l.set(true)
}

// Low drives the line low.
func (l *Loopback) Low() {
	l.set(false)
}

// Delay advances the virtual clock by d.
func (l *Loopback) Delay(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now += d
}

// Now returns the virtual clock.
func (l *Loopback) Now() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

func (l *Loopback) set(level bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level == l.level {
		return
	}
	l.level = level

	if l.handler == nil {
		return
	}

	evt := port.Event{Timestamp: l.now, Type: port.FallingEdge}
	if level {
		evt.Type = port.RisingEdge
	}
	l.handler(evt)
}
