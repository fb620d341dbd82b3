package decoder

import (
	"sync/atomic"

	"rcswitch/pkg/protocol"
)

// Result is a successfully decoded code.
type Result struct {
	Value     uint64 `json:"value"`
	BitLength int    `json:"bitLength"`
	// Delay is the pulse length (µs) derived from the sync gap.
	Delay    uint32      `json:"delay"`
	Protocol protocol.ID `json:"protocol"`
}

// Mailbox passes the latest Result from the decoder to a consumer.
// There is one writer (the decoder) and one reader, a new Result replaces an unread one.
// A Result is always published as a whole.
type Mailbox struct {
	r atomic.Pointer[Result]
}

// Publish replaces the current Result.
func (m *Mailbox) Publish(r Result) {
	m.r.Store(&r)
}

// Available reports whether an unread Result exists.
func (m *Mailbox) Available() bool {
	return m.r.Load() != nil
}

// Load returns the unread Result without consuming it.
func (m *Mailbox) Load() (Result, bool) {
	r := m.r.Load()
	if r == nil {
		return Result{}, false
	}
	return *r, true
}

// Take returns the unread Result and marks it as read.
func (m *Mailbox) Take() (Result, bool) {
	r := m.r.Swap(nil)
	if r == nil {
		return Result{}, false
	}
	return *r, true
}

// Reset marks the current Result as read.
func (m *Mailbox) Reset() {
	m.r.Store(nil)
}
