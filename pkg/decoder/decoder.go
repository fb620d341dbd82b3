// Package decoder matches captured frames against the protocol table
// and passes decoded codes to the consumer.
package decoder

import (
	"sync/atomic"

	"github.com/womat/debug"
	"rcswitch/pkg/capture"
	"rcswitch/pkg/protocol"
)

// DefaultTolerance is the default receive tolerance in percent of the pulse length.
const DefaultTolerance = 60

// Decoder represents the handler of the Decoder.
type Decoder struct {
	// tolerance is the receive tolerance in percent.
	tolerance atomic.Uint32
	// Mailbox holds the latest decoded code.
	Mailbox *Mailbox

	// rx is the channel to receive captured frames
	rx <-chan capture.Frame
	// quit is the channel to stop the Decoder
	quit chan struct{}
	// done signals that the handler is stopped
	done chan struct{}
}

// New initials a new Decoder publishing to m.
// If rx isn't nil, frames received on rx are decoded until Close is called.
func New(rx <-chan capture.Frame, m *Mailbox) *Decoder {
	if m == nil {
		m = &Mailbox{}
	}

	d := &Decoder{
		Mailbox: m,
		rx:      rx,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	d.tolerance.Store(DefaultTolerance)

	if rx == nil {
		close(d.done)
		return d
	}

	go d.run()
	return d
}

// SetTolerance sets the receive tolerance in percent.
func (d *Decoder) SetTolerance(pct uint32) {
	d.tolerance.Store(pct)
}

// Tolerance returns the receive tolerance in percent.
func (d *Decoder) Tolerance() uint32 {
	return d.tolerance.Load()
}

// Close stops decoding.
func (d *Decoder) Close() error {
	select {
	case <-d.quit:
	default:
		close(d.quit)
	}

	// wait until run() is terminated
	<-d.done
	return nil
}

// run receives frames and decodes them
func (d *Decoder) run() {
	defer close(d.done)

	for {
		select {
		case <-d.quit:
			return
		case f, open := <-d.rx:
			if !open {
				return
			}
			d.Decode(f)
		}
	}
}

// Decode tries all protocols in table order and publishes the first successful match.
// A frame matching no protocol is noise or an unsupported protocol, it's ignored.
func (d *Decoder) Decode(f capture.Frame) (Result, bool) {
	tolerance := d.tolerance.Load()

	for _, id := range protocol.IDs() {
		r, ok := Match(id, protocol.At(id), f, tolerance)
		if !ok {
			continue
		}

		debug.DebugLog.Printf("received %d / %dbit protocol %d (delay %dµs)", r.Value, r.BitLength, r.Protocol, r.Delay)
		d.Mailbox.Publish(r)
		return r, true
	}

	debug.TraceLog.Printf("no protocol matches frame with %d changes", f.Changes)
	return Result{}, false
}
