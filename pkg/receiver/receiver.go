// Package receiver decodes the codes received on a line.
// Edges are recorded by the capture in the context of the line's event handler,
// frames are decoded in a separate goroutine and the latest code is kept for the consumer.
package receiver

import (
	"rcswitch/pkg/capture"
	"rcswitch/pkg/decoder"
	"rcswitch/pkg/port"
	"rcswitch/pkg/protocol"
)

// Config defines the receive parameters.
type Config struct {
	// Tolerance is the allowed deviation of a pulse in percent of the pulse length.
	Tolerance uint32
	// Separation is the minimum duration (µs) of a gap between two transmissions.
	Separation uint32
	// QueueSize is the count of frames waiting for the decoder.
	QueueSize int
}

// Receiver contains the handler to receive codes.
type Receiver struct {
	capture *capture.Capture
	decoder *decoder.Decoder
	mailbox *decoder.Mailbox
	frames  chan capture.Frame
}

// New starts a new receiver, zero values of c use the defaults.
func New(c Config) *Receiver {
	if c.Tolerance == 0 {
		c.Tolerance = decoder.DefaultTolerance
	}
	if c.QueueSize < 1 {
		c.QueueSize = 1
	}

	r := &Receiver{
		mailbox: &decoder.Mailbox{},
		frames:  make(chan capture.Frame, c.QueueSize),
	}
	r.capture = capture.New(r.frames, c.Separation)
	r.decoder = decoder.New(r.frames, r.mailbox)
	r.decoder.SetTolerance(c.Tolerance)
	return r
}

// HandleEdge is the event handler of the receiver line.
// It must not be called concurrently.
func (r *Receiver) HandleEdge(evt port.Event) {
	r.capture.HandleEdge(evt.Timestamp)
}

// SetTolerance sets the receive tolerance in percent.
func (r *Receiver) SetTolerance(pct uint32) {
	r.decoder.SetTolerance(pct)
}

// Available reports whether an unread code has been received.
func (r *Receiver) Available() bool {
	return r.mailbox.Available()
}

// ResetAvailable marks the received code as read.
func (r *Receiver) ResetAvailable() {
	r.mailbox.Reset()
}

// Take returns the unread code and marks it as read.
func (r *Receiver) Take() (decoder.Result, bool) {
	return r.mailbox.Take()
}

// ReceivedValue returns the last received code.
func (r *Receiver) ReceivedValue() uint64 {
	res, _ := r.mailbox.Load()
	return res.Value
}

// ReceivedBitLength returns the bit length of the last received code.
func (r *Receiver) ReceivedBitLength() int {
	res, _ := r.mailbox.Load()
	return res.BitLength
}

// ReceivedDelay returns the pulse length (µs) of the last received code.
func (r *Receiver) ReceivedDelay() uint32 {
	res, _ := r.mailbox.Load()
	return res.Delay
}

// ReceivedProtocol returns the protocol of the last received code.
func (r *Receiver) ReceivedProtocol() protocol.ID {
	res, _ := r.mailbox.Load()
	return res.Protocol
}

// Dropped returns the count of frames discarded while the decoder was busy.
func (r *Receiver) Dropped() uint64 {
	return r.capture.Dropped()
}

// Close stops decoding.
// The line must not call HandleEdge after Close.
func (r *Receiver) Close() error {
	return r.decoder.Close()
}
