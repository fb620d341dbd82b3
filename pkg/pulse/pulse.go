// Package pulse drives an output line high and low for multiples of a protocol's base pulse length.
package pulse

import (
	"time"

	"rcswitch/pkg/protocol"
)

// Output is a digital line which can be driven high or low.
// *gpio.Pin of github.com/warthog618/gpio satisfies it.
type Output interface {
	High()
	Low()
}

// Delayer blocks the caller for the given duration.
type Delayer interface {
	Delay(d time.Duration)
}

// Emitter sends single pulses on an output line.
type Emitter struct {
	out   Output
	delay Delayer
}

// NewEmitter returns an Emitter for out.
// If delay is nil, a calibrated SpinDelay is used.
func NewEmitter(out Output, delay Delayer) *Emitter {
	if delay == nil {
		delay = Calibrate()
	}
	return &Emitter{out: out, delay: delay}
}

// Emit transmits a single pulse pair of protocol p.
// The line is high for pair.High pulse lengths and low for pair.Low pulse lengths.
// Inverted protocols start with the low level, followed by the high level.
// Without an output line, Emit does nothing.
func (e *Emitter) Emit(p protocol.Protocol, pair protocol.PulsePair) {
	if e == nil || e.out == nil {
		return
	}

	first, second := e.out.High, e.out.Low
	if p.Inverted {
		first, second = e.out.Low, e.out.High
	}

	first()
	e.delay.Delay(p.Duration(pair.High))
	second()
	e.delay.Delay(p.Duration(pair.Low))
}

// Idle drives the line low.
func (e *Emitter) Idle() {
	if e == nil || e.out == nil {
		return
	}
	e.out.Low()
}
