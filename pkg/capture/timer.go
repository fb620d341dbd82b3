package capture

import "sync/atomic"

// Timer extends a free-running hardware counter by counting its overflows.
// Overflow is called from the overflow interrupt, Elapsed from the edge interrupt.
type Timer struct {
	// scale is the duration (µs) of a single counter tick.
	scale uint32
	// span is the duration (µs) of a full counter period.
	span      uint32
	overflows atomic.Uint32
}

// NewTimer returns a Timer for a counter of the given width, clocked by clockHz divided by prescaler.
// A 16 MHz clock with a prescaler of 256 and an 8 bit counter ticks every 16µs and overflows every 4096µs.
func NewTimer(clockHz, prescaler uint32, counterBits uint) *Timer {
	scale := uint32(uint64(prescaler) * 1e6 / uint64(clockHz))
	return &Timer{
		scale: scale,
		span:  scale << counterBits,
	}
}

// Overflow counts a single overflow of the counter.
func (t *Timer) Overflow() {
	t.overflows.Add(1)
}

// Elapsed returns the duration (µs) represented by the counter value ticks and
// the overflows since the last call. The overflows are cleared.
func (t *Timer) Elapsed(ticks uint32) uint32 {
	return ticks*t.scale + t.overflows.Swap(0)*t.span
}
