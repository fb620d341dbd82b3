// Package capture records the durations between the edges of a receiver line
// and detects complete frames by the gaps between repeated transmissions.
package capture

import (
	"sync/atomic"
	"time"

	"github.com/womat/debug"
)

const (
	// MaxChanges is the maximum count of level changes per frame.
	// A code of up to 32 bits needs 2 changes per bit plus 2 for the sync.
	MaxChanges = 67
	// MaxBits is the longest code which fits into a frame.
	MaxBits = (MaxChanges - 3) / 2

	// DefaultSeparation is the minimum duration (µs) of a gap between two transmissions.
	DefaultSeparation = 4300
	// GapTolerance is the maximum difference (µs) between two gaps to be considered a repeated transmission.
	GapTolerance = 200

	// repeats is the count of consecutive matching gaps which completes a frame.
	repeats = 2
)

// Frame is a copy of the captured durations of a single transmission.
// Timings[0] holds the gap preceding the transmission, followed by the high/low durations (µs) of the data bits.
type Frame struct {
	Timings [MaxChanges]uint32
	// Changes is the count of recorded durations including the gap.
	Changes int
}

// Capture holds the timing buffer.
// It must be fed by a single goroutine (the edge handler of the receiver line).
type Capture struct {
	// timings[0] contains the sync gap, followed by the durations of the data bits.
	timings [MaxChanges]uint32
	// changes is the write index of timings.
	changes int
	// repeatCount is the count of consecutive gaps matching timings[0].
	repeatCount int
	// separation is the minimum duration (µs) of a gap.
	separation uint32

	lastEdge time.Duration
	started  bool

	dropped atomic.Uint64
	// c receives complete frames, it's owned by the caller.
	c chan<- Frame
}

// New returns a Capture sending complete frames to c.
// A separation of zero uses DefaultSeparation.
func New(c chan<- Frame, separation uint32) *Capture {
	if separation == 0 {
		separation = DefaultSeparation
	}
	return &Capture{c: c, separation: separation}
}

// HandleEdge records the duration since the previous edge.
func (c *Capture) HandleEdge(ts time.Duration) {
	if !c.started {
		c.started = true
		c.lastEdge = ts
	}

	d := (ts - c.lastEdge) / time.Microsecond
	c.lastEdge = ts

	switch {
	case d < 0:
		d = 0
	case d > 1<<32-1:
		d = 1<<32 - 1
	}
	c.Record(uint32(d))
}

// HandleTicks records the duration measured by timer since the previous edge.
// It's used with a free-running counter which is reset on every edge.
func (c *Capture) HandleTicks(timer *Timer, ticks uint32) {
	c.Record(timer.Elapsed(ticks))
}

// Record adds the duration (µs) of the level which has just ended.
func (c *Capture) Record(duration uint32) {
	if duration > c.separation {
		// A long stretch without level change: this could be the gap between two transmissions.
		// A sender repeats the code several times with roughly the same gap, so a gap close
		// to the one which started the recorded timings completes a frame.
		if diff(duration, c.timings[0]) < GapTolerance {
			c.repeatCount++
			if c.repeatCount == repeats {
				c.emit()
				c.repeatCount = 0
			}
		} else {
			c.repeatCount = 0
		}
		c.changes = 0
	}

	// discard frames exceeding the buffer
	if c.changes >= MaxChanges {
		c.changes = 0
		c.repeatCount = 0
	}

	c.timings[c.changes] = duration
	c.changes++
}

// Dropped returns the count of frames discarded because the consumer was busy.
func (c *Capture) Dropped() uint64 {
	return c.dropped.Load()
}

// Reset discards the recorded timings.
func (c *Capture) Reset() {
	c.timings = [MaxChanges]uint32{}
	c.changes = 0
	c.repeatCount = 0
	c.started = false
}

// emit hands a copy of the timing buffer to the consumer.
// It never blocks, the handler must return before the next edge.
func (c *Capture) emit() {
	f := Frame{Timings: c.timings, Changes: c.changes}

	select {
	case c.c <- f:
	default:
		c.dropped.Add(1)
		debug.TraceLog.Printf("decoder busy, frame with %d changes dropped", f.Changes)
	}
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
