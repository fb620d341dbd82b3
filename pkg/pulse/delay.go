package pulse

import (
	"time"

	"github.com/womat/debug"
)

// calibrationSamples are the count of clock reads to measure the clock overhead.
const calibrationSamples = 1000

// SpinDelay is a busy-wait on the monotonic clock.
// A sleep hands the thread back to the scheduler and wakes up far too late for pulses of a few hundred microseconds.
type SpinDelay struct {
	// Overhead is the time of a single clock read, it's subtracted from every delay.
	Overhead time.Duration
}

// Calibrate measures the cost of reading the monotonic clock and returns a SpinDelay compensating for it.
func Calibrate() *SpinDelay {
	start := time.Now()
	for i := 0; i < calibrationSamples; i++ {
		_ = time.Now()
	}
	overhead := time.Since(start) / calibrationSamples

	debug.DebugLog.Printf("spin delay calibrated, clock overhead: %v", overhead)
	return &SpinDelay{Overhead: overhead}
}

// Delay busy-waits for d.
func (s *SpinDelay) Delay(d time.Duration) {
	if d <= s.Overhead {
		return
	}

	deadline := time.Now().Add(d - s.Overhead)
	for time.Now().Before(deadline) {
	}
}
