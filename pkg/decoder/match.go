package decoder

import (
	"rcswitch/pkg/capture"
	"rcswitch/pkg/protocol"
)

// minChanges is the minimum count of level changes of a code.
// No device sends shorter transmissions, so they must be noise.
const minChanges = 8

// Match decodes frame with protocol p.
// tolerance is the allowed deviation of each duration from the expected one, in percent of the pulse length.
func Match(id protocol.ID, p protocol.Protocol, f capture.Frame, tolerance uint32) (Result, bool) {
	if f.Changes > capture.MaxChanges {
		return Result{}, false
	}

	// the longer part of the sync pulse is the gap captured in Timings[0]
	delay := f.Timings[0] / p.SyncLength()
	delayTolerance := delay * tolerance / 100

	// For protocols that start low, the sync period looks like
	//                _________
	//  _____________|         |XXXXXXXXXXXX|
	//
	//  |--1st dur--|-2nd dur-|-Start data-|
	//
	// and the 3rd duration starts the data.
	//
	// For protocols that start high, the sync period looks like
	//   ______________
	//  |              |____________|XXXXXXXXXXXXX|
	//
	//  |-filtered out-|--1st dur--|--Start data--|
	//
	// and the 2nd duration starts the data.
	first := 1
	if p.Inverted {
		first = 2
	}

	matches := func(high, low uint32, pair protocol.PulsePair) bool {
		return diff(high, delay*pair.High) < delayTolerance && diff(low, delay*pair.Low) < delayTolerance
	}

	var code uint64
	for i := first; i < f.Changes-1; i += 2 {
		code <<= 1

		switch high, low := f.Timings[i], f.Timings[i+1]; {
		case matches(high, low, p.Zero):
		case matches(high, low, p.One):
			code |= 1
		default:
			return Result{}, false
		}
	}

	if f.Changes < minChanges {
		return Result{}, false
	}

	return Result{
		Value:     code,
		BitLength: (f.Changes - 1) / 2,
		Delay:     delay,
		Protocol:  id,
	}, true
}

func diff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
