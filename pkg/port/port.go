// Package port holds the definition of a level change on a physical port
package port

import "time"

// EventType indicates the type of change to the line level.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates a change from low to high.
	RisingEdge
	// FallingEdge indicates a change from high to low.
	FallingEdge
)

// Event is a single level change of a line.
type Event struct {
	// Timestamp indicates the time the event was detected.
	// It's monotonic, only the difference between two events is meaningful.
	Timestamp time.Duration
	// The type of level change this structure represents.
	Type EventType
}

// Handler is called for every edge of a watched line.
type Handler func(Event)

func (t EventType) String() string {
	switch t {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	default:
		return "unknown"
	}
}
