// Package raspberry connects the transmitter and receiver to the gpio ports of a raspberry pi.
package raspberry

import (
	"fmt"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"
	"rcswitch/pkg/port"
)

var ErrInvalidParam = fmt.Errorf("invalid parameters")

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested input line.
type Line struct {
	gpiodLine *gpiod.Line
}

// Open opens the GPIO character device.
func Open() (*Chip, error) {
	c, err := gpiod.NewChip("gpiochip0")
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewLine requests control of a single input line on a chip.
//   If granted, control is maintained until the Line is closed.
//   Every edge of the line is passed to handler with the kernel timestamp of the event.
//   The handler is called from a single goroutine, it must return before the next edge arrives.
//   The terminator is one of "pullup", "pulldown" or "none".
func (c *Chip) NewLine(gpio int, terminator string, handler port.Handler) (*Line, error) {
	var err error
	line := &Line{}

	eventHandler := func(evt gpiod.LineEvent) {
		switch evt.Type {
		case gpiod.LineEventRisingEdge:
			handler(port.Event{Type: port.RisingEdge, Timestamp: evt.Timestamp})
		case gpiod.LineEventFallingEdge:
			handler(port.Event{Type: port.FallingEdge, Timestamp: evt.Timestamp})
		default:
			debug.ErrorLog.Printf("invalid event type: %v", evt.Type)
		}
	}

	switch terminator {
	case "pullup":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(eventHandler),
			gpiod.WithBothEdges, gpiod.AsInput, gpiod.WithPullUp)
	case "pulldown":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(eventHandler),
			gpiod.WithBothEdges, gpiod.AsInput, gpiod.WithPullDown)
	case "none", "":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(eventHandler),
			gpiod.WithBothEdges, gpiod.AsInput)
	default:
		return nil, fmt.Errorf("terminator %q: %w", terminator, ErrInvalidParam)
	}

	if err != nil {
		return nil, err
	}
	return line, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	if c == nil || c.gpiodChip == nil {
		return nil
	}
	return c.gpiodChip.Close()
}

// Close releases all resources held by the requested line.
//
// Note that this includes waiting for any running event handler to return.
// As a consequence the Close must not be called from the context of the event
// handler - the Close should be called from a different goroutine.
func (l *Line) Close() error {
	if l == nil || l.gpiodLine == nil {
		return nil
	}
	return l.gpiodLine.Close()
}
