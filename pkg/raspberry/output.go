package raspberry

import (
	"fmt"
	"sync"

	"github.com/warthog618/gpio"
)

// The output line is toggled through the memory mapped gpio registers.
// Writing a level takes a few nanoseconds, the character device needs a syscall per level.

var (
	// pins holds the output pins in use, the gpio memory is mapped once for all of them.
	pins   = map[int]*OutputPin{}
	pinsMu sync.Mutex
)

// OutputPin is a gpio pin driven high or low.
type OutputPin struct {
	*gpio.Pin
}

// NewOutput maps the gpio memory and configures pin as an output driven low.
// The pin number provided is the BCM GPIO number.
func NewOutput(pin int) (*OutputPin, error) {
	pinsMu.Lock()
	defer pinsMu.Unlock()

	if _, ok := pins[pin]; ok {
		return nil, fmt.Errorf("pin %v already used", pin)
	}

	if len(pins) == 0 {
		if err := gpio.Open(); err != nil {
			return nil, err
		}
	}

	p := &OutputPin{Pin: gpio.NewPin(pin)}
	p.Output()
	p.Low()
	pins[pin] = p
	return p, nil
}

// Close drives the pin low and unmaps the gpio memory after the last pin is closed.
func (p *OutputPin) Close() error {
	pinsMu.Lock()
	defer pinsMu.Unlock()

	if _, ok := pins[p.Pin.Pin()]; !ok {
		return nil
	}

	p.Low()
	p.Input()
	delete(pins, p.Pin.Pin())

	if len(pins) == 0 {
		return gpio.Close()
	}
	return nil
}
