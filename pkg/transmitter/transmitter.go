// Package transmitter encodes binary, tri-state and raw codes into the pulses of a protocol
// and sends them on an output line.
package transmitter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/womat/debug"
	"rcswitch/pkg/protocol"
	"rcswitch/pkg/pulse"
)

const (
	// DefaultRepeat is the default count of frame repetitions per send.
	DefaultRepeat = 10
	// MaxBits is the maximum length of a code.
	MaxBits = 64
)

var (
	// ErrInvalidSymbol is returned if a code word contains a character which isn't part of its alphabet.
	ErrInvalidSymbol = errors.New("invalid symbol in code word")
	// ErrCodeTooLong is returned if a code word exceeds MaxBits bits.
	ErrCodeTooLong = errors.New("code word too long")
)

// Transmitter sends codes with the active protocol.
type Transmitter struct {
	// mu serializes sends and configuration changes.
	mu sync.Mutex
	// emitter is nil while the transmitter is disabled.
	emitter  *pulse.Emitter
	delay    pulse.Delayer
	id       protocol.ID
	protocol protocol.Protocol
	repeat   int
}

// New returns a disabled transmitter using protocol 1 and DefaultRepeat repetitions.
// delay is the Delayer used for the pulse timing, nil uses a calibrated busy-wait.
func New(delay pulse.Delayer) *Transmitter {
	t := &Transmitter{delay: delay, repeat: DefaultRepeat}
	t.SetProtocol(int(protocol.Protocol1))
	return t
}

// SetOutput enables transmissions on out.
func (t *Transmitter) SetOutput(out pulse.Output) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if out == nil {
		t.emitter = nil
		return
	}
	t.emitter = pulse.NewEmitter(out, t.delay)
}

// Disable disables transmissions, following sends do nothing.
func (t *Transmitter) Disable() {
	t.SetOutput(nil)
}

// SetProtocol selects the protocol to send.
// Ids outside the protocol table select protocol 1.
func (t *Transmitter) SetProtocol(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.id = protocol.ID(id)
	if !t.id.Valid() {
		debug.DebugLog.Printf("unknown protocol %d, using protocol %d", id, protocol.Protocol1)
		t.id = protocol.Protocol1
	}
	t.protocol = protocol.At(t.id)
}

// SetPulseLength overrides the base pulse length (µs) of the active protocol.
// It's reset by the next SetProtocol.
func (t *Transmitter) SetPulseLength(us uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if us == 0 {
		return
	}
	t.protocol.PulseLength = us
}

// SetRepeat sets the count of frame repetitions per send, at least one frame is sent.
func (t *Transmitter) SetRepeat(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 1 {
		n = 1
	}
	t.repeat = n
}

// Enabled reports whether an output is set.
func (t *Transmitter) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.emitter != nil
}

// Protocol returns the id of the active protocol.
func (t *Transmitter) Protocol() protocol.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// Repeat returns the count of frame repetitions.
func (t *Transmitter) Repeat() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.repeat
}

// SendBits transmits the first length bits of code.
// The bits are sent from MSB to LSB, i.e. first the bit at position length-1, finally the bit at position 0,
// followed by a sync pulse. The frame is repeated as configured by SetRepeat.
// SendBits blocks until the transmission is complete.
func (t *Transmitter) SendBits(code uint64, length int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.emitter == nil {
		return
	}
	if length > MaxBits {
		length = MaxBits
	}

	debug.TraceLog.Printf("send %0*b with protocol %d, %d times", length, code, t.id, t.repeat)

	for r := 0; r < t.repeat; r++ {
		for i := length - 1; i >= 0; i-- {
			if code&(1<<uint(i)) != 0 {
				t.emitter.Emit(t.protocol, t.protocol.One)
			} else {
				t.emitter.Emit(t.protocol, t.protocol.Zero)
			}
		}
		t.emitter.Emit(t.protocol, t.protocol.Sync)
	}

	// inverted protocols end with a high level
	t.emitter.Idle()
}

// SendBinary sends a code word consisting of the characters '0' and '1'.
func (t *Transmitter) SendBinary(word string) error {
	code, length, err := EncodeBinary(word)
	if err != nil {
		return err
	}
	t.SendBits(code, length)
	return nil
}

// SendTriState sends a tri-state code word consisting of the characters '0', '1' and 'F'.
func (t *Transmitter) SendTriState(word string) error {
	code, length, err := EncodeTriState(word)
	if err != nil {
		return err
	}
	t.SendBits(code, length)
	return nil
}

// EncodeBinary converts a binary code word to its bit pattern, the first character is the MSB.
func EncodeBinary(word string) (code uint64, length int, err error) {
	if len(word) > MaxBits {
		return 0, 0, fmt.Errorf("%q: %w", word, ErrCodeTooLong)
	}

	for i := 0; i < len(word); i++ {
		code <<= 1
		switch word[i] {
		case '0':
		case '1':
			code |= 1
		default:
			return 0, 0, fmt.Errorf("%q at position %d: %w", word[i], i, ErrInvalidSymbol)
		}
	}
	return code, len(word), nil
}

// EncodeTriState converts a tri-state code word to its bit pattern.
// Each symbol is sent as two bits: '0' as 00, 'F' as 01 and '1' as 11.
func EncodeTriState(word string) (code uint64, length int, err error) {
	if 2*len(word) > MaxBits {
		return 0, 0, fmt.Errorf("%q: %w", word, ErrCodeTooLong)
	}

	for i := 0; i < len(word); i++ {
		code <<= 2
		switch word[i] {
		case '0':
		case 'F':
			code |= 1
		case '1':
			code |= 3
		default:
			return 0, 0, fmt.Errorf("%q at position %d: %w", word[i], i, ErrInvalidSymbol)
		}
	}
	return code, 2 * len(word), nil
}
