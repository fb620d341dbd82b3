package decoder

import (
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/womat/debug"
	"rcswitch/pkg/capture"
	"rcswitch/pkg/protocol"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

// frameFor builds the frame captured for code as it is recorded between two gaps.
// jitter returns the deviation (µs) added to the i-th data duration.
func frameFor(p protocol.Protocol, code uint64, length int, jitter func(i int) int) capture.Frame {
	var f capture.Frame
	add := func(n uint32) {
		f.Timings[f.Changes] = n * p.PulseLength
		f.Changes++
	}

	if p.Inverted {
		// low part of the sync is the gap, the high part precedes the data
		add(p.Sync.High)
		add(p.Sync.Low)
	} else {
		add(p.Sync.Low)
	}

	start := f.Changes
	for i := length - 1; i >= 0; i-- {
		pair := p.Zero
		if code&(1<<uint(i)) != 0 {
			pair = p.One
		}
		add(pair.High)
		add(pair.Low)
	}

	if jitter != nil {
		for i := start; i < f.Changes; i++ {
			f.Timings[i] = uint32(int(f.Timings[i]) + jitter(i-start))
		}
	}

	if !p.Inverted {
		// high part of the sync pulse before the next gap
		add(p.Sync.High)
	}
	return f
}

func TestMatchEveryProtocol(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for _, id := range protocol.IDs() {
		p := protocol.At(id)
		for length := 3; length <= capture.MaxBits; length++ {
			code := rnd.Uint64() & (1<<uint(length) - 1)
			f := frameFor(p, code, length, nil)

			r, ok := Match(id, p, f, DefaultTolerance)
			if !ok {
				t.Fatalf("protocol %d: %d bit code %b not decoded", id, length, code)
			}
			want := Result{Value: code, BitLength: length, Delay: p.PulseLength, Protocol: id}
			if r != want {
				t.Errorf("protocol %d: got %+v, want %+v", id, r, want)
			}
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	d := New(nil, nil)

	for _, id := range protocol.IDs() {
		p := protocol.At(id)
		for length := 3; length <= capture.MaxBits; length++ {
			code := rnd.Uint64() & (1<<uint(length) - 1)
			if id == protocol.Protocol6 && code == 1<<uint(length)-1 {
				// all ones of protocol 6 has the waveform of protocol 1 zeros
				code ^= 1
			}

			r, ok := d.Decode(frameFor(p, code, length, nil))
			if !ok {
				t.Fatalf("protocol %d: %d bit code %b not decoded", id, length, code)
			}
			if r.Value != code || r.BitLength != length {
				t.Errorf("protocol %d: got %d/%d, want %d/%d", id, r.Value, r.BitLength, code, length)
			}
		}
	}
}

func TestDecodeFirstMatchingProtocol(t *testing.T) {
	// protocols which can't be confused with an earlier one
	for _, id := range []protocol.ID{protocol.Protocol1, protocol.Protocol2, protocol.Protocol4, protocol.Protocol6} {
		d := New(nil, nil)
		r, ok := d.Decode(frameFor(protocol.At(id), 0x5A5, 12, nil))
		if !ok || r.Protocol != id {
			t.Errorf("protocol %d decoded as %+v (%v)", id, r, ok)
		}
	}
}

func TestJitter(t *testing.T) {
	tests := []struct {
		name    string
		id      protocol.ID
		percent int
		want    bool
	}{
		{"protocol 1 +-50%", protocol.Protocol1, 50, true},
		{"protocol 2 +-50%", protocol.Protocol2, 50, true},
		{"protocol 6 +-50%", protocol.Protocol6, 50, true},
		{"protocol 1 +-70%", protocol.Protocol1, 70, false},
		{"protocol 2 +-65%", protocol.Protocol2, 65, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := protocol.At(tt.id)
			dev := int(p.PulseLength) * tt.percent / 100
			jitter := func(i int) int {
				if i%2 == 0 {
					return dev
				}
				return -dev
			}

			r, ok := Match(tt.id, p, frameFor(p, 0b1011001, 7, jitter), DefaultTolerance)
			if ok != tt.want {
				t.Fatalf("Match = %v, want %v", ok, tt.want)
			}
			if ok && r.Value != 0b1011001 {
				t.Errorf("Value = %b, want 1011001", r.Value)
			}
		})
	}
}

func TestTolerance(t *testing.T) {
	p := protocol.At(protocol.Protocol1)
	f := frameFor(p, 0b101, 3, func(int) int { return 100 })

	d := New(nil, nil)
	if d.Tolerance() != DefaultTolerance {
		t.Fatalf("Tolerance() = %d, want %d", d.Tolerance(), DefaultTolerance)
	}
	if _, ok := d.Decode(f); !ok {
		t.Fatal("frame with 100µs jitter rejected at 60%")
	}

	d.SetTolerance(20)
	if _, ok := d.Decode(f); ok {
		t.Error("frame with 100µs jitter accepted at 20%")
	}
}

func TestNoiseGuard(t *testing.T) {
	p := protocol.At(protocol.Protocol1)

	if _, ok := Match(protocol.Protocol1, p, frameFor(p, 0b10, 2, nil), DefaultTolerance); ok {
		t.Error("2 bit code accepted")
	}

	// three valid data pulses, but only 7 changes
	f := frameFor(p, 0b101, 3, nil)
	f.Changes = 7
	if _, ok := Match(protocol.Protocol1, p, f, DefaultTolerance); ok {
		t.Error("frame with 7 changes accepted")
	}

	f.Changes = 8
	if r, ok := Match(protocol.Protocol1, p, f, DefaultTolerance); !ok || r.BitLength != 3 {
		t.Errorf("frame with 8 changes: %+v, %v", r, ok)
	}
}

func TestMismatchPublishesNothing(t *testing.T) {
	var f capture.Frame
	f.Timings[0] = 10850
	for i := 1; i < 20; i++ {
		f.Timings[i] = uint32(123 * i)
	}
	f.Changes = 20

	d := New(nil, nil)
	if _, ok := d.Decode(f); ok {
		t.Error("noise decoded")
	}
	if d.Mailbox.Available() {
		t.Error("result published for noise")
	}
}

func TestMailbox(t *testing.T) {
	var m Mailbox
	if m.Available() {
		t.Fatal("empty mailbox available")
	}

	// a code of zero is a valid code
	m.Publish(Result{Value: 0, BitLength: 24, Protocol: protocol.Protocol1})
	if !m.Available() {
		t.Fatal("zero code not available")
	}

	m.Publish(Result{Value: 7, BitLength: 4, Protocol: protocol.Protocol1})
	if r, ok := m.Load(); !ok || r.Value != 7 {
		t.Errorf("Load() = %+v, %v", r, ok)
	}
	if r, ok := m.Take(); !ok || r.Value != 7 {
		t.Errorf("Take() = %+v, %v", r, ok)
	}
	if _, ok := m.Take(); ok {
		t.Error("Take() returned a result twice")
	}

	m.Publish(Result{Value: 1})
	m.Reset()
	if m.Available() {
		t.Error("available after Reset")
	}
}

func TestRun(t *testing.T) {
	ch := make(chan capture.Frame, 1)
	d := New(ch, nil)
	defer d.Close()

	p := protocol.At(protocol.Protocol2)
	ch <- frameFor(p, 123, 7, nil)

	deadline := time.Now().Add(5 * time.Second)
	for !d.Mailbox.Available() {
		if time.Now().After(deadline) {
			t.Fatal("no result published")
		}
		time.Sleep(time.Millisecond)
	}

	r, _ := d.Mailbox.Take()
	if r.Value != 123 || r.BitLength != 7 || r.Protocol != protocol.Protocol2 {
		t.Errorf("result = %+v", r)
	}
}

func TestCloseStopsOnClosedChannel(t *testing.T) {
	ch := make(chan capture.Frame)
	d := New(ch, nil)
	close(ch)

	select {
	case <-d.done:
	case <-time.After(5 * time.Second):
		t.Fatal("run() didn't stop")
	}
	if err := d.Close(); err != nil {
		t.Error(err)
	}
}
