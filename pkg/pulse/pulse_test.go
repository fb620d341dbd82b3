package pulse

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/womat/debug"
	"rcswitch/pkg/protocol"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

// step is a level change or a delay recorded by recorder.
type step struct {
	high  bool
	delay time.Duration
}

type recorder struct {
	steps []step
}

func (r *recorder) High()                 { r.steps = append(r.steps, step{high: true}) }
func (r *recorder) Low()                  { r.steps = append(r.steps, step{high: false}) }
func (r *recorder) Delay(d time.Duration) { r.steps = append(r.steps, step{delay: d}) }

func TestEmit(t *testing.T) {
	tests := []struct {
		name string
		id   protocol.ID
		pair func(protocol.Protocol) protocol.PulsePair
		want []step
	}{
		{
			name: "protocol 1 sync",
			id:   protocol.Protocol1,
			pair: func(p protocol.Protocol) protocol.PulsePair { return p.Sync },
			want: []step{{high: true}, {delay: 350 * time.Microsecond}, {high: false}, {delay: 10850 * time.Microsecond}},
		},
		{
			name: "protocol 2 one",
			id:   protocol.Protocol2,
			pair: func(p protocol.Protocol) protocol.PulsePair { return p.One },
			want: []step{{high: true}, {delay: 1300 * time.Microsecond}, {high: false}, {delay: 650 * time.Microsecond}},
		},
		{
			name: "inverted protocol 6 zero",
			id:   protocol.Protocol6,
			pair: func(p protocol.Protocol) protocol.PulsePair { return p.Zero },
			want: []step{{high: false}, {delay: 450 * time.Microsecond}, {high: true}, {delay: 900 * time.Microsecond}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			e := NewEmitter(r, r)
			p := protocol.At(tt.id)
			e.Emit(p, tt.pair(p))

			if !reflect.DeepEqual(r.steps, tt.want) {
				t.Errorf("steps = %+v, want %+v", r.steps, tt.want)
			}
		})
	}
}

func TestEmitWithoutOutput(t *testing.T) {
	r := &recorder{}
	e := NewEmitter(nil, r)
	e.Emit(protocol.At(protocol.Protocol1), protocol.PulsePair{High: 1, Low: 31})
	e.Idle()

	if len(r.steps) != 0 {
		t.Errorf("expected no delay without output, got %+v", r.steps)
	}
}

func TestSpinDelay(t *testing.T) {
	s := Calibrate()
	if s.Overhead < 0 {
		t.Fatalf("negative overhead %v", s.Overhead)
	}

	start := time.Now()
	s.Delay(500 * time.Microsecond)
	if elapsed := time.Since(start); elapsed < 500*time.Microsecond-s.Overhead {
		t.Errorf("Delay(500µs) returned after %v", elapsed)
	}
}
