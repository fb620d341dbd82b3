package protocol

import (
	"errors"
	"testing"
	"time"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		id      ID
		want    uint32
		wantErr error
	}{
		{Protocol1, 350, nil},
		{Protocol3, 100, nil},
		{Protocol6, 450, nil},
		{0, 0, ErrUnknownProtocol},
		{7, 0, ErrUnknownProtocol},
		{-1, 0, ErrUnknownProtocol},
	}

	for _, tt := range tests {
		p, err := Lookup(tt.id)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Lookup(%d) error = %v, want %v", tt.id, err, tt.wantErr)
		}
		if p.PulseLength != tt.want {
			t.Errorf("Lookup(%d).PulseLength = %d, want %d", tt.id, p.PulseLength, tt.want)
		}
	}
}

func TestAtFallsBackToFirstProtocol(t *testing.T) {
	first := At(Protocol1)
	for _, id := range []ID{0, 99, -3, Count + 1} {
		if got := At(id); got != first {
			t.Errorf("At(%d) = %+v, want %+v", id, got, first)
		}
	}
}

func TestIDs(t *testing.T) {
	ids := IDs()
	if len(ids) != Count {
		t.Fatalf("len(IDs()) = %d, want %d", len(ids), Count)
	}
	for i, id := range ids {
		if id != ID(i+1) {
			t.Errorf("IDs()[%d] = %d, want %d", i, id, i+1)
		}
	}
}

func TestSyncLength(t *testing.T) {
	want := map[ID]uint32{Protocol1: 31, Protocol2: 10, Protocol3: 71, Protocol4: 6, Protocol5: 14, Protocol6: 23}
	for id, n := range want {
		if got := At(id).SyncLength(); got != n {
			t.Errorf("protocol %d SyncLength() = %d, want %d", id, got, n)
		}
	}
}

func TestOnlyHT6P20BIsInverted(t *testing.T) {
	for _, id := range IDs() {
		if got := At(id).Inverted; got != (id == Protocol6) {
			t.Errorf("protocol %d Inverted = %v", id, got)
		}
	}
}

func TestDuration(t *testing.T) {
	if got := At(Protocol1).Duration(31); got != 10850*time.Microsecond {
		t.Errorf("Duration(31) = %v, want 10.85ms", got)
	}
}
