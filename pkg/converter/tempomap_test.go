package converter

import (
	"errors"
	"testing"
)

func TestBuildTempoMapValidation(t *testing.T) {
	tests := []struct {
		name         string
		events       []TempoEvent
		ticksPerBeat uint16
		wantErr      bool
	}{
		{"valid single event", []TempoEvent{{Tick: 0, MicrosPerBeat: 500000}}, 480, false},
		{"no events", nil, 480, false},
		{"zero resolution", []TempoEvent{{Tick: 0, MicrosPerBeat: 500000}}, 0, true},
		{"zero tempo", []TempoEvent{{Tick: 0, MicrosPerBeat: 0}}, 480, true},
		{"negative tick", []TempoEvent{{Tick: -1, MicrosPerBeat: 500000}}, 480, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTempoMap(tt.events, tt.ticksPerBeat)
			if (err != nil) != tt.wantErr {
				t.Errorf("BuildTempoMap() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedTempo) {
				t.Errorf("error %v is not ErrMalformedTempo", err)
			}
		})
	}
}

func TestBuildTempoMapSynthesizesTickZero(t *testing.T) {
	tm, err := BuildTempoMap([]TempoEvent{{Tick: 960, MicrosPerBeat: 250000}}, 480)
	if err != nil {
		t.Fatalf("BuildTempoMap() error = %v", err)
	}

	events := tm.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Tick != 0 || events[0].MicrosPerBeat != DefaultTempo {
		t.Errorf("first event = %+v, want default tempo at tick 0", events[0])
	}
	if tm.HasExplicitTempo() {
		t.Error("HasExplicitTempo() should be false when tick 0 is synthesized")
	}
}

func TestBuildTempoMapLastWriteWinsAtSharedTick(t *testing.T) {
	tm, err := BuildTempoMap([]TempoEvent{
		{Tick: 0, MicrosPerBeat: 600000},
		{Tick: 0, MicrosPerBeat: 500000},
	}, 480)
	if err != nil {
		t.Fatalf("BuildTempoMap() error = %v", err)
	}

	events := tm.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].MicrosPerBeat != 500000 {
		t.Errorf("tick 0 tempo = %d, want the later event (500000)", events[0].MicrosPerBeat)
	}
	if !tm.HasExplicitTempo() {
		t.Error("HasExplicitTempo() should be true")
	}
}

func TestBuildTempoMapSortsUnorderedInput(t *testing.T) {
	tm, err := BuildTempoMap([]TempoEvent{
		{Tick: 960, MicrosPerBeat: 250000},
		{Tick: 0, MicrosPerBeat: 500000},
		{Tick: 480, MicrosPerBeat: 400000},
	}, 480)
	if err != nil {
		t.Fatalf("BuildTempoMap() error = %v", err)
	}

	events := tm.Events()
	for i := 1; i < len(events); i++ {
		if events[i].Tick <= events[i-1].Tick {
			t.Errorf("events not strictly ordered: %+v", events)
		}
	}
}

func TestTicksToBeatsTempoChange(t *testing.T) {
	// 120 BPM up to tick 960, then 240 BPM
	tm, err := BuildTempoMap([]TempoEvent{
		{Tick: 0, MicrosPerBeat: 500000},
		{Tick: 960, MicrosPerBeat: 250000},
	}, 480)
	if err != nil {
		t.Fatalf("BuildTempoMap() error = %v", err)
	}

	tests := []struct {
		tick int64
		want float64
	}{
		{0, 0.0},
		{480, 1.0},
		{960, 2.0},
		{1200, 3.0}, // 240 ticks at double speed = one more beat
		{1440, 4.0},
	}

	for _, tt := range tests {
		got := tm.TicksToBeats(tt.tick)
		if got != tt.want {
			t.Errorf("TicksToBeats(%d) = %v, want %v", tt.tick, got, tt.want)
		}
	}
}

func TestTicksToBeatsMonotonic(t *testing.T) {
	tm, err := BuildTempoMap([]TempoEvent{
		{Tick: 0, MicrosPerBeat: 500000},
		{Tick: 100, MicrosPerBeat: 350000},
		{Tick: 250, MicrosPerBeat: 750000},
		{Tick: 700, MicrosPerBeat: 120000},
		{Tick: 5000, MicrosPerBeat: 500000},
	}, 192)
	if err != nil {
		t.Fatalf("BuildTempoMap() error = %v", err)
	}

	prev := tm.TicksToBeats(0)
	for tick := int64(1); tick < 6000; tick += 7 {
		cur := tm.TicksToBeats(tick)
		if cur <= prev {
			t.Fatalf("TicksToBeats(%d) = %v, not greater than previous %v", tick, cur, prev)
		}
		prev = cur
	}
}

func TestDominantBPM(t *testing.T) {
	tests := []struct {
		name   string
		events []TempoEvent
		want   float64
	}{
		{"explicit 120", []TempoEvent{{Tick: 0, MicrosPerBeat: 500000}}, 120},
		{"explicit 200", []TempoEvent{{Tick: 0, MicrosPerBeat: 300000}}, 200},
		{"synthesized default", nil, 120},
		{"later changes ignored", []TempoEvent{
			{Tick: 0, MicrosPerBeat: 500000},
			{Tick: 480, MicrosPerBeat: 250000},
		}, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, err := BuildTempoMap(tt.events, 480)
			if err != nil {
				t.Fatalf("BuildTempoMap() error = %v", err)
			}
			if got := tm.DominantBPM(); got != tt.want {
				t.Errorf("DominantBPM() = %v, want %v", got, tt.want)
			}
		})
	}
}
