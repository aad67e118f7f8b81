package converter

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultTempo is 120 BPM in microseconds per quarter note, the value
// standard MIDI assumes when a file carries no tempo event.
const DefaultTempo = 500000

// ErrMalformedTempo reports tempo data the whole conversion cannot
// proceed without: a non-positive resolution or tempo value.
var ErrMalformedTempo = errors.New("malformed tempo data")

// TempoMap is an immutable, tick-ordered tempo timeline for one MIDI file.
// It always contains an event at tick 0, so every tick query falls inside
// a defined segment.
type TempoMap struct {
	events       []TempoEvent
	ticksPerBeat uint16
	synthesized  bool // true when the tick-0 event is the 120 BPM default
}

// BuildTempoMap validates raw tempo events and assembles a queryable
// timeline. Events need not arrive sorted; at a shared tick the
// later-in-input event wins, matching tempo-track semantics. A default
// 120 BPM event is synthesized at tick 0 when the file has none.
func BuildTempoMap(events []TempoEvent, ticksPerBeat uint16) (*TempoMap, error) {
	if ticksPerBeat == 0 {
		return nil, fmt.Errorf("%w: ticks per beat must be positive", ErrMalformedTempo)
	}
	for _, ev := range events {
		if ev.MicrosPerBeat == 0 {
			return nil, fmt.Errorf("%w: zero tempo at tick %d", ErrMalformedTempo, ev.Tick)
		}
		if ev.Tick < 0 {
			return nil, fmt.Errorf("%w: negative tick %d", ErrMalformedTempo, ev.Tick)
		}
	}

	sorted := make([]TempoEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})

	// Collapse shared ticks, keeping the last event seen for each tick
	var merged []TempoEvent
	for _, ev := range sorted {
		if n := len(merged); n > 0 && merged[n-1].Tick == ev.Tick {
			merged[n-1] = ev
			continue
		}
		merged = append(merged, ev)
	}

	tm := &TempoMap{ticksPerBeat: ticksPerBeat}
	if len(merged) == 0 || merged[0].Tick != 0 {
		tm.events = append(tm.events, TempoEvent{Tick: 0, MicrosPerBeat: DefaultTempo})
		tm.synthesized = true
	}
	tm.events = append(tm.events, merged...)
	return tm, nil
}

// TicksPerBeat returns the file's tick resolution
func (tm *TempoMap) TicksPerBeat() uint16 {
	return tm.ticksPerBeat
}

// Events returns a copy of the tempo timeline
func (tm *TempoMap) Events() []TempoEvent {
	out := make([]TempoEvent, len(tm.events))
	copy(out, tm.events)
	return out
}

// HasExplicitTempo reports whether the source file declared any tempo
// at all, as opposed to the synthesized 120 BPM default.
func (tm *TempoMap) HasExplicitTempo() bool {
	return !tm.synthesized
}

// referenceTempo is the tempo in effect at tick 0. Beat times are
// expressed in beats of this tempo, which is also the BPM the info
// document declares, so constant-tempo songs line up exactly.
func (tm *TempoMap) referenceTempo() uint32 {
	return tm.events[0].MicrosPerBeat
}

// DominantBPM is the BPM written into the info document: the tempo of
// the segment covering the song's start.
func (tm *TempoMap) DominantBPM() float64 {
	return 60e6 / float64(tm.referenceTempo())
}

// TicksToBeats converts an absolute tick into beat time. Segments are
// walked front to back; each contributes its tick span divided by the
// resolution, scaled by the reference tempo over the segment tempo, so
// a tick in a double-speed segment advances beat time twice as fast.
// The accumulation is monotone: tempo values are validated positive.
func (tm *TempoMap) TicksToBeats(tick int64) float64 {
	ref := float64(tm.referenceTempo())
	tpb := float64(tm.ticksPerBeat)

	var beats float64
	lastTick := tm.events[0].Tick
	lastTempo := tm.events[0].MicrosPerBeat
	for _, ev := range tm.events[1:] {
		if tick < ev.Tick {
			break
		}
		beats += float64(ev.Tick-lastTick) / tpb * ref / float64(lastTempo)
		lastTick = ev.Tick
		lastTempo = ev.MicrosPerBeat
	}
	if tick > lastTick {
		beats += float64(tick-lastTick) / tpb * ref / float64(lastTempo)
	}
	return beats
}
