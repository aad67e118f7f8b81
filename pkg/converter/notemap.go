package converter

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidNoteMap reports a note map whose entries collide on a
// (lineIndex, lineLayer) cell. This is a configuration error and is
// detected once at startup, before any song is converted.
var ErrInvalidNoteMap = errors.New("invalid note map")

// Saber colors for Coord.Saber
const (
	SaberLeft  = 0 // red
	SaberRight = 1 // blue
)

// DefaultCutDirection is applied to every emitted note. 0 is "up";
// deriving cuts from chart context is a non-goal.
const DefaultCutDirection = 0

// NoteMap projects MIDI pitches onto Beat Saber placements. It is data,
// not logic: the table can be extended without touching the pipeline.
// Construct with NewNoteMap so collisions are caught up front.
type NoteMap struct {
	coords map[uint8]Coord
}

// DefaultNoteTable covers Clone Hero's standard 5-fret guitar lane
// (green=60 .. orange=64) and the common GH/RB drum pitches. Guitar
// sits on the middle layer, green/red on the left saber and
// yellow/blue/orange on the right; drums fill the bottom and top rows.
func DefaultNoteTable() map[uint8]Coord {
	return map[uint8]Coord{
		// 5-fret guitar/bass
		60: {LineIndex: 0, LineLayer: 1, Saber: SaberLeft},  // green
		61: {LineIndex: 1, LineLayer: 1, Saber: SaberLeft},  // red
		62: {LineIndex: 2, LineLayer: 1, Saber: SaberRight}, // yellow
		63: {LineIndex: 3, LineLayer: 1, Saber: SaberRight}, // blue
		64: {LineIndex: 2, LineLayer: 2, Saber: SaberRight}, // orange

		// drums
		36: {LineIndex: 0, LineLayer: 0, Saber: SaberLeft},  // kick
		38: {LineIndex: 1, LineLayer: 0, Saber: SaberLeft},  // snare
		40: {LineIndex: 1, LineLayer: 2, Saber: SaberLeft},  // rimshot
		42: {LineIndex: 2, LineLayer: 0, Saber: SaberRight}, // closed hi-hat
		46: {LineIndex: 3, LineLayer: 0, Saber: SaberRight}, // open hi-hat
		48: {LineIndex: 0, LineLayer: 2, Saber: SaberRight}, // high tom
		50: {LineIndex: 3, LineLayer: 2, Saber: SaberRight}, // crash
	}
}

// NewNoteMap validates a pitch table and wraps it in an immutable map.
// Two pitches landing on the same (lineIndex, lineLayer) cell fail with
// ErrInvalidNoteMap naming both pitches.
func NewNoteMap(table map[uint8]Coord) (*NoteMap, error) {
	type cell struct{ index, layer int }
	seen := make(map[cell]uint8, len(table))

	pitches := make([]uint8, 0, len(table))
	for p := range table {
		pitches = append(pitches, p)
	}
	sort.Slice(pitches, func(i, j int) bool { return pitches[i] < pitches[j] })

	coords := make(map[uint8]Coord, len(table))
	for _, p := range pitches {
		c := table[p]
		pos := cell{c.LineIndex, c.LineLayer}
		if prev, ok := seen[pos]; ok {
			return nil, fmt.Errorf("%w: pitches %d and %d both map to line %d layer %d",
				ErrInvalidNoteMap, prev, p, c.LineIndex, c.LineLayer)
		}
		seen[pos] = p
		coords[p] = c
	}
	return &NoteMap{coords: coords}, nil
}

// Lookup returns the placement for a pitch, or ok=false for pitches the
// table does not cover. Callers drop such notes and count them; an
// unmapped pitch never fails a conversion.
func (nm *NoteMap) Lookup(pitch uint8) (Coord, bool) {
	c, ok := nm.coords[pitch]
	return c, ok
}

// Pitches returns the mapped pitches in ascending order
func (nm *NoteMap) Pitches() []uint8 {
	out := make([]uint8, 0, len(nm.coords))
	for p := range nm.coords {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MapNotes converts extracted notes into beat-time placements. Notes
// with unmapped pitches are dropped and counted in diag. The output
// order follows the input onset order, so beat times are monotone.
func MapNotes(notes []NoteEvent, tm *TempoMap, nm *NoteMap, diag *Diagnostics) []MappedNote {
	mapped := make([]MappedNote, 0, len(notes))
	for _, n := range notes {
		coord, ok := nm.Lookup(n.Pitch)
		if !ok {
			diag.UnmappedNotes++
			continue
		}
		mapped = append(mapped, MappedNote{
			Beat:         tm.TicksToBeats(n.OnsetTick),
			LineIndex:    coord.LineIndex,
			LineLayer:    coord.LineLayer,
			Saber:        coord.Saber,
			CutDirection: DefaultCutDirection,
		})
	}
	return mapped
}
