// Package converter turns Clone Hero song data into Beat Saber maps
package converter

import "fmt"

// TempoEvent is a single tempo change from the MIDI tempo track
type TempoEvent struct {
	Tick          int64  // Absolute tick position
	MicrosPerBeat uint32 // Microseconds per quarter note
}

// ChannelEvent is a raw note-on/note-off event from one MIDI track
type ChannelEvent struct {
	Tick     int64 // Absolute tick position
	Pitch    uint8 // MIDI note number (0-127)
	Velocity uint8
	NoteOn   bool // true for note-on; velocity 0 still counts as a release
	Track    int  // Source track index
}

// NoteEvent is one discrete note occurrence after on/off pairing
type NoteEvent struct {
	Pitch         uint8
	OnsetTick     int64
	DurationTicks int64
	Track         int
}

// Coord is a Beat Saber placement for a MIDI pitch
type Coord struct {
	LineIndex int // Column: 0 = leftmost, 3 = rightmost
	LineLayer int // Row: 0 = bottom, 2 = top
	Saber     int // 0 = red (left), 1 = blue (right)
}

// MappedNote is a note placed in Beat Saber's beat-time coordinate system
type MappedNote struct {
	Beat         float64 // Beat time relative to the map's declared BPM
	LineIndex    int
	LineLayer    int
	Saber        int
	CutDirection int // Fixed default; cut inference is out of scope
}

// SongMetadata holds everything parsed from song.ini plus asset paths
type SongMetadata struct {
	Name         string
	Artist       string
	Album        string
	Genre        string
	Year         string
	Charter      string
	PreviewStart int // milliseconds
	SongLength   int // milliseconds, 0 when unknown
	BPMHint      float64
	Difficulties map[string]int // e.g. {"diff_guitar": 4}

	MIDIPath  string
	AudioPath string
	CoverPath string
}

// Diagnostics counts recoverable per-event issues for one song.
// None of these abort a conversion.
type Diagnostics struct {
	DuplicateOnsets   int
	UnmatchedReleases int
	UnmappedNotes     int
	Warnings          []string
}

// Warnf records a human-readable warning
func (d *Diagnostics) Warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Result describes one finished song conversion
type Result struct {
	SongName     string
	OutputDir    string
	Difficulties []string
	NoteCount    int
	Diagnostics  Diagnostics
}
