package converter

import "sort"

// trackPitch keys the pairing state: on/off events only match within
// the same track and pitch.
type trackPitch struct {
	track int
	pitch uint8
}

// ExtractNotes pairs note-on and note-off events into discrete notes.
// Events must already carry absolute ticks; they need not be sorted.
//
// Pairing policy, per pitch per track:
//   - first unmatched onset wins; a second onset before a release is
//     discarded and counted in diag
//   - a note-on with velocity 0 is a release (running-status shorthand
//     many charting tools emit)
//   - a release with no matching onset is discarded and counted
//   - an onset still open at end of file extends to endTick
//
// The result is ordered by onset tick, then pitch.
func ExtractNotes(events []ChannelEvent, endTick int64, diag *Diagnostics) []NoteEvent {
	sorted := make([]ChannelEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})

	open := make(map[trackPitch]ChannelEvent)
	var notes []NoteEvent
	for _, ev := range sorted {
		key := trackPitch{ev.Track, ev.Pitch}
		isRelease := !ev.NoteOn || ev.Velocity == 0
		if isRelease {
			onset, ok := open[key]
			if !ok {
				diag.UnmatchedReleases++
				continue
			}
			delete(open, key)
			notes = append(notes, NoteEvent{
				Pitch:         ev.Pitch,
				OnsetTick:     onset.Tick,
				DurationTicks: ev.Tick - onset.Tick,
				Track:         ev.Track,
			})
			continue
		}
		if _, ok := open[key]; ok {
			// Overlapping same-pitch onsets are not supported
			diag.DuplicateOnsets++
			diag.Warnf("track %d: duplicate onset for pitch %d at tick %d", ev.Track, ev.Pitch, ev.Tick)
			continue
		}
		open[key] = ev
	}

	// Notes still open run to end of file
	for key, onset := range open {
		notes = append(notes, NoteEvent{
			Pitch:         key.pitch,
			OnsetTick:     onset.Tick,
			DurationTicks: endTick - onset.Tick,
			Track:         key.track,
		})
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].OnsetTick != notes[j].OnsetTick {
			return notes[i].OnsetTick < notes[j].OnsetTick
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes
}
