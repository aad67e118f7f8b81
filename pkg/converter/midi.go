package converter

import (
	"bytes"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

// SongData is the raw timing and note content of one notes.mid, ready
// for the conversion pipeline.
type SongData struct {
	TicksPerBeat uint16
	TempoEvents  []TempoEvent
	Events       []ChannelEvent
	EndTick      int64 // highest absolute tick seen in any track
	TrackNames   []string
}

// ParseSong reads an SMF file and flattens it into tempo events and
// per-track channel events with absolute ticks. Tempo events are global
// regardless of which track carries them.
func ParseSong(data []byte) (sd *SongData, err error) {
	// smf can panic on truncated files
	defer func() {
		if r := recover(); r != nil {
			sd, err = nil, fmt.Errorf("failed to parse MIDI: %v", r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	sd = &SongData{TicksPerBeat: 480}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		sd.TicksPerBeat = mt.Resolution()
	}

	for trackNum, track := range s.Tracks {
		var tick int64
		trackName := fmt.Sprintf("Track %d", trackNum)
		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := ev.Message

			var name string
			if msg.GetMetaTrackName(&name) && name != "" {
				trackName = name
				continue
			}

			// Tempo meta message: FF 51 03 followed by three
			// big-endian bytes of microseconds per quarter note
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				micros := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				sd.TempoEvents = append(sd.TempoEvents, TempoEvent{
					Tick:          tick,
					MicrosPerBeat: micros,
				})
				continue
			}

			var channel, key, velocity uint8
			switch {
			case msg.GetNoteOn(&channel, &key, &velocity):
				sd.Events = append(sd.Events, ChannelEvent{
					Tick:     tick,
					Pitch:    key,
					Velocity: velocity,
					NoteOn:   true,
					Track:    trackNum,
				})
			case msg.GetNoteOff(&channel, &key, &velocity):
				sd.Events = append(sd.Events, ChannelEvent{
					Tick:   tick,
					Pitch:  key,
					NoteOn: false,
					Track:  trackNum,
				})
			}
		}
		sd.TrackNames = append(sd.TrackNames, trackName)
		if tick > sd.EndTick {
			sd.EndTick = tick
		}
	}
	return sd, nil
}
