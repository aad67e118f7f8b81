package converter

import (
	"fmt"
	"math"
)

// SchemaVersion is the Beat Saber map schema version both documents declare
const SchemaVersion = "2.0.0"

// DefaultEnvironment is the environment every generated map uses
const DefaultEnvironment = "DefaultEnvironment"

// DefaultPreviewDuration in seconds, used when song.ini gives no preview window
const DefaultPreviewDuration = 10.0

// BeatmapNote is one note in a difficulty .dat file
type BeatmapNote struct {
	Time         float64 `json:"_time"`
	LineIndex    int     `json:"_lineIndex"`
	LineLayer    int     `json:"_lineLayer"`
	Type         int     `json:"_type"`
	CutDirection int     `json:"_cutDirection"`
}

// BeatmapFile is the serialization shape of one Standard<Difficulty>.dat.
// Obstacles, events and the other arrays are emitted empty so the
// document stays schema-complete; generating them is a non-goal.
type BeatmapFile struct {
	Version    string         `json:"_version"`
	Notes      []BeatmapNote  `json:"_notes"`
	Obstacles  []struct{}     `json:"_obstacles"`
	Events     []struct{}     `json:"_events"`
	Waypoints  []struct{}     `json:"_waypoints"`
	CustomData map[string]any `json:"_customData"`
}

// InfoBeatmap is one difficulty entry inside the info.dat beatmap set
type InfoBeatmap struct {
	Difficulty          string         `json:"_difficulty"`
	DifficultyRank      int            `json:"_difficultyRank"`
	BeatmapFilename     string         `json:"_beatmapFilename"`
	NoteJumpSpeed       float64        `json:"_noteJumpMovementSpeed"`
	NoteJumpStartOffset float64        `json:"_noteJumpStartBeatOffset"`
	CustomData          map[string]any `json:"_customData"`
}

// InfoBeatmapSet groups difficulties under one characteristic
type InfoBeatmapSet struct {
	CharacteristicName string        `json:"_beatmapCharacteristicName"`
	DifficultyBeatmaps []InfoBeatmap `json:"_difficultyBeatmaps"`
}

// InfoFile is the serialization shape of info.dat
type InfoFile struct {
	Version            string           `json:"_version"`
	SongName           string           `json:"_songName"`
	SongSubName        string           `json:"_songSubName"`
	SongAuthorName     string           `json:"_songAuthorName"`
	LevelAuthorName    string           `json:"_levelAuthorName"`
	BeatsPerMinute     float64          `json:"_beatsPerMinute"`
	SongTimeOffset     float64          `json:"_songTimeOffset"`
	Shuffle            float64          `json:"_shuffle"`
	ShufflePeriod      float64          `json:"_shufflePeriod"`
	PreviewStartTime   float64          `json:"_previewStartTime"`
	PreviewDuration    float64          `json:"_previewDuration"`
	SongFilename       string           `json:"_songFilename"`
	CoverImageFilename string           `json:"_coverImageFilename"`
	EnvironmentName    string           `json:"_environmentName"`
	CustomData         map[string]any   `json:"_customData"`
	BeatmapSets        []InfoBeatmapSet `json:"_difficultyBeatmapSets"`
}

// BeatmapFilename names a difficulty .dat the way Beat Saber expects
func BeatmapFilename(label string) string {
	return fmt.Sprintf("Standard%s.dat", label)
}

// BuildBeatmap assembles one difficulty document from mapped notes.
// Every difficulty receives the same note sequence; per-difficulty
// thinning is a non-goal. Beat times are rounded to three decimals for
// clean JSON, and notes that land on an identical (time, line, layer)
// cell after rounding collapse to one.
func BuildBeatmap(notes []MappedNote) *BeatmapFile {
	type placement struct {
		time         float64
		index, layer int
	}
	seen := make(map[placement]bool, len(notes))

	out := make([]BeatmapNote, 0, len(notes))
	for _, n := range notes {
		t := math.Round(n.Beat*1000) / 1000
		key := placement{t, n.LineIndex, n.LineLayer}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, BeatmapNote{
			Time:         t,
			LineIndex:    n.LineIndex,
			LineLayer:    n.LineLayer,
			Type:         n.Saber,
			CutDirection: n.CutDirection,
		})
	}

	return &BeatmapFile{
		Version:    SchemaVersion,
		Notes:      out,
		Obstacles:  []struct{}{},
		Events:     []struct{}{},
		Waypoints:  []struct{}{},
		CustomData: map[string]any{},
	}
}

// BuildInfo assembles the info.dat document. The BPM comes from the
// tempo map, not song.ini: the two can disagree and the map is what
// note placement was computed against. Labels must already be
// rank-sorted (ResolveDifficulties guarantees this).
func BuildInfo(meta SongMetadata, labels []string, bpm float64, audioFilename, coverFilename string) *InfoFile {
	charter := meta.Charter
	if charter == "" {
		charter = "Unknown Charter"
	}

	beatmaps := make([]InfoBeatmap, 0, len(labels))
	for _, label := range labels {
		beatmaps = append(beatmaps, InfoBeatmap{
			Difficulty:      label,
			DifficultyRank:  DifficultyRank(label),
			BeatmapFilename: BeatmapFilename(label),
			NoteJumpSpeed:   10,
			CustomData:      map[string]any{},
		})
	}

	return &InfoFile{
		Version:            SchemaVersion,
		SongName:           meta.Name,
		SongSubName:        meta.Album,
		SongAuthorName:     meta.Artist,
		LevelAuthorName:    charter,
		BeatsPerMinute:     math.Round(bpm*100) / 100,
		ShufflePeriod:      0.5,
		PreviewStartTime:   float64(meta.PreviewStart) / 1000.0,
		PreviewDuration:    DefaultPreviewDuration,
		SongFilename:       audioFilename,
		CoverImageFilename: coverFilename,
		EnvironmentName:    DefaultEnvironment,
		CustomData:         map[string]any{},
		BeatmapSets: []InfoBeatmapSet{{
			CharacteristicName: "Standard",
			DifficultyBeatmaps: beatmaps,
		}},
	}
}
