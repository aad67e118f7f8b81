package converter

import (
	"reflect"
	"testing"
)

func sampleMapped() []MappedNote {
	return []MappedNote{
		{Beat: 0, LineIndex: 0, LineLayer: 1, Saber: SaberLeft},
		{Beat: 1, LineIndex: 2, LineLayer: 1, Saber: SaberRight},
		{Beat: 2.5, LineIndex: 3, LineLayer: 1, Saber: SaberRight},
	}
}

func TestBuildBeatmapSharedAcrossDifficulties(t *testing.T) {
	mapped := sampleMapped()

	// Every difficulty gets the identical note sequence
	expert := BuildBeatmap(mapped)
	easy := BuildBeatmap(mapped)

	if !reflect.DeepEqual(expert.Notes, easy.Notes) {
		t.Errorf("difficulty beatmaps differ: %+v vs %+v", expert.Notes, easy.Notes)
	}
	if len(expert.Notes) != 3 {
		t.Errorf("got %d notes, want 3", len(expert.Notes))
	}
}

func TestBuildBeatmapSchema(t *testing.T) {
	bm := BuildBeatmap(sampleMapped())

	if bm.Version != SchemaVersion {
		t.Errorf("version = %q, want %q", bm.Version, SchemaVersion)
	}
	// Non-goal arrays must be present and empty, not nil, so they
	// serialize as [] rather than null
	if bm.Obstacles == nil || bm.Events == nil || bm.Waypoints == nil {
		t.Error("schema arrays must be non-nil")
	}
}

func TestBuildBeatmapCollapsesDuplicatePlacements(t *testing.T) {
	mapped := []MappedNote{
		{Beat: 1.0001, LineIndex: 0, LineLayer: 1, Saber: SaberLeft},
		{Beat: 1.0004, LineIndex: 0, LineLayer: 1, Saber: SaberLeft}, // same cell after rounding
		{Beat: 1.0001, LineIndex: 1, LineLayer: 1, Saber: SaberLeft}, // different cell
	}

	bm := BuildBeatmap(mapped)
	if len(bm.Notes) != 2 {
		t.Fatalf("got %d notes, want 2 after collapsing", len(bm.Notes))
	}
	if bm.Notes[0].Time != 1.0 {
		t.Errorf("beat time = %v, want 1.0 (rounded to 3 decimals)", bm.Notes[0].Time)
	}
}

func TestBuildInfo(t *testing.T) {
	meta := SongMetadata{
		Name:         "Through the Fire and Flames",
		Artist:       "DragonForce",
		Album:        "Inhuman Rampage",
		Charter:      "n/a charter",
		PreviewStart: 45000,
	}

	info := BuildInfo(meta, []string{"Hard", "Expert"}, 199.997, "song.ogg", "cover.jpg")

	if info.Version != SchemaVersion {
		t.Errorf("version = %q, want %q", info.Version, SchemaVersion)
	}
	if info.SongName != meta.Name || info.SongAuthorName != meta.Artist {
		t.Errorf("song fields not carried over: %+v", info)
	}
	if info.BeatsPerMinute != 200.0 {
		t.Errorf("bpm = %v, want 200.0 (rounded to 2 decimals)", info.BeatsPerMinute)
	}
	if info.PreviewStartTime != 45.0 {
		t.Errorf("preview start = %v, want 45.0 seconds", info.PreviewStartTime)
	}
	if info.PreviewDuration != DefaultPreviewDuration {
		t.Errorf("preview duration = %v, want %v", info.PreviewDuration, DefaultPreviewDuration)
	}

	if len(info.BeatmapSets) != 1 {
		t.Fatalf("got %d beatmap sets, want 1", len(info.BeatmapSets))
	}
	set := info.BeatmapSets[0]
	if set.CharacteristicName != "Standard" {
		t.Errorf("characteristic = %q, want Standard", set.CharacteristicName)
	}
	if len(set.DifficultyBeatmaps) != 2 {
		t.Fatalf("got %d difficulty entries, want 2", len(set.DifficultyBeatmaps))
	}
	if set.DifficultyBeatmaps[1].Difficulty != "Expert" ||
		set.DifficultyBeatmaps[1].DifficultyRank != 3 ||
		set.DifficultyBeatmaps[1].BeatmapFilename != "StandardExpert.dat" {
		t.Errorf("expert entry = %+v", set.DifficultyBeatmaps[1])
	}
}

func TestBuildInfoDefaultsCharter(t *testing.T) {
	info := BuildInfo(SongMetadata{Name: "X", Artist: "Y"}, nil, 120, "song.ogg", "")
	if info.LevelAuthorName != "Unknown Charter" {
		t.Errorf("charter = %q, want Unknown Charter", info.LevelAuthorName)
	}
	if len(info.BeatmapSets[0].DifficultyBeatmaps) != 0 {
		t.Error("no labels should produce an empty difficulty list")
	}
}
