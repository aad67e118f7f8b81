package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/james-see/clonehero2beatsaber/pkg/audio"
)

// Options configures a Converter
type Options struct {
	OutputDir       string
	DifficultyTable map[int]string // numeric song.ini rating -> label
	AudioFormat     string         // "ogg" or "wav"
	NoteTable       map[uint8]Coord
	Logger          *log.Logger
}

// Converter runs the song conversion pipeline. It is safe for
// concurrent use: all fields are read-only after construction.
type Converter struct {
	outputDir string
	diffTable map[int]string
	format    string
	noteMap   *NoteMap
	log       *log.Logger
}

// New builds a Converter, validating the note map up front so a bad
// table aborts before any song is processed.
func New(opts Options) (*Converter, error) {
	table := opts.NoteTable
	if table == nil {
		table = DefaultNoteTable()
	}
	nm, err := NewNoteMap(table)
	if err != nil {
		return nil, err
	}

	format := opts.AudioFormat
	if format == "" {
		format = "ogg"
	}
	if format != "ogg" && format != "wav" {
		return nil, fmt.Errorf("unsupported audio target format %q", format)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Converter{
		outputDir: opts.OutputDir,
		diffTable: opts.DifficultyTable,
		format:    format,
		noteMap:   nm,
		log:       logger,
	}, nil
}

// NoteMap returns the validated pitch table the converter maps with
func (c *Converter) NoteMap() *NoteMap {
	return c.noteMap
}

// DifficultyTable returns the configured rating-to-label mapping
func (c *Converter) DifficultyTable() map[int]string {
	out := make(map[int]string, len(c.diffTable))
	for k, v := range c.diffTable {
		out[k] = v
	}
	return out
}

// ConvertSong converts one extracted song into a Beat Saber map
// directory. Output is atomic by song: everything is staged in a
// temporary directory and renamed into place only once all documents,
// audio and cover art have been written.
func (c *Converter) ConvertSong(ctx context.Context, meta SongMetadata) (*Result, error) {
	if meta.MIDIPath == "" {
		return nil, fmt.Errorf("%s: no notes.mid found", meta.Name)
	}
	data, err := os.ReadFile(meta.MIDIPath)
	if err != nil {
		return nil, fmt.Errorf("%s: reading MIDI: %w", meta.Name, err)
	}

	sd, err := ParseSong(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", meta.Name, err)
	}

	tm, err := BuildTempoMap(sd.TempoEvents, sd.TicksPerBeat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", meta.Name, err)
	}

	bpm := tm.DominantBPM()
	if !tm.HasExplicitTempo() && meta.BPMHint > 0 {
		// No tempo in the MIDI at all; trust song.ini over the
		// synthesized 120 BPM default
		bpm = meta.BPMHint
	}

	var diag Diagnostics
	notes := ExtractNotes(sd.Events, sd.EndTick, &diag)
	mapped := MapNotes(notes, tm, c.noteMap, &diag)

	var labels []string
	if len(mapped) > 0 {
		labels = ResolveDifficulties(meta.Difficulties, c.diffTable)
	} else {
		diag.Warnf("%s: no mappable notes found, emitting info.dat only", meta.Name)
		c.log.Warn("no mappable notes found", "song", meta.Name)
	}

	outDir := filepath.Join(c.outputDir, fmt.Sprintf("%s - %s", meta.Artist, meta.Name))
	staging := outDir + ".staging"
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, fmt.Errorf("%s: creating staging dir: %w", meta.Name, err)
	}
	defer os.RemoveAll(staging)

	audioFilename := "song." + c.format
	if err := audio.Transcode(ctx, meta.AudioPath, filepath.Join(staging, audioFilename), c.format); err != nil {
		return nil, fmt.Errorf("%s: audio: %w", meta.Name, err)
	}

	coverFilename := "cover.jpg"
	if meta.CoverPath == "" {
		diag.Warnf("%s: no cover image found", meta.Name)
		coverFilename = ""
	} else if err := copyFile(meta.CoverPath, filepath.Join(staging, coverFilename)); err != nil {
		c.log.Warn("could not copy cover image", "song", meta.Name, "err", err)
		diag.Warnf("%s: could not copy cover image: %v", meta.Name, err)
		coverFilename = ""
	}

	noteCount := 0
	for _, label := range labels {
		beatmap := BuildBeatmap(mapped)
		noteCount = len(beatmap.Notes)
		if err := writeJSON(filepath.Join(staging, BeatmapFilename(label)), beatmap); err != nil {
			return nil, fmt.Errorf("%s: %w", meta.Name, err)
		}
	}

	info := BuildInfo(meta, labels, bpm, audioFilename, coverFilename)
	if err := writeJSON(filepath.Join(staging, "info.dat"), info); err != nil {
		return nil, fmt.Errorf("%s: %w", meta.Name, err)
	}

	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("%s: clearing output dir: %w", meta.Name, err)
	}
	if err := os.Rename(staging, outDir); err != nil {
		return nil, fmt.Errorf("%s: publishing output dir: %w", meta.Name, err)
	}

	c.log.Info("converted song",
		"song", meta.Name,
		"difficulties", len(labels),
		"notes", noteCount,
		"unmapped", diag.UnmappedNotes)

	return &Result{
		SongName:     meta.Name,
		OutputDir:    outDir,
		Difficulties: labels,
		NoteCount:    noteCount,
		Diagnostics:  diag,
	}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
