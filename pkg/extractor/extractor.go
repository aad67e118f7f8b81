// Package extractor unpacks Clone Hero song archives and parses song.ini
package extractor

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/ini.v1"

	"github.com/james-see/clonehero2beatsaber/pkg/converter"
)

// difficulty keys song.ini may carry, one per instrument
var difficultyKeys = []string{
	"diff_guitar", "diff_bass", "diff_drums", "diff_keys",
	"diff_vocals", "diff_band", "diff_ghl_guitar", "diff_ghl_bass", "diff_rhythm",
}

// audio filename preference, opus first as Clone Hero ships it
var audioExtensions = []string{".opus", ".ogg", ".wav", ".mp3"}

var coverNames = []string{"album.jpg", "album.png", "cover.jpg", "cover.png"}

// Extractor unpacks song archives into per-song temp directories
type Extractor struct {
	tempDir string
	log     *log.Logger
}

// New creates an Extractor staging archives under tempDir
func New(tempDir string, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{tempDir: tempDir, log: logger}
}

// Load implements converter.SongSource: it extracts one archive,
// locates notes.mid, the audio file and the cover, and parses song.ini.
// The returned cleanup removes the extraction directory.
func (e *Extractor) Load(ctx context.Context, archivePath string) (converter.SongMetadata, func(), error) {
	var meta converter.SongMetadata
	noop := func() {}

	if err := ctx.Err(); err != nil {
		return meta, noop, err
	}

	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	dest, err := os.MkdirTemp(e.tempDir, base+"-*")
	if err != nil {
		return meta, noop, fmt.Errorf("creating extraction dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dest) }

	if err := unzip(archivePath, dest); err != nil {
		cleanup()
		return meta, noop, fmt.Errorf("extracting %s: %w", filepath.Base(archivePath), err)
	}

	iniPath := findFile(dest, "song.ini")
	if iniPath == "" {
		cleanup()
		return meta, noop, fmt.Errorf("%s: song.ini not found", filepath.Base(archivePath))
	}
	meta, err = ParseSongINI(iniPath)
	if err != nil {
		cleanup()
		return meta, noop, err
	}

	meta.MIDIPath = findFile(dest, "notes.mid")
	meta.AudioPath = findAudio(dest)
	meta.CoverPath = findCover(dest)
	if meta.AudioPath == "" {
		e.log.Warn("no audio file found", "archive", filepath.Base(archivePath))
	}
	return meta, cleanup, nil
}

// ParseSongINI reads Clone Hero song metadata. Missing fields fall
// back to safe defaults; a file without a [song] section is tolerated
// with defaults only.
func ParseSongINI(path string) (converter.SongMetadata, error) {
	meta := converter.SongMetadata{
		Name:         "Unknown Song",
		Artist:       "Unknown Artist",
		Difficulties: make(map[string]int),
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true, Loose: false}, path)
	if err != nil {
		return meta, fmt.Errorf("parsing song.ini: %w", err)
	}

	sec := cfg.Section("song")
	if len(sec.Keys()) == 0 {
		return meta, nil
	}

	meta.Name = sec.Key("name").MustString(meta.Name)
	meta.Artist = sec.Key("artist").MustString(meta.Artist)
	meta.Album = sec.Key("album").String()
	meta.Genre = sec.Key("genre").String()
	meta.Year = sec.Key("year").String()
	meta.Charter = sec.Key("charter").String()
	if meta.Charter == "" {
		// older charts use the "frets" tag
		meta.Charter = sec.Key("frets").String()
	}
	meta.PreviewStart = sec.Key("preview_start_time").MustInt(0)
	meta.SongLength = sec.Key("song_length").MustInt(0)
	meta.BPMHint = sec.Key("bpm").MustFloat64(0)

	for _, key := range difficultyKeys {
		if !sec.HasKey(key) {
			continue
		}
		if v, err := sec.Key(key).Int(); err == nil {
			meta.Difficulties[key] = v
		}
	}
	return meta, nil
}

func unzip(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dest, filepath.Clean(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// findFile walks the extraction dir for an exact filename; archives
// sometimes nest the song folder one level down.
func findFile(root, name string) string {
	var found string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), name) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

func findAudio(root string) string {
	for _, ext := range audioExtensions {
		if p := findFile(root, "song"+ext); p != "" {
			return p
		}
	}
	// fall back to any audio file
	var found string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		for _, ext := range audioExtensions {
			if strings.EqualFold(filepath.Ext(d.Name()), ext) {
				found = path
				return fs.SkipAll
			}
		}
		return nil
	})
	return found
}

func findCover(root string) string {
	for _, name := range coverNames {
		if p := findFile(root, name); p != "" {
			return p
		}
	}
	var found string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".jpg", ".jpeg", ".png":
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}
