package extractor

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleINI = `[song]
name = Test Song
artist = Test Artist
album = Test Album
year = 2023
charter = Tester
preview_start_time = 10000
song_length = 120000
diff_guitar = 4
diff_drums = 2
diff_vocals = oops
`

func writeINI(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseSongINI(t *testing.T) {
	meta, err := ParseSongINI(writeINI(t, sampleINI))
	if err != nil {
		t.Fatalf("ParseSongINI() error = %v", err)
	}

	if meta.Name != "Test Song" || meta.Artist != "Test Artist" {
		t.Errorf("name/artist = %q/%q", meta.Name, meta.Artist)
	}
	if meta.Charter != "Tester" {
		t.Errorf("charter = %q, want Tester", meta.Charter)
	}
	if meta.PreviewStart != 10000 {
		t.Errorf("preview start = %d, want 10000", meta.PreviewStart)
	}
	if len(meta.Difficulties) != 2 {
		t.Errorf("difficulties = %v, want guitar and drums only (vocals is not an int)", meta.Difficulties)
	}
	if meta.Difficulties["diff_guitar"] != 4 {
		t.Errorf("diff_guitar = %d, want 4", meta.Difficulties["diff_guitar"])
	}
}

func TestParseSongINIFretsFallback(t *testing.T) {
	meta, err := ParseSongINI(writeINI(t, "[song]\nname = X\nfrets = OldCharter\n"))
	if err != nil {
		t.Fatalf("ParseSongINI() error = %v", err)
	}
	if meta.Charter != "OldCharter" {
		t.Errorf("charter = %q, want frets fallback", meta.Charter)
	}
}

func TestParseSongINIDefaults(t *testing.T) {
	meta, err := ParseSongINI(writeINI(t, "[other]\nkey = value\n"))
	if err != nil {
		t.Fatalf("ParseSongINI() error = %v", err)
	}
	if meta.Name != "Unknown Song" || meta.Artist != "Unknown Artist" {
		t.Errorf("defaults not applied: %q / %q", meta.Name, meta.Artist)
	}
}

func buildArchive(t *testing.T, files map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_song.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, data := range files {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	archive := buildArchive(t, map[string][]byte{
		"song.ini":  []byte(sampleINI),
		"notes.mid": []byte("MThd"),
		"song.opus": []byte("audio"),
		"album.jpg": []byte("image"),
	})

	ex := New(t.TempDir(), nil)
	meta, cleanup, err := ex.Load(context.Background(), archive)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if meta.Name != "Test Song" {
		t.Errorf("name = %q, want Test Song", meta.Name)
	}
	if meta.MIDIPath == "" || meta.AudioPath == "" || meta.CoverPath == "" {
		t.Errorf("asset paths incomplete: %+v", meta)
	}
	if filepath.Base(meta.AudioPath) != "song.opus" {
		t.Errorf("audio = %q, want the opus file", meta.AudioPath)
	}

	cleanup()
	if _, err := os.Stat(meta.MIDIPath); !os.IsNotExist(err) {
		t.Error("cleanup did not remove extracted files")
	}
}

func TestLoadNestedSongFolder(t *testing.T) {
	archive := buildArchive(t, map[string][]byte{
		"My Song/song.ini":  []byte(sampleINI),
		"My Song/notes.mid": []byte("MThd"),
		"My Song/song.ogg":  []byte("audio"),
	})

	ex := New(t.TempDir(), nil)
	meta, cleanup, err := ex.Load(context.Background(), archive)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer cleanup()

	if meta.MIDIPath == "" {
		t.Error("notes.mid not found in nested folder")
	}
}

func TestLoadMissingSongINI(t *testing.T) {
	archive := buildArchive(t, map[string][]byte{
		"notes.mid": []byte("MThd"),
	})

	ex := New(t.TempDir(), nil)
	if _, _, err := ex.Load(context.Background(), archive); err == nil {
		t.Error("Load() should fail without song.ini")
	}
}

func TestLoadRejectsBadZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.zip")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	ex := New(t.TempDir(), nil)
	if _, _, err := ex.Load(context.Background(), path); err == nil {
		t.Error("Load() should fail on an invalid archive")
	}
}
