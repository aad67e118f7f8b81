package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
)

// fakeSource hands out prepared metadata and fails for archives it
// does not know
type fakeSource struct {
	songs    map[string]SongMetadata
	cleanups atomic.Int64
}

func (f *fakeSource) Load(ctx context.Context, archive string) (SongMetadata, func(), error) {
	meta, ok := f.songs[archive]
	if !ok {
		return SongMetadata{}, func() {}, errors.New("bad archive")
	}
	return meta, func() { f.cleanups.Add(1) }, nil
}

func TestBatchConvert(t *testing.T) {
	songDir := t.TempDir()
	outDir := t.TempDir()

	midiPath := filepath.Join(songDir, "notes.mid")
	if err := os.WriteFile(midiPath, testMIDI(t), 0o644); err != nil {
		t.Fatal(err)
	}
	audioPath := filepath.Join(songDir, "song.ogg")
	if err := os.WriteFile(audioPath, []byte("oggdata"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{songs: map[string]SongMetadata{}}
	var archives []string
	for i := 0; i < 5; i++ {
		archive := fmt.Sprintf("song-%d.zip", i)
		src.songs[archive] = SongMetadata{
			Name:      fmt.Sprintf("Song %d", i),
			Artist:    "Artist",
			MIDIPath:  midiPath,
			AudioPath: audioPath,
		}
		archives = append(archives, archive)
	}
	archives = append(archives, "broken.zip")

	logger := log.New(os.Stderr)
	logger.SetLevel(log.FatalLevel)

	conv, err := New(Options{OutputDir: outDir, Logger: logger})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	summary := conv.BatchConvert(context.Background(), src, archives, 3)

	if got := summary.Converted.Load(); got != 5 {
		t.Errorf("Converted = %d, want 5", got)
	}
	if got := summary.Failed.Load(); got != 1 {
		t.Errorf("Failed = %d, want 1", got)
	}
	if got := src.cleanups.Load(); got != 5 {
		t.Errorf("cleanups = %d, want 5", got)
	}
	if len(summary.Results()) != 5 {
		t.Errorf("got %d results, want 5", len(summary.Results()))
	}
	if _, ok := summary.Errors()["broken.zip"]; !ok {
		t.Error("broken.zip missing from error map")
	}
}

func TestBatchConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv, err := New(Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	src := &fakeSource{songs: map[string]SongMetadata{}}
	summary := conv.BatchConvert(ctx, src, []string{"a.zip", "b.zip"}, 2)

	// Cancelled context stops scheduling; nothing converts
	if got := summary.Converted.Load(); got != 0 {
		t.Errorf("Converted = %d, want 0", got)
	}
}
