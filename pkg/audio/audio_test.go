package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTranscodeCopiesMatchingFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "song.ogg")
	dst := filepath.Join(dir, "out.ogg")
	if err := os.WriteFile(src, []byte("oggdata"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Transcode(context.Background(), src, dst, "ogg"); err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "oggdata" {
		t.Errorf("output = %q, want byte-for-byte copy", data)
	}
}

func TestTranscodeValidation(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format string
	}{
		{"empty source", "", "ogg"},
		{"bad format", "song.mp3", "flac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Transcode(context.Background(), tt.src, "out", tt.format); err == nil {
				t.Error("Transcode() should fail")
			}
		})
	}
}
