// Package audio shells out to ffmpeg for audio transcoding
package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegAvailable reports whether ffmpeg can be found in PATH.
// Conversion still works without it when the source audio is already
// in the target format.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Transcode converts src into the target format at dst. Sources
// already in the target format are copied as-is. Ogg output uses a
// 192k bitrate; wav is written uncompressed.
func Transcode(ctx context.Context, src, dst, format string) error {
	if src == "" {
		return fmt.Errorf("no audio file to convert")
	}
	if format != "ogg" && format != "wav" {
		return fmt.Errorf("unsupported audio target format %q", format)
	}

	if strings.EqualFold(filepath.Ext(src), "."+format) {
		return copyFile(src, dst)
	}

	args := []string{"-y", "-i", src}
	if format == "ogg" {
		args = append(args, "-c:a", "libvorbis", "-b:a", "192k")
	}
	args = append(args, dst)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(out))
	}
	return nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
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
