package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/h2non/filetype"
)

// VideoEncoder turns a still image into a short video file.
type VideoEncoder interface {
	Encode(ctx context.Context, imagePath, outPath string, seconds int) error
}

type FFmpegEncoder struct {
	binary string
}

// NewFFmpegEncoder fails when the ffmpeg binary cannot be found, in which case videos are skipped.
func NewFFmpegEncoder(binary string) (*FFmpegEncoder, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not available: %w", err)
	}
	return &FFmpegEncoder{binary: path}, nil
}

func (e *FFmpegEncoder) Encode(ctx context.Context, imagePath, outPath string, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("invalid video duration: %d", seconds)
	}

	cmd := exec.CommandContext(ctx, e.binary,
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-t", strconv.Itoa(seconds),
		"-r", "30",
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-an",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(string(out)))
	}

	return checkVideo(outPath)
}

func checkVideo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening video: %w", err)
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("error reading video: %w", err)
	}
	if !filetype.IsVideo(head[:n]) {
		return fmt.Errorf("encoder output %s is not a video", path)
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
