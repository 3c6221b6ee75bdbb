package imageproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"
)

// FrameExtractionConfig controls how frames are pulled out of a video
// before tiling and normalization.
type FrameExtractionConfig struct {
	// FPS is the sampling rate, frames per second of source video.
	FPS float64

	// Quality is the JPEG quality passed to ffmpeg (1-31, lower is better).
	Quality int

	// MaxFrames caps the number of extracted frames; 0 means no cap.
	MaxFrames int

	// Timeout bounds the whole extraction; 0 means no bound.
	Timeout time.Duration
}

func DefaultFrameExtractionConfig() FrameExtractionConfig {
	return FrameExtractionConfig{
		FPS:     1.0,
		Quality: 2,
		Timeout: 60 * time.Second,
	}
}

// ExtractFrames decodes a video into an ordered list of frames using the
// system ffmpeg binary. The input is raw video bytes in any container
// ffmpeg understands.
func ExtractFrames(videoData []byte, config FrameExtractionConfig) ([]image.Image, error) {
	if len(videoData) == 0 {
		return nil, fmt.Errorf("video data is empty")
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("video support unavailable: ffmpeg not found in PATH")
	}

	tempDir, err := os.MkdirTemp("", "sa2va-video-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	videoPath := filepath.Join(tempDir, "input.mp4")
	if err := os.WriteFile(videoPath, videoData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write video file: %w", err)
	}

	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%.2f", config.FPS),
		"-vsync", "0",
		"-q:v", fmt.Sprintf("%d", config.Quality),
	}
	if config.MaxFrames > 0 {
		args = append(args, "-frames:v", fmt.Sprintf("%d", config.MaxFrames))
	}
	args = append(args, filepath.Join(tempDir, "frame_%05d.jpg"))

	cmd := exec.Command("ffmpeg", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if config.Timeout > 0 {
		timer := time.AfterFunc(config.Timeout, func() {
			if cmd.Process != nil {
				cmd.Process.Kill()
			}
		})
		defer timer.Stop()
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg extraction failed: %w (stderr: %s)", err, stderr.String())
	}

	framePaths, err := filepath.Glob(filepath.Join(tempDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted frames: %w", err)
	}
	if len(framePaths) == 0 {
		return nil, fmt.Errorf("no frames extracted from video")
	}

	// Glob order is lexical already, but frame order matters enough to be explicit.
	sort.Strings(framePaths)

	frames := make([]image.Image, 0, len(framePaths))
	for _, framePath := range framePaths {
		f, err := os.Open(framePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open frame %s: %w", framePath, err)
		}

		frame, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode frame %s: %w", framePath, err)
		}

		frames = append(frames, frame)
	}

	return frames, nil
}
