package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Executor runs ffmpeg and ffprobe commands for the assembly stages.
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
}

// New creates a new ffmpeg executor
func New(logger zerolog.Logger) (*Executor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}, nil
}

// Run executes ffmpeg with the given arguments.
func (e *Executor) Run(ctx context.Context, args ...string) error {
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)

	e.logger.Debug().Strs("args", full).Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.String(), 500))
	}
	return nil
}

// Probe returns the duration of a media file in seconds.
func (e *Executor) Probe(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration of %s: %w", path, err)
	}
	return dur, nil
}

// WriteConcatList writes an ffmpeg concat-demuxer list file next to the
// given output path and returns its location.
func WriteConcatList(dir, name string, files []string) (string, error) {
	var sb strings.Builder
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		sb.WriteString("file '" + strings.ReplaceAll(abs, "'", `'\''`) + "'\n")
	}
	listPath := filepath.Join(dir, name)
	if err := os.WriteFile(listPath, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	return listPath, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
