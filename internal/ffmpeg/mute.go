// Package ffmpeg silences censor intervals in the vocal stem and remixes
// it with the instrumental.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fmueller/autocensor/internal/censor"
	"go.uber.org/zap"
)

// MuteFilter builds the ffmpeg audio filter that zeroes the volume inside
// every censor interval: one volume filter per interval, chained.
func MuteFilter(intervals []censor.Interval) string {
	parts := make([]string, len(intervals))
	for i, iv := range intervals {
		parts[i] = fmt.Sprintf("volume=enable='between(t,%s,%s)':volume=0", formatSeconds(iv.Start), formatSeconds(iv.End))
	}
	return strings.Join(parts, ",")
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MuteVocals writes a copy of the input with the given intervals silenced.
// With no intervals the audio is passed through untouched.
func MuteVocals(ctx context.Context, input, output string, intervals []censor.Interval, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var args []string
	if len(intervals) == 0 {
		args = []string{"-y", "-i", input, "-c", "copy", output}
	} else {
		args = []string{"-y", "-i", input, "-af", MuteFilter(intervals), "-c:a", "pcm_s16le", output}
	}

	logger.Debug("silencing vocals", zap.String("input", input), zap.Int("intervals", len(intervals)))
	return run(ctx, args)
}

// Remix mixes the censored vocal stem back with the instrumental.
func Remix(ctx context.Context, vocals, instrumental, output string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	args := []string{
		"-y",
		"-i", vocals,
		"-i", instrumental,
		"-filter_complex", "[0:a][1:a]amix=inputs=2:duration=longest",
		"-c:a", "pcm_s16le",
		output,
	}

	logger.Debug("remixing stems", zap.String("vocals", vocals), zap.String("instrumental", instrumental))
	return run(ctx, args)
}

// ProbeDuration asks ffprobe for the container duration in seconds.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration for %s: %w", path, err)
	}
	return duration, nil
}

func run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", append([]string{"-nostdin", "-hide_banner", "-loglevel", "error"}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			return fmt.Errorf("ffmpeg %s: %w (%s)", strings.Join(args, " "), err, errText)
		}
		return fmt.Errorf("ffmpeg %s: %w", strings.Join(args, " "), err)
	}
	return nil
}
