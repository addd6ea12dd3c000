// Package separate wraps the demucs source-separation tool to split a
// music file into a vocal stem and an instrumental stem.
package separate

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const DefaultModel = "htdemucs"

type Separator struct {
	Executable string
	Model      string
	Logger     *zap.Logger
}

// Result points at the two stems demucs produced.
type Result struct {
	VocalsPath       string
	InstrumentalPath string
}

func NewSeparator(model string, logger *zap.Logger) (*Separator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	exe := strings.TrimSpace(os.Getenv("AUTOCENSOR_DEMUCS_PATH"))
	if exe == "" {
		found, err := exec.LookPath("demucs")
		if err != nil {
			return nil, fmt.Errorf("demucs not found on PATH (install it with `pip install demucs` or set AUTOCENSOR_DEMUCS_PATH): %w", err)
		}
		exe = found
	}

	return &Separator{Executable: exe, Model: model, Logger: logger}, nil
}

// Separate runs demucs in two-stems mode. The vocal stem lands in
// outDir/<model>/<track>/vocals.wav and everything else in no_vocals.wav.
func (s *Separator) Separate(ctx context.Context, audioPath, outDir string) (Result, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Result{}, fmt.Errorf("audio path is required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create separation directory: %w", err)
	}

	args := SeparateArgs(s.Model, outDir, audioPath)
	cmd := exec.CommandContext(ctx, s.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr

	s.Logger.Debug("running demucs", zap.String("demucs", s.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("demucs separation failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	track := trackStem(audioPath)
	stemDir := filepath.Join(outDir, s.Model, track)
	result := Result{
		VocalsPath:       filepath.Join(stemDir, "vocals.wav"),
		InstrumentalPath: filepath.Join(stemDir, "no_vocals.wav"),
	}

	for _, path := range []string{result.VocalsPath, result.InstrumentalPath} {
		if _, err := os.Stat(path); err != nil {
			return Result{}, fmt.Errorf("demucs finished but stem is missing at %s: %w", path, err)
		}
	}

	return result, nil
}

// SeparateArgs builds the demucs invocation for two-stems separation.
func SeparateArgs(model, outDir, audioPath string) []string {
	return []string{"--two-stems", "vocals", "-n", model, "-o", outDir, audioPath}
}

func trackStem(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
