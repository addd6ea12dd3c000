package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmueller/autocensor/internal/audio"
	"github.com/fmueller/autocensor/internal/censor"
	"github.com/fmueller/autocensor/internal/ffmpeg"
	"github.com/fmueller/autocensor/internal/separate"
	"github.com/fmueller/autocensor/internal/transcript"
	"go.uber.org/zap"
)

func (a *appState) runCensor(ctx context.Context, audioPaths []string) error {
	preflightFn := a.preflightFn
	if preflightFn == nil {
		preflightFn = a.ensureCensorReady
	}
	if err := preflightFn(ctx); err != nil {
		return err
	}

	outputDir, err := a.resolvedOutputDir()
	if err != nil {
		return err
	}

	var errs []error
	for _, audioPath := range audioPaths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := a.censorTrack(ctx, audioPath, outputDir); err != nil {
			a.log().Error("censoring failed", zap.String("audio", audioPath), zap.Error(err))
			errs = append(errs, fmt.Errorf("censor %s: %w", audioPath, err))
		}
	}
	return errors.Join(errs...)
}

func (a *appState) censorTrack(ctx context.Context, audioPath, outputDir string) error {
	audioPath = filepath.Clean(audioPath)
	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("audio file not found: %w", err)
	}

	stem := trackName(audioPath)
	trackDir := filepath.Join(outputDir, stem)
	if err := os.MkdirAll(trackDir, 0o755); err != nil {
		return fmt.Errorf("create track directory %s: %w", trackDir, err)
	}

	separateFn := a.separateFn
	if separateFn == nil {
		separateFn = a.separateVocals
	}

	stems, err := separateFn(ctx, audioPath, trackDir)
	if err != nil {
		return err
	}

	intervals, err := a.planTrack(ctx, stems.VocalsPath, trackDir)
	if err != nil {
		return err
	}

	if err := writeIntervalsJSON(filepath.Join(trackDir, "intervals.json"), intervals); err != nil {
		return err
	}

	if a.dryRun {
		a.printPlan(stem, intervals)
		return nil
	}

	muteFn := a.muteFn
	if muteFn == nil {
		muteFn = a.muteVocals
	}
	remixFn := a.remixFn
	if remixFn == nil {
		remixFn = a.remixStems
	}

	mutedVocals := filepath.Join(trackDir, "vocals_muted.wav")
	if err := muteFn(ctx, stems.VocalsPath, mutedVocals, intervals); err != nil {
		return err
	}

	output := filepath.Join(outputDir, stem+"_censored.wav")
	if err := remixFn(ctx, mutedVocals, stems.InstrumentalPath, output); err != nil {
		return err
	}

	if !a.keepStems {
		for _, path := range []string{stems.VocalsPath, stems.InstrumentalPath, mutedVocals} {
			if err := os.Remove(path); err != nil {
				a.log().Warn("failed to remove stem", zap.String("path", path), zap.Error(err))
			}
		}
	}

	fmt.Fprintf(a.outWriter(), "%s -> %s (%d muted intervals, %.2fs total)\n",
		audioPath, output, len(intervals), censor.TotalDuration(intervals))
	return nil
}

// planTrack transcribes the vocal stem, asks the moderation model which
// words to censor, and turns the answer into merged mute intervals.
func (a *appState) planTrack(ctx context.Context, vocalsPath, trackDir string) ([]censor.Interval, error) {
	probeFn := a.probeFn
	if probeFn == nil {
		probeFn = ffmpeg.ProbeDuration
	}
	duration, err := probeFn(ctx, vocalsPath)
	if err != nil {
		return nil, err
	}

	if a.vocalsSilent(vocalsPath) {
		a.log().Info("vocal stem is silent; nothing to censor", zap.String("vocals", vocalsPath))
		return nil, nil
	}

	transcribeFn := a.transcribeFn
	if transcribeFn == nil {
		transcribeFn = a.transcribeAudio
	}
	tr, err := transcribeFn(ctx, vocalsPath)
	if err != nil {
		return nil, err
	}

	if err := tr.WriteTextFile(filepath.Join(trackDir, "transcript.txt")); err != nil {
		return nil, err
	}
	if err := transcript.WriteWordsJSON(filepath.Join(trackDir, "words.json"), tr.Words); err != nil {
		return nil, err
	}

	words, diags := transcript.Sanitize(tr.Words)
	for _, diag := range diags {
		a.log().Warn("dropping malformed word", zap.Error(diag))
	}
	if len(words) == 0 {
		a.log().Info("no usable words in transcript; nothing to censor", zap.String("vocals", vocalsPath))
		return nil, nil
	}

	flagFn := a.flagFn
	if flagFn == nil {
		flagFn = a.flagWords
	}
	stopSpinner := startSpinner(a.progressEnabled(), "Moderating")
	flagged, err := flagFn(ctx, words)
	stopSpinner()
	if err != nil {
		return nil, err
	}

	matched, skips := censor.MatchFlagged(flagged, words)
	for _, skip := range skips {
		a.log().Warn("flagged word not matched to transcript", zap.String("skip", skip.String()))
	}

	intervals, skips := censor.Plan(matched, a.padding, duration)
	for _, skip := range skips {
		a.log().Warn("dropping flagged word", zap.String("skip", skip.String()))
	}

	a.log().Info("mute plan ready",
		zap.Int("flagged", len(flagged)),
		zap.Int("matched", len(matched)),
		zap.Int("intervals", len(intervals)),
		zap.Float64("muted_seconds", censor.TotalDuration(intervals)),
	)
	return intervals, nil
}

func (a *appState) separateVocals(ctx context.Context, audioPath, outDir string) (separate.Result, error) {
	sep, err := separate.NewSeparator(a.demucsModel, a.log())
	if err != nil {
		return separate.Result{}, err
	}

	stopSpinner := startSpinner(a.progressEnabled(), "Separating vocals")
	started := time.Now()
	result, err := sep.Separate(ctx, audioPath, outDir)
	stopSpinner()
	if err != nil {
		return separate.Result{}, err
	}
	a.log().Info("separation finished", zap.Duration("elapsed", time.Since(started)))
	return result, nil
}

func (a *appState) muteVocals(ctx context.Context, input, output string, intervals []censor.Interval) error {
	return ffmpeg.MuteVocals(ctx, input, output, intervals, a.log())
}

func (a *appState) remixStems(ctx context.Context, vocals, instrumental, output string) error {
	return ffmpeg.Remix(ctx, vocals, instrumental, output, a.log())
}

func (a *appState) vocalsSilent(vocalsPath string) bool {
	if !a.silenceGate {
		return false
	}
	if !strings.EqualFold(filepath.Ext(vocalsPath), ".wav") {
		return false
	}

	metrics, err := audio.Analyze(vocalsPath)
	if err != nil {
		a.log().Warn("silence gate analysis failed; continuing", zap.Error(err), zap.String("audio", vocalsPath))
		return false
	}
	if !metrics.IsSilent(a.silenceDBFS) {
		return false
	}

	a.log().Info(
		"vocal stem considered silent",
		zap.String("audio", vocalsPath),
		zap.Float64("rms_dbfs", metrics.RMSdBFS),
		zap.Float64("peak_dbfs", metrics.PeakdBFS),
		zap.Float64("threshold_dbfs", a.silenceDBFS),
	)
	return true
}

func (a *appState) printPlan(stem string, intervals []censor.Interval) {
	out := a.outWriter()
	if len(intervals) == 0 {
		fmt.Fprintf(out, "%s: nothing to mute\n", stem)
		return
	}
	fmt.Fprintf(out, "%s: %d intervals, %.2fs total\n", stem, len(intervals), censor.TotalDuration(intervals))
	for _, iv := range intervals {
		fmt.Fprintf(out, "  %.2f - %.2f\n", iv.Start, iv.End)
	}
}

func writeIntervalsJSON(path string, intervals []censor.Interval) error {
	if intervals == nil {
		intervals = []censor.Interval{}
	}
	data, err := json.MarshalIndent(intervals, "", "  ")
	if err != nil {
		return fmt.Errorf("encode intervals: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write intervals %s: %w", path, err)
	}
	return nil
}

func trackName(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
