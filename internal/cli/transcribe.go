package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmueller/autocensor/internal/download"
	"github.com/fmueller/autocensor/internal/transcript"
	"github.com/fmueller/autocensor/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTranscribeCmd(app *appState) *cobra.Command {
	var wordsJSONPath string
	var textPath string

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file with word-level timestamps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcribeFn := app.transcribeFn
			if transcribeFn == nil {
				transcribeFn = app.transcribeAudio
			}

			tr, err := transcribeFn(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tr.Text)
			if len(tr.Words) == 0 {
				app.log().Warn("no words detected in audio")
			}

			if textPath != "" {
				if err := tr.WriteTextFile(textPath); err != nil {
					return err
				}
			}
			if wordsJSONPath != "" {
				if err := transcript.WriteWordsJSON(wordsJSONPath, tr.Words); err != nil {
					return err
				}
			}
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	bindSilenceFlags(cmd, app)
	cmd.Flags().StringVar(&wordsJSONPath, "words-json", "", "Write word timestamps as JSON to this path")
	cmd.Flags().StringVar(&textPath, "text-out", "", "Write the transcript text file to this path")
	return cmd
}

func (a *appState) transcribeAudio(ctx context.Context, audioPath string) (transcript.Transcript, error) {
	audioPath = filepath.Clean(audioPath)
	if _, err := os.Stat(audioPath); err != nil {
		return transcript.Transcript{}, fmt.Errorf("audio file not found: %w", err)
	}

	if a.vocalsSilent(audioPath) {
		return transcript.Transcript{}, nil
	}

	model, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return transcript.Transcript{}, err
	}

	engine, err := whisper.NewBundledEngine(a.log())
	if err != nil {
		return transcript.Transcript{}, err
	}

	a.log().Info("transcribing...", zap.String("audio", audioPath), zap.String("model", model.Path), zap.String("language", a.language))
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()

	tr, err := engine.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: audioPath,
		ModelPath: model.Path,
		Language:  a.language,
	})
	stopSpinner()
	if err != nil {
		a.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return transcript.Transcript{}, err
	}
	a.log().Info("transcription finished", zap.Duration("elapsed", time.Since(started)), zap.Int("words", len(tr.Words)))

	return tr, nil
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(a.model, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.autoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `autocensor setup --model %s` or use --auto-download=true", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := download.DownloadFile(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		ChecksumURL:    resolved.SHA256URL,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}
