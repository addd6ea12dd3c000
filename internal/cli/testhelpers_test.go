package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fmueller/autocensor/internal/censor"
	"github.com/fmueller/autocensor/internal/separate"
	"github.com/fmueller/autocensor/internal/transcript"
	"github.com/stretchr/testify/require"
)

// newTestApp returns an appState with every external stage stubbed out so
// command flows can run without demucs, whisper, ffmpeg, or an API key.
func newTestApp(t *testing.T) (*appState, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	app := &appState{
		model:       "medium",
		language:    "auto",
		demucsModel: "htdemucs",
		padding:     0.2,
		outputDir:   t.TempDir(),
		noProgress:  true,
		out:         out,
	}

	app.preflightFn = func(context.Context) error { return nil }
	app.separateFn = func(_ context.Context, _, outDir string) (separate.Result, error) {
		vocals := filepath.Join(outDir, "vocals.wav")
		instrumental := filepath.Join(outDir, "no_vocals.wav")
		require.NoError(t, os.WriteFile(vocals, []byte("v"), 0o644))
		require.NoError(t, os.WriteFile(instrumental, []byte("i"), 0o644))
		return separate.Result{VocalsPath: vocals, InstrumentalPath: instrumental}, nil
	}
	app.transcribeFn = func(context.Context, string) (transcript.Transcript, error) {
		return transcript.Transcript{}, nil
	}
	app.flagFn = func(context.Context, []transcript.Word) ([]transcript.Word, error) {
		return nil, nil
	}
	app.muteFn = func(_ context.Context, _, output string, _ []censor.Interval) error {
		return os.WriteFile(output, []byte("m"), 0o644)
	}
	app.remixFn = func(_ context.Context, _, _, output string) error {
		return os.WriteFile(output, []byte("r"), 0o644)
	}
	app.probeFn = func(context.Context, string) (float64, error) {
		return 60, nil
	}

	return app, out
}

func writeTempAudio(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
	return path
}
