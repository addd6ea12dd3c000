package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fmueller/autocensor/internal/censor"
	"github.com/fmueller/autocensor/internal/config"
	"github.com/fmueller/autocensor/internal/ffmpeg"
	"github.com/fmueller/autocensor/internal/logging"
	"github.com/fmueller/autocensor/internal/moderate"
	"github.com/fmueller/autocensor/internal/platform"
	"github.com/fmueller/autocensor/internal/separate"
	"github.com/fmueller/autocensor/internal/transcript"
	"github.com/fmueller/autocensor/internal/version"
	"github.com/fmueller/autocensor/internal/whisper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool

	model        string
	modelDir     string
	language     string
	autoDownload bool

	demucsModel     string
	moderationModel string
	padding         float64
	outputDir       string
	keepStems       bool
	fewShot         string
	dryRun          bool
	silenceGate     bool
	silenceDBFS     float64

	logger *zap.Logger
	out    io.Writer

	preflightFn  func(ctx context.Context) error
	separateFn   func(ctx context.Context, audioPath, outDir string) (separate.Result, error)
	transcribeFn func(ctx context.Context, audioPath string) (transcript.Transcript, error)
	flagFn       func(ctx context.Context, words []transcript.Word) ([]transcript.Word, error)
	muteFn       func(ctx context.Context, input, output string, intervals []censor.Interval) error
	remixFn      func(ctx context.Context, vocals, instrumental, output string) error
	probeFn      func(ctx context.Context, path string) (float64, error)
}

func NewRootCmd() *cobra.Command {
	cfg, cfgErr := config.LoadDefault()

	app := &appState{
		model:           whisper.DefaultModel,
		language:        "auto",
		autoDownload:    true,
		demucsModel:     cfg.DemucsModel,
		moderationModel: moderate.DefaultModel,
		padding:         cfg.Padding,
		outputDir:       cfg.OutputDir,
		keepStems:       cfg.KeepStems,
		fewShot:         cfg.FewShotExamples,
		silenceGate:     true,
		silenceDBFS:     -65,
		out:             os.Stdout,
	}
	if cfg.WhisperModel != "" {
		app.model = cfg.WhisperModel
	}
	if cfg.ModerationModel != "" {
		app.moderationModel = cfg.ModerationModel
	}

	app.preflightFn = app.ensureCensorReady
	app.separateFn = app.separateVocals
	app.transcribeFn = app.transcribeAudio
	app.flagFn = app.flagWords
	app.muteFn = app.muteVocals
	app.remixFn = app.remixStems
	app.probeFn = ffmpeg.ProbeDuration

	cmd := &cobra.Command{
		Use:           "autocensor <audio-file>...",
		Short:         "Censor explicit words in music by muting them in the vocal stem",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.language = sanitizeLanguage(app.language)
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runCensor(cmd.Context(), args)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	bindCensorFlags(cmd, app)
	bindSilenceFlags(cmd, app)
	cmd.Flags().BoolVar(&app.dryRun, "dry-run", false, "Print the mute plan without rendering audio")

	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newEvalCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.Flags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Whisper model name or model file path")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
}

func bindLanguageAndModelDownloadFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (auto|en|de|...) for transcription")
	cmd.Flags().BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
}

func bindCensorFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.demucsModel, "demucs-model", app.demucsModel, "Demucs model for vocal separation")
	cmd.Flags().StringVar(&app.moderationModel, "moderation-model", app.moderationModel, "Chat model used to flag explicit words")
	cmd.Flags().Float64Var(&app.padding, "padding", app.padding, "Seconds of padding around each muted word")
	cmd.Flags().StringVar(&app.outputDir, "output-dir", app.outputDir, "Directory for censored tracks and artifacts")
	cmd.Flags().BoolVar(&app.keepStems, "keep-stems", app.keepStems, "Keep the separated vocal and instrumental stems")
	cmd.Flags().StringVar(&app.fewShot, "few-shot", app.fewShot, "Override the few-shot examples in the moderation prompt")
}

func bindSilenceFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.silenceGate, "silence-gate", app.silenceGate, "Detect near-silent vocal stems and skip transcription")
	cmd.Flags().Float64Var(&app.silenceDBFS, "silence-threshold-dbfs", app.silenceDBFS, "Silence gate threshold in dBFS")
}

func (a *appState) ensureCensorReady(ctx context.Context) error {
	if _, err := whisper.NewBundledEngine(a.log()); err != nil {
		return err
	}
	if _, err := a.ensureModelAvailable(ctx); err != nil {
		return err
	}
	if _, err := separate.NewSeparator(a.demucsModel, a.log()); err != nil {
		return err
	}
	if !a.dryRun {
		if _, err := a.moderationClient(); err != nil {
			return err
		}
	}
	return nil
}

func (a *appState) moderationClient() (*moderate.Client, error) {
	return moderate.NewClient(config.APIKey(), a.moderationModel, a.log())
}

func (a *appState) flagWords(ctx context.Context, words []transcript.Word) ([]transcript.Word, error) {
	client, err := a.moderationClient()
	if err != nil {
		return nil, err
	}
	return client.FlagWords(ctx, words, a.fewShotExamples())
}

func (a *appState) fewShotExamples() string {
	if a.fewShot != "" {
		return a.fewShot
	}
	return moderate.DefaultFewShotExamples
}

func (a *appState) resolvedOutputDir() (string, error) {
	dir, err := platform.ResolveOutputDir(a.outputDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.modelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}
