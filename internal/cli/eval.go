package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/fmueller/autocensor/internal/eval"
	"github.com/fmueller/autocensor/internal/report"
	"github.com/fmueller/autocensor/internal/transcript"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var audioExtensions = []string{".wav", ".mp3", ".flac", ".ogg", ".m4a"}

func newEvalCmd(app *appState) *cobra.Command {
	var metadataPath string
	var audioDir string
	var hypDir string
	var csvPath string
	var normalizedDir string
	var concurrency int
	var skipSeparation bool

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score transcription quality against reference transcripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			refs, err := transcript.LoadMetadataJSONL(metadataPath)
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				return fmt.Errorf("no reference transcripts in %s", metadataPath)
			}

			items, err := app.collectEvalItems(cmd.Context(), refs, audioDir, hypDir, skipSeparation)
			if err != nil {
				return err
			}

			rep, err := eval.Run(cmd.Context(), items, concurrency, app.log())
			if err != nil {
				return err
			}

			if normalizedDir != "" {
				if err := writeNormalizedDumps(normalizedDir, items); err != nil {
					return err
				}
			}

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("create csv %s: %w", csvPath, err)
				}
				defer f.Close()
				if err := report.WriteCSV(f, rep.Records); err != nil {
					return err
				}
				app.log().Info("per-file results written", zap.String("csv", csvPath))
			}

			report.RenderSummary(cmd.OutOrStdout(), rep.Summary())
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)
	bindLanguageAndModelDownloadFlags(cmd, app)
	cmd.Flags().StringVar(&metadataPath, "metadata", "", "JSONL metadata file with reference transcripts")
	cmd.Flags().StringVar(&audioDir, "audio-dir", "", "Directory holding the audio files named in the metadata")
	cmd.Flags().StringVar(&hypDir, "transcripts-dir", "", "Score precomputed word JSON files from this directory instead of transcribing")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write per-file results to this CSV file")
	cmd.Flags().StringVar(&normalizedDir, "normalized-dir", "", "Write one normalized transcript CSV per pair into this directory")
	cmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Number of transcript pairs scored in parallel")
	cmd.Flags().BoolVar(&skipSeparation, "skip-separation", false, "Transcribe the mixed track without separating vocals first")
	_ = cmd.MarkFlagRequired("metadata")

	return cmd
}

// collectEvalItems builds one scoring item per reference entry. With a
// transcripts directory the hypotheses are read from <stem>.words.json;
// otherwise each audio file runs through the separation and transcription
// stages, which is slow but measures the real pipeline.
func (a *appState) collectEvalItems(ctx context.Context, refs map[string]transcript.MetadataEntry, audioDir, hypDir string, skipSeparation bool) ([]eval.Item, error) {
	stems := make([]string, 0, len(refs))
	for stem := range refs {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	items := make([]eval.Item, 0, len(stems))
	for _, stem := range stems {
		entry := refs[stem]

		if hypDir != "" {
			hyp, err := readWordsJSON(filepath.Join(hypDir, stem+".words.json"))
			if err != nil {
				return nil, err
			}
			items = append(items, eval.Item{Name: stem, Ref: entry.Words, Hyp: hyp})
			continue
		}

		audioPath, err := findAudioFile(audioDir, stem)
		if err != nil {
			return nil, err
		}

		item, err := a.transcribeEvalItem(ctx, stem, entry, audioPath, skipSeparation)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (a *appState) transcribeEvalItem(ctx context.Context, stem string, entry transcript.MetadataEntry, audioPath string, skipSeparation bool) (eval.Item, error) {
	item := eval.Item{Name: stem, Ref: entry.Words}

	target := audioPath
	if !skipSeparation {
		separateFn := a.separateFn
		if separateFn == nil {
			separateFn = a.separateVocals
		}

		stemDir, err := os.MkdirTemp("", "autocensor-eval-")
		if err != nil {
			return eval.Item{}, fmt.Errorf("create separation directory: %w", err)
		}
		defer os.RemoveAll(stemDir)

		started := time.Now()
		stems, err := separateFn(ctx, audioPath, stemDir)
		if err != nil {
			return eval.Item{}, fmt.Errorf("separate %s: %w", stem, err)
		}
		item.SeparateSeconds = time.Since(started).Seconds()
		target = stems.VocalsPath

		// The stem directory is gone after this function, so transcribe
		// before returning.
	}

	transcribeFn := a.transcribeFn
	if transcribeFn == nil {
		transcribeFn = a.transcribeAudio
	}

	started := time.Now()
	tr, err := transcribeFn(ctx, target)
	if err != nil {
		return eval.Item{}, fmt.Errorf("transcribe %s: %w", stem, err)
	}
	item.TranscribeSeconds = time.Since(started).Seconds()
	item.Hyp = tr.Words

	return item, nil
}

func writeNormalizedDumps(dir string, items []eval.Item) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create normalized dump directory %s: %w", dir, err)
	}
	for _, item := range items {
		f, err := os.Create(filepath.Join(dir, item.Name+".csv"))
		if err != nil {
			return fmt.Errorf("create normalized dump for %s: %w", item.Name, err)
		}
		err = report.WriteNormalizedCSV(f, item.Ref, item.Hyp)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func findAudioFile(audioDir, stem string) (string, error) {
	for _, ext := range audioExtensions {
		path := filepath.Join(audioDir, stem+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no audio file for %s in %s", stem, audioDir)
}

func readWordsJSON(path string) ([]transcript.Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words %s: %w", path, err)
	}
	words, err := transcript.ParseWordsJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse words %s: %w", path, err)
	}
	return words, nil
}
