package cli

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/fmueller/autocensor/internal/download"
	"github.com/fmueller/autocensor/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSetupCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download the speech model and check the required tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelDir, err := app.modelStorageDir()
			if err != nil {
				return err
			}

			resolved, err := whisper.ResolveModel(app.model, modelDir)
			if err != nil {
				return err
			}
			if resolved.IsCustomPath {
				return fmt.Errorf("setup expects a named model; got custom path %s", resolved.Path)
			}

			expectedChecksum := resolved.SHA256
			if expectedChecksum == "" && resolved.SHA256URL != "" {
				checksum, err := download.ResolveExpectedChecksum(cmd.Context(), resolved.SHA256URL, filepath.Base(resolved.Path), nil)
				if err != nil {
					return fmt.Errorf("resolve checksum for model %s: %w", resolved.Name, err)
				}
				expectedChecksum = checksum
			}

			if !resolved.NeedsDownload {
				if expectedChecksum != "" {
					if err := download.VerifyFileChecksum(resolved.Path, expectedChecksum); err != nil {
						app.log().Warn("model checksum verification failed; downloading fresh copy", zap.String("model", resolved.Name), zap.Error(err))
						resolved.NeedsDownload = true
					}
				}
			}

			if resolved.NeedsDownload {
				app.log().Info("downloading model", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
				if err := download.DownloadFile(cmd.Context(), download.Options{
					URL:            resolved.URL,
					Destination:    resolved.Path,
					ExpectedSHA256: expectedChecksum,
					ChecksumURL:    resolved.SHA256URL,
					NoProgress:     app.noProgress,
					Logger:         app.log(),
				}); err != nil {
					return fmt.Errorf("download model %s: %w", resolved.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Model %s installed at %s\n", resolved.Name, resolved.Path)
			} else {
				app.log().Info("model already present", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
				fmt.Fprintf(cmd.OutOrStdout(), "Model %s already present at %s\n", resolved.Name, resolved.Path)
			}

			reportToolStatus(cmd, app)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindModelFlags(cmd, app)

	return cmd
}

// reportToolStatus prints whether the external tools the pipeline shells
// out to are reachable. Missing tools are reported, not fatal, so setup
// can still install the model on a partially provisioned machine.
func reportToolStatus(cmd *cobra.Command, app *appState) {
	out := cmd.OutOrStdout()

	if _, err := whisper.NewBundledEngine(app.log()); err != nil {
		fmt.Fprintf(out, "whisper engine: NOT FOUND (%v)\n", err)
	} else {
		fmt.Fprintln(out, "whisper engine: ok")
	}

	for _, tool := range []string{"demucs", "ffmpeg", "ffprobe"} {
		if path, err := exec.LookPath(tool); err != nil {
			fmt.Fprintf(out, "%s: NOT FOUND in PATH\n", tool)
		} else {
			fmt.Fprintf(out, "%s: %s\n", tool, path)
		}
	}
}
