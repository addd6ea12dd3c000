// Package config loads optional on-disk settings and API credentials.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunables that can be set in a TOML file. Zero values
// mean "not set"; apply Defaults() first and let the file override.
type Config struct {
	// Padding, in seconds, added before and after every muted word.
	Padding float64 `toml:"padding"`
	// WhisperModel is the whisper.cpp model name, e.g. "medium".
	WhisperModel string `toml:"whisper_model"`
	// DemucsModel is the source-separation model name, e.g. "htdemucs".
	DemucsModel string `toml:"demucs_model"`
	// ModerationModel is the chat model used to flag words.
	ModerationModel string `toml:"moderation_model"`
	// OutputDir is where censored tracks and artifacts are written.
	// Empty means the platform default data directory.
	OutputDir string `toml:"output_dir"`
	// FewShotExamples overrides the moderation prompt examples.
	FewShotExamples string `toml:"few_shot_examples"`
	// KeepStems keeps the separated vocal and instrumental tracks.
	KeepStems bool `toml:"keep_stems"`
}

const FileName = "autocensor.toml"

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Padding:     0.2,
		DemucsModel: "htdemucs",
	}
}

// Load reads the TOML file at path on top of the defaults. A missing
// file is not an error; the defaults are returned as is.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Padding < 0 {
		return cfg, fmt.Errorf("config %s: padding must not be negative", path)
	}
	return cfg, nil
}

// LoadDefault looks for the config file in the working directory.
func LoadDefault() (Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Defaults(), nil
	}
	return Load(filepath.Join(wd, FileName))
}

// APIKey returns the OpenAI API key from the environment, loading a
// .env file from the working directory first if one exists.
func APIKey() string {
	// Errors only mean there is no .env file to load.
	_ = godotenv.Load()
	return os.Getenv("OPENAI_API_KEY")
}
