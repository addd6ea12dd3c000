package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteTextFile(t *testing.T) {
	t.Parallel()

	tr := Transcript{
		Text:     "hello world",
		Language: "en",
		Words: []Word{
			{Text: "hello", Start: 0.5, End: 0.9},
			{Text: "world", Start: 1.0, End: 1.42},
		},
	}

	path := filepath.Join(t.TempDir(), "transcription.txt")
	require.NoError(t, tr.WriteTextFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	require.Contains(t, text, "Language: en")
	require.Contains(t, text, "Total words: 2")
	require.Contains(t, text, "hello world")
	require.Contains(t, text, "[0.50s-0.90s] hello")
	require.Contains(t, text, "[1.00s-1.42s] world")
}

func TestWriteTextFileUnknownLanguage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transcription.txt")
	require.NoError(t, Transcript{Text: "x"}.WriteTextFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "Language: unknown")
}

func TestWriteWordsJSONRoundTrips(t *testing.T) {
	t.Parallel()

	words := []Word{{Text: "damn", Start: 2.5, End: 2.8}}
	path := filepath.Join(t.TempDir(), "censored_words.json")
	require.NoError(t, WriteWordsJSON(path, words))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []Word
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, words, decoded)
}
