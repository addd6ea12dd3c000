package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMetadataJSONL(t *testing.T) {
	t.Parallel()

	content := `{"file_name": "subsets/en/mp3/track_one.mp3", "words": [{"text": "hello", "start": 0.5, "end": 0.9}, {"text": "world", "start": 1.0, "end": 1.4}]}

{"file_name": "track_two.mp3", "words": []}
`
	path := filepath.Join(t.TempDir(), "metadata.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := LoadMetadataJSONL(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	one, ok := entries["track_one"]
	require.True(t, ok)
	require.Len(t, one.Words, 2)
	require.Equal(t, Word{Text: "hello", Start: 0.5, End: 0.9}, one.Words[0])

	two, ok := entries["track_two"]
	require.True(t, ok)
	require.Empty(t, two.Words)
}

func TestLoadMetadataJSONLRejectsBadLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "metadata.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n"), 0o644))

	_, err := LoadMetadataJSONL(path)
	require.Error(t, err)
	require.ErrorContains(t, err, "line 1")
}

func TestLoadMetadataJSONLMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadMetadataJSONL(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
}
