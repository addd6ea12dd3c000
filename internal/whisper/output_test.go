package whisper

import (
	"testing"

	"github.com/fmueller/autocensor/internal/transcript"
	"github.com/stretchr/testify/require"
)

func TestParseEngineOutput(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"result": {"language": "en"},
		"transcription": [
			{"offsets": {"from": 500, "to": 800}, "text": " you"},
			{"offsets": {"from": 1000, "to": 1300}, "text": " should"},
			{"offsets": {"from": 1400, "to": 1450}, "text": "  "},
			{"offsets": {"from": 1500, "to": 1800}, "text": " [_BEG_]"},
			{"offsets": {"from": 2500, "to": 2800}, "text": " go"}
		]
	}`)

	tr, err := ParseEngineOutput(data)
	require.NoError(t, err)
	require.Equal(t, "en", tr.Language)
	require.Equal(t, "you should go", tr.Text)
	require.Equal(t, []transcript.Word{
		{Text: "you", Start: 0.5, End: 0.8},
		{Text: "should", Start: 1.0, End: 1.3},
		{Text: "go", Start: 2.5, End: 2.8},
	}, tr.Words)
}

func TestParseEngineOutputEmptyTranscription(t *testing.T) {
	t.Parallel()

	tr, err := ParseEngineOutput([]byte(`{"result": {"language": "de"}, "transcription": []}`))
	require.NoError(t, err)
	require.Equal(t, "de", tr.Language)
	require.Empty(t, tr.Words)
	require.Empty(t, tr.Text)
}

func TestParseEngineOutputInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := ParseEngineOutput([]byte("not json"))
	require.Error(t, err)
	require.ErrorContains(t, err, "parse whisper output")
}
