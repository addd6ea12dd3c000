package whisper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fmueller/autocensor/internal/transcript"
)

type engineOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []engineSegment `json:"transcription"`
}

type engineSegment struct {
	Offsets struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
	} `json:"offsets"`
	Text string `json:"text"`
}

// ParseEngineOutput converts whisper-cli JSON output (one word per
// segment) into a Transcript. Segment offsets are milliseconds. Empty and
// marker-only segments like [_BEG_] or [BLANK_AUDIO] carry no lyrics and
// are skipped.
func ParseEngineOutput(data []byte) (transcript.Transcript, error) {
	var out engineOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return transcript.Transcript{}, fmt.Errorf("parse whisper output: %w", err)
	}

	var words []transcript.Word
	var textParts []string
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" || isMarkerToken(text) {
			continue
		}

		words = append(words, transcript.Word{
			Text:  text,
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
		})
		textParts = append(textParts, text)
	}

	return transcript.Transcript{
		Text:     strings.Join(textParts, " "),
		Language: out.Result.Language,
		Words:    words,
	}, nil
}

func isMarkerToken(text string) bool {
	return strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]")
}
