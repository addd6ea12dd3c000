package moderate

import (
	"fmt"
	"strings"

	"github.com/fmueller/autocensor/internal/transcript"
)

// BuildPrompt renders the censoring prompt: the timestamped transcript,
// optional few-shot examples, and the JSON response contract.
func BuildPrompt(words []transcript.Word, fewShotExamples string) string {
	var lines []string
	for _, w := range words {
		lines = append(lines, fmt.Sprintf("[%.2fs-%.2fs] %s", w.Start, w.End, w.Text))
	}
	transcriptText := strings.Join(lines, "\n")

	parts := []string{
		"You are a content moderation assistant. Your task is to identify words " +
			"that should be censored in a music transcript based on profanity, explicit content, " +
			"or inappropriate language.",
	}

	if fewShotExamples != "" {
		parts = append(parts, "\n## Few-shot Examples:\n"+fewShotExamples)
		parts = append(parts, "\n## Current Transcript:")
	} else {
		parts = append(parts, "\n## Transcript with Timestamps:")
	}

	parts = append(parts, transcriptText)

	parts = append(parts,
		"\n## Instructions:\n"+
			"Analyze the transcript and identify words that should be censored. "+
			"Return ONLY a JSON object of the form: { \"words\": [ { \"word\": string, \"start\": number, \"end\": number } ] }\n")

	return strings.Join(parts, "\n")
}

// DefaultFewShotExamples mirrors the examples shipped in the UI: one
// transcript where a word gets flagged, one where nothing does.
const DefaultFewShotExamples = `Example 1:
Input transcript:
[0.5s-0.8s] you
[1.0s-1.3s] should
[1.5s-1.8s] go
[2.0s-2.3s] and
[2.5s-2.8s] fuck
[3.0s-3.3s] yourself

Output JSON:
{
"words": [
    { "word": "fuck", "start": 2.5, "end": 2.8 }
]
}

Example 2:
Input transcript:
[0.2s-0.5s] what
[0.6s-0.9s] the
[1.0s-1.4s] frick
[1.5s-1.8s] is
[2.0s-2.3s] this

Output JSON:
{
"words": []
}`
