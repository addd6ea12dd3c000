package transcript

import (
	"fmt"
	"strings"
	"unicode"
)

// Word is a single transcribed or reference word with its position in the
// audio, in seconds. Timestamps come from the transcription stage and are
// never modified once produced.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (w Word) Validate() error {
	if w.Start < 0 {
		return fmt.Errorf("word %q starts at %.3fs, before the audio", w.Text, w.Start)
	}
	if w.End < w.Start {
		return fmt.Errorf("word %q ends at %.3fs, before its start %.3fs", w.Text, w.End, w.Start)
	}
	return nil
}

// Sanitize drops words that carry impossible timestamps and reports one
// error per dropped word. A bad word never aborts the batch; callers log
// the diagnostics and keep going with the remainder.
func Sanitize(words []Word) ([]Word, []error) {
	valid := make([]Word, 0, len(words))
	var diags []error
	for _, w := range words {
		if err := w.Validate(); err != nil {
			diags = append(diags, err)
			continue
		}
		valid = append(valid, w)
	}
	return valid, diags
}

// Normalize derives the comparison key used for word equality during
// alignment: case-folded, leading and trailing punctuation stripped, and
// internal whitespace collapsed to single spaces. The original text and
// timestamps are left untouched.
func Normalize(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	for i, f := range fields {
		fields[i] = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
	}
	joined := strings.Join(fields, " ")
	return strings.TrimSpace(joined)
}

// NormalizeAll returns the comparison keys for a word sequence, index
// aligned with the input.
func NormalizeAll(words []Word) []string {
	keys := make([]string, len(words))
	for i, w := range words {
		keys[i] = Normalize(w.Text)
	}
	return keys
}
