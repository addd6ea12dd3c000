package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Transcript is the output of the transcription stage for one audio file.
type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Words    []Word `json:"words"`
}

// WriteTextFile writes the human-readable transcription artifact: detected
// language, word count, the full text, and one timestamped line per word.
func (t Transcript) WriteTextFile(path string) error {
	var b strings.Builder
	lang := t.Language
	if lang == "" {
		lang = "unknown"
	}
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Total words: %d\n\n", len(t.Words))
	b.WriteString("Full transcription:\n")
	b.WriteString(t.Text)
	b.WriteString("\n\nWord-level timestamps:\n")
	for _, w := range t.Words {
		fmt.Fprintf(&b, "[%.2fs-%.2fs] %s\n", w.Start, w.End, w.Text)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write transcription file: %w", err)
	}
	return nil
}

// WriteWordsJSON writes a word list as a JSON array, the interchange format
// shared with the moderation stage.
func WriteWordsJSON(path string, words []Word) error {
	data, err := json.MarshalIndent(words, "", "  ")
	if err != nil {
		return fmt.Errorf("encode words: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write words file: %w", err)
	}
	return nil
}

// ParseWordsJSON decodes a word list written by WriteWordsJSON.
func ParseWordsJSON(data []byte) ([]Word, error) {
	var words []Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("decode words: %w", err)
	}
	return words, nil
}
