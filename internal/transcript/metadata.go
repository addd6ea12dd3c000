package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MetadataEntry is one reference transcript from a corpus metadata file.
type MetadataEntry struct {
	FileName string
	Words    []Word
}

type rawMetadataEntry struct {
	FileName string `json:"file_name"`
	Words    []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// LoadMetadataJSONL reads a JSONL metadata file (one reference transcript
// per line) and indexes the entries by the file name's stem. Reference
// words use the "text" key on the wire; they are converted into Words here
// so the rest of the pipeline only ever sees one word shape.
func LoadMetadataJSONL(path string) (map[string]MetadataEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	entries := make(map[string]MetadataEntry)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var raw rawMetadataEntry
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("parse metadata line %d: %w", line, err)
		}

		entry := MetadataEntry{FileName: raw.FileName}
		for _, w := range raw.Words {
			entry.Words = append(entry.Words, Word{Text: w.Text, Start: w.Start, End: w.End})
		}

		stem := fileStem(raw.FileName)
		if stem == "" {
			continue
		}
		entries[stem] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	return entries, nil
}

func fileStem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
