package censor

import (
	"math"

	"github.com/fmueller/autocensor/internal/transcript"
)

// MatchFlagged re-anchors moderation output on the transcript. The
// moderation stage echoes words and timestamps back from its prompt, and
// both can drift (re-tokenized text, rounded timestamps). For each flagged
// word, the transcript word with the same normalized text and the closest
// start time wins, and its timestamps are the ones used for muting.
// Flagged words with no normalized-text match in the transcript are
// skipped with a diagnostic.
func MatchFlagged(flagged, words []transcript.Word) ([]transcript.Word, []Skip) {
	keys := transcript.NormalizeAll(words)

	matched := make([]transcript.Word, 0, len(flagged))
	var skips []Skip
	for _, fw := range flagged {
		key := transcript.Normalize(fw.Text)
		if key == "" {
			skips = append(skips, Skip{Word: fw, Reason: "empty after normalization"})
			continue
		}

		bestIdx := -1
		bestDist := math.Inf(1)
		for i, w := range words {
			if keys[i] != key {
				continue
			}
			dist := math.Abs(w.Start - fw.Start)
			if dist < bestDist {
				bestIdx = i
				bestDist = dist
			}
		}

		if bestIdx < 0 {
			skips = append(skips, Skip{Word: fw, Reason: "no matching word in transcript"})
			continue
		}
		matched = append(matched, words[bestIdx])
	}

	return matched, skips
}
