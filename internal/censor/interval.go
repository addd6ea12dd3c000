// Package censor turns flagged words into the minimal set of mute
// intervals to apply to the vocal track.
package censor

import (
	"fmt"
	"math"
	"sort"

	"github.com/fmueller/autocensor/internal/transcript"
)

// Interval is a time span, in seconds, to silence in the source audio.
// After merging, a list of intervals is sorted ascending by start and
// strictly non-overlapping.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (i Interval) Duration() float64 {
	return i.End - i.Start
}

// Skip records a flagged word that could not contribute an interval.
// Skips are diagnostics, not failures: censoring continues with the
// remaining words.
type Skip struct {
	Word   transcript.Word
	Reason string
}

func (s Skip) String() string {
	return fmt.Sprintf("%q [%.2fs-%.2fs]: %s", s.Word.Text, s.Word.Start, s.Word.End, s.Reason)
}

// BuildIntervals expands each flagged word by padding on both sides and
// clamps the result to [0, duration]. Words with impossible timestamps or
// whose interval collapses to nothing after clamping are dropped with a
// diagnostic. Negative padding is treated as zero.
func BuildIntervals(flagged []transcript.Word, padding, duration float64) ([]Interval, []Skip) {
	padding = math.Max(padding, 0)

	intervals := make([]Interval, 0, len(flagged))
	var skips []Skip
	for _, w := range flagged {
		if err := w.Validate(); err != nil {
			skips = append(skips, Skip{Word: w, Reason: err.Error()})
			continue
		}
		if w.Start >= duration {
			skips = append(skips, Skip{Word: w, Reason: fmt.Sprintf("starts after the audio ends (%.2fs)", duration)})
			continue
		}

		iv := Interval{
			Start: math.Max(0, w.Start-padding),
			End:   math.Min(duration, w.End+padding),
		}
		if iv.End <= iv.Start {
			skips = append(skips, Skip{Word: w, Reason: "interval is empty after clamping"})
			continue
		}
		intervals = append(intervals, iv)
	}

	return intervals, skips
}

// MergeIntervals collapses overlapping and touching intervals into the
// minimal covering set. The result is sorted ascending by start, and every
// interval ends strictly before the next one starts. Merging an already
// merged list returns it unchanged.
func MergeIntervals(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}

	sorted := make([]Interval, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		// Touching intervals count as one continuous silence.
		if next.Start <= current.End {
			current.End = math.Max(current.End, next.End)
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return merged
}

// Plan is the full interval pass: pad and clamp every flagged word, then
// merge the candidates into the final mute list.
func Plan(flagged []transcript.Word, padding, duration float64) ([]Interval, []Skip) {
	candidates, skips := BuildIntervals(flagged, padding, duration)
	return MergeIntervals(candidates), skips
}

// TotalDuration sums the lengths of a (merged) interval list.
func TotalDuration(intervals []Interval) float64 {
	var total float64
	for _, iv := range intervals {
		total += iv.Duration()
	}
	return total
}
