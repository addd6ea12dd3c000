package align

import "math"

// Totals accumulates alignment and timing statistics over a corpus run.
// It is a plain value: Fold adds one transcript pair, Merge combines two
// partial accumulations. Both are associative and commutative, so workers
// can each fold their own Totals and the partials can be merged in any
// order without locks.
type Totals struct {
	Items int

	Matches       int
	Substitutions int
	Deletions     int
	Insertions    int

	WERSum float64
	WERMin float64
	WERMax float64

	TimingSamples  int
	StartSquareSum float64
	EndSquareSum   float64
	StartAbsSum    float64
	EndAbsSum      float64
}

// Fold adds one alignment result and its timing samples.
func (t Totals) Fold(r Result, samples []TimingSample) Totals {
	wer := r.WER()

	t.Matches += r.Matches
	t.Substitutions += r.Substitutions
	t.Deletions += r.Deletions
	t.Insertions += r.Insertions

	t.WERSum += wer
	if t.Items == 0 || wer < t.WERMin {
		t.WERMin = wer
	}
	if t.Items == 0 || wer > t.WERMax {
		t.WERMax = wer
	}
	t.Items++

	for _, s := range samples {
		t.TimingSamples++
		t.StartSquareSum += s.StartDiff * s.StartDiff
		t.EndSquareSum += s.EndDiff * s.EndDiff
		t.StartAbsSum += math.Abs(s.StartDiff)
		t.EndAbsSum += math.Abs(s.EndDiff)
	}

	return t
}

// Merge combines two partial accumulations.
func (t Totals) Merge(o Totals) Totals {
	if t.Items == 0 {
		return o
	}
	if o.Items == 0 {
		return t
	}

	out := Totals{
		Items:         t.Items + o.Items,
		Matches:       t.Matches + o.Matches,
		Substitutions: t.Substitutions + o.Substitutions,
		Deletions:     t.Deletions + o.Deletions,
		Insertions:    t.Insertions + o.Insertions,

		WERSum: t.WERSum + o.WERSum,
		WERMin: math.Min(t.WERMin, o.WERMin),
		WERMax: math.Max(t.WERMax, o.WERMax),

		TimingSamples:  t.TimingSamples + o.TimingSamples,
		StartSquareSum: t.StartSquareSum + o.StartSquareSum,
		EndSquareSum:   t.EndSquareSum + o.EndSquareSum,
		StartAbsSum:    t.StartAbsSum + o.StartAbsSum,
		EndAbsSum:      t.EndAbsSum + o.EndAbsSum,
	}
	return out
}

// Summary is the corpus-level view of a finished accumulation.
type Summary struct {
	Items int

	AvgWER float64
	MinWER float64
	MaxWER float64

	Matches       int
	Substitutions int
	Deletions     int
	Insertions    int

	TimingSamples int
	StartMSE      float64
	EndMSE        float64
	StartRMSE     float64
	EndRMSE       float64
	AvgStartDiff  float64
	AvgEndDiff    float64
}

// Summary finalizes the accumulation. Average WER is the mean of the
// per-item WER values, so every file counts once regardless of its length.
func (t Totals) Summary() Summary {
	s := Summary{
		Items:         t.Items,
		MinWER:        t.WERMin,
		MaxWER:        t.WERMax,
		Matches:       t.Matches,
		Substitutions: t.Substitutions,
		Deletions:     t.Deletions,
		Insertions:    t.Insertions,
		TimingSamples: t.TimingSamples,
	}

	if t.Items > 0 {
		s.AvgWER = t.WERSum / float64(t.Items)
	}
	if t.TimingSamples > 0 {
		n := float64(t.TimingSamples)
		s.StartMSE = t.StartSquareSum / n
		s.EndMSE = t.EndSquareSum / n
		s.StartRMSE = math.Sqrt(s.StartMSE)
		s.EndRMSE = math.Sqrt(s.EndMSE)
		s.AvgStartDiff = t.StartAbsSum / n
		s.AvgEndDiff = t.EndAbsSum / n
	}

	return s
}
