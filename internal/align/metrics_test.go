package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func foldPair(t Totals, ref, hyp []string) Totals {
	res := Align(wordsFrom(ref...), wordsFrom(hyp...))
	return t.Fold(res, TimingSamples(res))
}

func TestTotalsFoldAccumulatesCounts(t *testing.T) {
	t.Parallel()

	var totals Totals
	totals = foldPair(totals, []string{"a", "b", "c"}, []string{"a", "x", "c"}) // WER 1/3
	totals = foldPair(totals, []string{"a", "b"}, []string{"a"})               // WER 1/2

	require.Equal(t, 2, totals.Items)
	require.Equal(t, 3, totals.Matches)
	require.Equal(t, 1, totals.Substitutions)
	require.Equal(t, 1, totals.Deletions)
	require.Zero(t, totals.Insertions)

	s := totals.Summary()
	require.InDelta(t, (1.0/3.0+0.5)/2.0, s.AvgWER, 1e-12)
	require.InDelta(t, 1.0/3.0, s.MinWER, 1e-12)
	require.InDelta(t, 0.5, s.MaxWER, 1e-12)
	require.Equal(t, 3, s.TimingSamples)
}

func TestTotalsMergeIsAssociativeAndCommutative(t *testing.T) {
	t.Parallel()

	a := foldPair(Totals{}, []string{"a", "b"}, []string{"a", "b"})
	b := foldPair(Totals{}, []string{"c", "d", "e"}, []string{"c", "x"})
	c := foldPair(Totals{}, []string{"f"}, []string{"g", "f"})

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))
	swapped := c.Merge(a).Merge(b)

	require.Equal(t, left, right)
	require.Equal(t, left, swapped)

	// Merging is equivalent to folding everything into one accumulator.
	var sequential Totals
	sequential = foldPair(sequential, []string{"a", "b"}, []string{"a", "b"})
	sequential = foldPair(sequential, []string{"c", "d", "e"}, []string{"c", "x"})
	sequential = foldPair(sequential, []string{"f"}, []string{"g", "f"})
	require.Equal(t, sequential, left)
}

func TestTotalsMergeWithEmpty(t *testing.T) {
	t.Parallel()

	a := foldPair(Totals{}, []string{"a"}, []string{"a"})
	require.Equal(t, a, a.Merge(Totals{}))
	require.Equal(t, a, Totals{}.Merge(a))
	require.Equal(t, Totals{}, Totals{}.Merge(Totals{}))
}

func TestSummaryTimingStatistics(t *testing.T) {
	t.Parallel()

	samples := []TimingSample{
		{StartDiff: 0.1, EndDiff: -0.2},
		{StartDiff: -0.3, EndDiff: 0.4},
	}
	res := Align(wordsFrom("a", "b"), wordsFrom("a", "b"))
	totals := Totals{}.Fold(res, samples)

	s := totals.Summary()
	require.Equal(t, 2, s.TimingSamples)
	require.InDelta(t, (0.01+0.09)/2, s.StartMSE, 1e-12)
	require.InDelta(t, (0.04+0.16)/2, s.EndMSE, 1e-12)
	require.InDelta(t, math.Sqrt(s.StartMSE), s.StartRMSE, 1e-12)
	require.InDelta(t, math.Sqrt(s.EndMSE), s.EndRMSE, 1e-12)
	require.InDelta(t, 0.2, s.AvgStartDiff, 1e-12)
	require.InDelta(t, 0.3, s.AvgEndDiff, 1e-12)
}

func TestSummaryEmptyTotals(t *testing.T) {
	t.Parallel()

	s := Totals{}.Summary()
	require.Zero(t, s.Items)
	require.Zero(t, s.AvgWER)
	require.Zero(t, s.StartMSE)
	require.Zero(t, s.StartRMSE)
}
