// Package eval scores hypothesis transcripts against reference transcripts
// over a corpus: word error rate per pair plus timing accuracy of matched
// words.
package eval

import (
	"context"
	"sort"
	"sync"

	"github.com/fmueller/autocensor/internal/align"
	"github.com/fmueller/autocensor/internal/transcript"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Item is one transcript pair to score. Stage durations are optional
// pass-through measurements from whoever produced the hypothesis.
type Item struct {
	Name string
	Ref  []transcript.Word
	Hyp  []transcript.Word

	SeparateSeconds   float64
	TranscribeSeconds float64
}

// Record is the scored view of one Item.
type Record struct {
	Name string

	Matches       int
	Substitutions int
	Deletions     int
	Insertions    int
	RefWords      int
	HypWords      int
	WER           float64

	TimingSamples int
	StartMSE      float64
	EndMSE        float64
	AvgStartDiff  float64
	AvgEndDiff    float64

	SeparateSeconds   float64
	TranscribeSeconds float64

	totals align.Totals
}

// Report combines the per-item records with the corpus-level totals.
type Report struct {
	Records []Record
	Totals  align.Totals
}

func (r Report) Summary() align.Summary {
	return r.Totals.Summary()
}

// Run scores every item, up to concurrency pairs at once. Each worker
// folds into its own accumulator; the partials are merged once all
// workers are done, so no totals state is shared while aligning.
func Run(ctx context.Context, items []Item, concurrency int, logger *zap.Logger) (Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		records []Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, item := range items {
		item := item
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			rec := Score(item, logger)

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()

			logger.Debug("scored pair",
				zap.String("name", item.Name),
				zap.Float64("wer", rec.WER),
				zap.Int("timing_samples", rec.TimingSamples),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	var totals align.Totals
	for _, rec := range records {
		totals = totals.Merge(rec.totals)
	}

	return Report{Records: records, Totals: totals}, nil
}

// Score aligns one pair and derives its per-item statistics. Words with
// impossible timestamps are dropped with a warning before alignment.
func Score(item Item, logger *zap.Logger) Record {
	if logger == nil {
		logger = zap.NewNop()
	}

	ref, refDiags := transcript.Sanitize(item.Ref)
	hyp, hypDiags := transcript.Sanitize(item.Hyp)
	for _, diag := range append(refDiags, hypDiags...) {
		logger.Warn("dropping malformed word", zap.String("name", item.Name), zap.Error(diag))
	}

	res := align.Align(ref, hyp)
	samples := align.TimingSamples(res)
	totals := align.Totals{}.Fold(res, samples)
	summary := totals.Summary()

	return Record{
		Name:          item.Name,
		Matches:       res.Matches,
		Substitutions: res.Substitutions,
		Deletions:     res.Deletions,
		Insertions:    res.Insertions,
		RefWords:      res.RefLen(),
		HypWords:      res.HypLen(),
		WER:           res.WER(),

		TimingSamples: summary.TimingSamples,
		StartMSE:      summary.StartMSE,
		EndMSE:        summary.EndMSE,
		AvgStartDiff:  summary.AvgStartDiff,
		AvgEndDiff:    summary.AvgEndDiff,

		SeparateSeconds:   item.SeparateSeconds,
		TranscribeSeconds: item.TranscribeSeconds,

		totals: totals,
	}
}
