// Package report renders evaluation results for humans and spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fmueller/autocensor/internal/align"
	"github.com/fmueller/autocensor/internal/eval"
	"github.com/fmueller/autocensor/internal/transcript"
	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteCSV writes one row per scored transcript pair.
func WriteCSV(w io.Writer, records []eval.Record) error {
	cw := csv.NewWriter(w)

	header := []string{
		"file", "ref_words", "hyp_words",
		"matches", "substitutions", "deletions", "insertions", "wer",
		"timing_samples", "start_mse", "end_mse", "avg_start_diff", "avg_end_diff",
		"separate_seconds", "transcribe_seconds",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Name,
			strconv.Itoa(rec.RefWords),
			strconv.Itoa(rec.HypWords),
			strconv.Itoa(rec.Matches),
			strconv.Itoa(rec.Substitutions),
			strconv.Itoa(rec.Deletions),
			strconv.Itoa(rec.Insertions),
			formatFloat(rec.WER),
			strconv.Itoa(rec.TimingSamples),
			formatFloat(rec.StartMSE),
			formatFloat(rec.EndMSE),
			formatFloat(rec.AvgStartDiff),
			formatFloat(rec.AvgEndDiff),
			formatFloat(rec.SeparateSeconds),
			formatFloat(rec.TranscribeSeconds),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", rec.Name, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteNormalizedCSV dumps the normalized reference and hypothesis words
// side by side, aligned by index, for manual inspection of a single pair.
func WriteNormalizedCSV(w io.Writer, ref, hyp []transcript.Word) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"hyp_text", "ref_text", "hyp_start", "ref_start", "hyp_end", "ref_end"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := 0; i < len(ref) || i < len(hyp); i++ {
		row := make([]string, 6)
		if i < len(hyp) {
			row[0] = transcript.Normalize(hyp[i].Text)
			row[2] = formatFloat(hyp[i].Start)
			row[4] = formatFloat(hyp[i].End)
		}
		if i < len(ref) {
			row[1] = transcript.Normalize(ref[i].Text)
			row[3] = formatFloat(ref[i].Start)
			row[5] = formatFloat(ref[i].End)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// RenderSummary prints the corpus-level statistics block.
func RenderSummary(w io.Writer, s align.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Transcription Comparison Summary")
	t.AppendRow(table.Row{"Files", s.Items})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Average WER", fmt.Sprintf("%.3f", s.AvgWER)})
	t.AppendRow(table.Row{"Min WER", fmt.Sprintf("%.3f", s.MinWER)})
	t.AppendRow(table.Row{"Max WER", fmt.Sprintf("%.3f", s.MaxWER)})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Matches", s.Matches})
	t.AppendRow(table.Row{"Substitutions", s.Substitutions})
	t.AppendRow(table.Row{"Deletions", s.Deletions})
	t.AppendRow(table.Row{"Insertions", s.Insertions})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Timing samples", s.TimingSamples})
	t.AppendRow(table.Row{"Start MSE (s²)", fmt.Sprintf("%.6f", s.StartMSE)})
	t.AppendRow(table.Row{"End MSE (s²)", fmt.Sprintf("%.6f", s.EndMSE)})
	t.AppendRow(table.Row{"Start RMSE (s)", fmt.Sprintf("%.6f", s.StartRMSE)})
	t.AppendRow(table.Row{"End RMSE (s)", fmt.Sprintf("%.6f", s.EndRMSE)})
	t.AppendRow(table.Row{"Avg |start diff| (s)", fmt.Sprintf("%.6f", s.AvgStartDiff)})
	t.AppendRow(table.Row{"Avg |end diff| (s)", fmt.Sprintf("%.6f", s.AvgEndDiff)})
	t.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
