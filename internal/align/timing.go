package align

// TimingSample holds the signed timestamp differences for one matched word
// pair: hypothesis minus reference, in seconds. Substitutions, deletions,
// and insertions produce no sample since the word identities differ and
// their timestamps are not comparable.
type TimingSample struct {
	StartDiff float64
	EndDiff   float64
}

// TimingSamples extracts one sample per match op, in op order.
func TimingSamples(r Result) []TimingSample {
	if r.Matches == 0 {
		return nil
	}
	samples := make([]TimingSample, 0, r.Matches)
	for _, op := range r.Ops {
		if op.Kind != OpMatch {
			continue
		}
		samples = append(samples, TimingSample{
			StartDiff: op.Hyp.Start - op.Ref.Start,
			EndDiff:   op.Hyp.End - op.Ref.End,
		})
	}
	return samples
}
