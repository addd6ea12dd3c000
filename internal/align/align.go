package align

import (
	"github.com/fmueller/autocensor/internal/transcript"
)

// OpKind classifies one step of an alignment between a reference and a
// hypothesis word sequence.
type OpKind int

const (
	OpMatch OpKind = iota
	OpSubstitution
	OpDeletion
	OpInsertion
)

func (k OpKind) String() string {
	switch k {
	case OpMatch:
		return "match"
	case OpSubstitution:
		return "substitution"
	case OpDeletion:
		return "deletion"
	case OpInsertion:
		return "insertion"
	default:
		return "unknown"
	}
}

// Op is one alignment step. Ref is set for matches, substitutions, and
// deletions; Hyp is set for matches, substitutions, and insertions.
// Reading the Ref side of the ops in order reconstructs the reference
// sequence, and the Hyp side the hypothesis sequence.
type Op struct {
	Kind OpKind
	Ref  transcript.Word
	Hyp  transcript.Word
}

// Result is the minimum-cost alignment between two word sequences under
// unit costs (match 0, everything else 1).
type Result struct {
	Ops           []Op
	Matches       int
	Substitutions int
	Deletions     int
	Insertions    int
}

// RefLen returns the length of the reference sequence the alignment was
// computed against.
func (r Result) RefLen() int {
	return r.Matches + r.Substitutions + r.Deletions
}

// HypLen returns the length of the hypothesis sequence.
func (r Result) HypLen() int {
	return r.Matches + r.Substitutions + r.Insertions
}

// Distance returns the edit distance between the two sequences.
func (r Result) Distance() int {
	return r.Substitutions + r.Deletions + r.Insertions
}

// WER is the word error rate: errors divided by reference length, with the
// denominator floored at one. An empty reference against an empty
// hypothesis scores 0; an empty reference against a non-empty hypothesis
// scores the insertion count. Never divides by zero.
func (r Result) WER() float64 {
	refLen := r.RefLen()
	if refLen < 1 {
		refLen = 1
	}
	return float64(r.Distance()) / float64(refLen)
}

// Align computes the minimum-cost alignment between ref and hyp. Words are
// compared by their normalized keys; original text and timestamps ride
// along unchanged on the emitted ops.
//
// Where several alignments reach the minimum cost, the backtrace prefers
// match, then substitution, then deletion, then insertion. That order is
// part of the contract: timing statistics and golden evaluation outputs
// are computed against exactly this op classification.
func Align(ref, hyp []transcript.Word) Result {
	refKeys := transcript.NormalizeAll(ref)
	hypKeys := transcript.NormalizeAll(hyp)

	m, n := len(ref), len(hyp)

	// Cost table: dist[i][j] is the edit distance between ref[:i] and hyp[:j].
	dist := make([][]int, m+1)
	for i := range dist {
		dist[i] = make([]int, n+1)
		dist[i][0] = i
	}
	for j := 0; j <= n; j++ {
		dist[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if refKeys[i-1] == hypKeys[j-1] {
				dist[i][j] = dist[i-1][j-1]
				continue
			}
			best := dist[i-1][j-1] // substitution
			if dist[i-1][j] < best {
				best = dist[i-1][j] // deletion
			}
			if dist[i][j-1] < best {
				best = dist[i][j-1] // insertion
			}
			dist[i][j] = best + 1
		}
	}

	// Backtrace from the bottom-right corner, fixed preference order.
	ops := make([]Op, 0, max(m, n))
	var res Result
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && refKeys[i-1] == hypKeys[j-1] && dist[i][j] == dist[i-1][j-1]:
			ops = append(ops, Op{Kind: OpMatch, Ref: ref[i-1], Hyp: hyp[j-1]})
			res.Matches++
			i--
			j--
		case i > 0 && j > 0 && dist[i][j] == dist[i-1][j-1]+1:
			ops = append(ops, Op{Kind: OpSubstitution, Ref: ref[i-1], Hyp: hyp[j-1]})
			res.Substitutions++
			i--
			j--
		case i > 0 && dist[i][j] == dist[i-1][j]+1:
			ops = append(ops, Op{Kind: OpDeletion, Ref: ref[i-1]})
			res.Deletions++
			i--
		default:
			ops = append(ops, Op{Kind: OpInsertion, Hyp: hyp[j-1]})
			res.Insertions++
			j--
		}
	}

	// The backtrace walks right-to-left; restore original order.
	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	res.Ops = ops

	return res
}
