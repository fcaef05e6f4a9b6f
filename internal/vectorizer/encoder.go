package vectorizer

import (
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultThreshold is the similarity a token must exceed to set a vocabulary bit.
const DefaultThreshold = 0.8

// Encoder maps token sequences to binary presence vectors over a fixed
// vocabulary, using approximate string matching instead of equality.
// It is immutable and safe for concurrent use.
type Encoder struct {
	words     [][]string // vocabulary words split into runes
	threshold float64
}

// NewEncoder creates an Encoder over words. A threshold <= 0 selects
// DefaultThreshold.
func NewEncoder(words []string, threshold float64) *Encoder {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	split := make([][]string, len(words))
	for i, w := range words {
		split[i] = runes(w)
	}
	return &Encoder{words: split, threshold: threshold}
}

// Dim returns the feature vector width (the vocabulary size).
func (e *Encoder) Dim() int {
	return len(e.words)
}

// Threshold returns the similarity threshold in use.
func (e *Encoder) Threshold() float64 {
	return e.threshold
}

// Encode returns a vector of width Dim with value 1 at every vocabulary index
// some token matches with ratio above the threshold. An empty token sequence
// gives the zero vector.
func (e *Encoder) Encode(tokens []string) SparseVector {
	sv := NewSparseVector(len(e.words))
	if len(tokens) == 0 {
		return sv
	}

	split := make([][]string, len(tokens))
	for i, tok := range tokens {
		split[i] = runes(tok)
	}

	for idx, word := range e.words {
		var m *difflib.SequenceMatcher
		for _, tok := range split {
			if !canExceed(len(tok), len(word), e.threshold) {
				continue
			}
			if m == nil {
				m = difflib.NewMatcher(nil, word)
			}
			m.SetSeq1(tok)
			if m.Ratio() > e.threshold {
				sv.Set(idx, 1.0)
				break
			}
		}
	}
	return sv
}

// Ratio returns the similarity of a and b in [0, 1]: twice the number of
// matched runes over the total rune count, as computed by Ratcliff/Obershelp
// block matching.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// canExceed reports whether two sequences of lengths la and lb could reach a
// ratio above threshold. The ratio is at most 2*min(la, lb)/(la+lb).
func canExceed(la, lb int, threshold float64) bool {
	total := la + lb
	if total == 0 {
		return 1.0 > threshold
	}
	return 2*float64(min(la, lb))/float64(total) > threshold
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
