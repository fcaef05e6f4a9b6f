// Package vectorizer builds the token vocabulary and encodes token sequences
// as fixed-width bag-of-words vectors over it.
package vectorizer

import "sort"

// SparseVector is a Dim-wide vector storing only its set entries.
// Indices are kept sorted and unique.
type SparseVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// NewSparseVector returns the zero vector of width dim.
func NewSparseVector(dim int) SparseVector {
	return SparseVector{Dim: dim}
}

// Set stores val at idx, replacing any previous value.
func (sv *SparseVector) Set(idx int, val float64) {
	i := sort.SearchInts(sv.Indices, idx)
	if i < len(sv.Indices) && sv.Indices[i] == idx {
		sv.Values[i] = val
		return
	}
	sv.Indices = append(sv.Indices, 0)
	sv.Values = append(sv.Values, 0)
	copy(sv.Indices[i+1:], sv.Indices[i:])
	copy(sv.Values[i+1:], sv.Values[i:])
	sv.Indices[i] = idx
	sv.Values[i] = val
}

// Get returns the value at idx, or 0 when it is not set.
func (sv SparseVector) Get(idx int) float64 {
	i := sort.SearchInts(sv.Indices, idx)
	if i < len(sv.Indices) && sv.Indices[i] == idx {
		return sv.Values[i]
	}
	return 0
}

// Dot returns the inner product with a dense weight row.
func (sv SparseVector) Dot(row []float64) float64 {
	var sum float64
	for i, idx := range sv.Indices {
		if idx < len(row) {
			sum += sv.Values[i] * row[idx]
		}
	}
	return sum
}

// ToDense expands the vector to Dim entries.
func (sv SparseVector) ToDense() []float64 {
	dense := make([]float64, sv.Dim)
	for i, idx := range sv.Indices {
		if idx < sv.Dim {
			dense[idx] = sv.Values[i]
		}
	}
	return dense
}

// Nnz returns the number of stored entries.
func (sv SparseVector) Nnz() int {
	return len(sv.Indices)
}
