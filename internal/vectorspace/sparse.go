// Package vectorspace provides the TF-IDF vector space model over series
// feature dictionaries: vocabulary fitting, sparse vectors, and top-k
// cosine-similarity ranking.
package vectorspace

import (
	"math"
	"sort"
)

// Vector is a sparse vector: parallel slices of column indices (strictly
// ascending) and values.
type Vector struct {
	Indices []int
	Values  []float64
}

// FromMap builds a sparse vector from a column->value map, dropping zeros.
func FromMap(m map[int]float64) Vector {
	indices := make([]int, 0, len(m))
	for idx, v := range m {
		if v != 0 {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = m[idx]
	}
	return Vector{Indices: indices, Values: values}
}

// Dot returns the inner product of two sparse vectors.
// For unit-norm vectors this is the cosine similarity.
func (v Vector) Dot(other Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(other.Indices) {
		switch {
		case v.Indices[i] == other.Indices[j]:
			dot += v.Values[i] * other.Values[j]
			i++
			j++
		case v.Indices[i] < other.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// At returns the value at column idx, or 0 when absent.
func (v Vector) At(idx int) float64 {
	pos := sort.SearchInts(v.Indices, idx)
	if pos < len(v.Indices) && v.Indices[pos] == idx {
		return v.Values[pos]
	}
	return 0
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize scales the vector in place to unit L2 norm.
// A zero vector is left unchanged.
func (v Vector) Normalize() {
	norm := v.Norm()
	if norm == 0 {
		return
	}
	for i := range v.Values {
		v.Values[i] /= norm
	}
}

// NonZero returns the number of stored entries.
func (v Vector) NonZero() int {
	return len(v.Indices)
}

// Matrix is a sparse row-major matrix: one row per series, one column per
// vocabulary entry. Every row of a fitted TF-IDF matrix has unit L2 norm.
type Matrix struct {
	Rows []Vector
	Cols int
}

// Similarities returns query · rowᵀ for every row. With unit-norm rows and a
// unit-norm query this is the cosine similarity per row.
func (m Matrix) Similarities(query Vector) []float64 {
	scores := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		scores[i] = query.Dot(row)
	}
	return scores
}

// IsEmpty reports whether the matrix has no rows or no columns.
func (m Matrix) IsEmpty() bool {
	return len(m.Rows) == 0 || m.Cols == 0
}
