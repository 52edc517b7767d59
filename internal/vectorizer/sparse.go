package vectorizer

import "math"

// Vector is a sparse document vector: parallel index/value slices with
// Indices strictly ascending. Dim is the full vocabulary dimensionality.
type Vector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// NNZ returns the number of non-zero entries.
func (v Vector) NNZ() int {
	return len(v.Indices)
}

// IsZero reports whether the vector has no non-zero entries.
func (v Vector) IsZero() bool {
	return len(v.Indices) == 0
}

// Norm returns the L2 magnitude of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, val := range v.Values {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// Dot computes the dot product of two sparse vectors via a merge join over
// their ascending index lists.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine computes the cosine similarity between two sparse vectors. It is
// defined as 0 when either vector has zero magnitude.
func Cosine(a, b Vector) float64 {
	na := a.Norm()
	nb := b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}
