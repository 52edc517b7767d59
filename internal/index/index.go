package index

import (
	"errors"
	"fmt"
	"sort"

	"github.com/similarity-engine/backend/internal/vectorizer"
)

var (
	// ErrEmptyCorpus is returned by Build when the corpus has no documents.
	ErrEmptyCorpus = errors.New("index: empty corpus")
	// ErrShapeMismatch is returned by Build when labels and corpus differ
	// in length.
	ErrShapeMismatch = errors.New("index: label/corpus shape mismatch")
	// ErrUnknownLabel is returned by Query for a label absent from the
	// label map.
	ErrUnknownLabel = errors.New("index: unknown label")
	// ErrInvalidArgument is returned by Query for k <= 0.
	ErrInvalidArgument = errors.New("index: invalid argument")
)

// Kernel selects the similarity function applied between document vectors.
type Kernel int

const (
	// Cosine is dot(a,b) / (|a|*|b|), 0 when either norm is 0. Use it for
	// raw-count vectors.
	Cosine Kernel = iota
	// DotProduct assumes L2-normalized vectors, where the dot product
	// already is the cosine.
	DotProduct
)

func (k Kernel) String() string {
	if k == DotProduct {
		return "dot"
	}
	return "cosine"
}

// KernelFor returns the kernel matching a weighting mode: TFIDF vectors are
// pre-normalized, raw counts are not.
func KernelFor(mode vectorizer.Mode) Kernel {
	if mode == vectorizer.TFIDF {
		return DotProduct
	}
	return Cosine
}

// Result is one ranked neighbor.
type Result struct {
	ID    int
	Label string
	Score float64
}

// Index holds an immutable corpus of document vectors and a label map.
// Once built it is read-only and safe for concurrent Query calls; each
// query allocates its own score buffer.
type Index struct {
	matrix  []vectorizer.Vector
	labels  []string
	byLabel map[string]int
	norms   []float64
	kernel  Kernel
}

// Build constructs an Index over the corpus matrix. Labels align with the
// matrix by position; duplicate labels resolve to the last occurrence.
func Build(matrix []vectorizer.Vector, labels []string, kernel Kernel) (*Index, error) {
	if len(matrix) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(labels) != len(matrix) {
		return nil, fmt.Errorf("%w: %d labels for %d documents", ErrShapeMismatch, len(labels), len(matrix))
	}

	byLabel := make(map[string]int, len(labels))
	for id, label := range labels {
		byLabel[label] = id
	}

	ix := &Index{
		matrix:  matrix,
		labels:  labels,
		byLabel: byLabel,
		kernel:  kernel,
	}
	if kernel == Cosine {
		ix.norms = make([]float64, len(matrix))
		for i, vec := range matrix {
			ix.norms[i] = vec.Norm()
		}
	}
	return ix, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.matrix)
}

// Kernel returns the similarity kernel the index was built with.
func (ix *Index) Kernel() Kernel {
	return ix.kernel
}

// Resolve maps a label to its document id (last occurrence wins).
func (ix *Index) Resolve(label string) (int, bool) {
	id, ok := ix.byLabel[label]
	return id, ok
}

// Label returns the label of a document id.
func (ix *Index) Label(id int) string {
	return ix.labels[id]
}

// Query returns the top-k documents most similar to the labeled reference,
// excluding the reference itself. Scores are non-increasing; ties are
// broken by ascending document id. Fewer than k results are returned when
// the corpus minus the reference is smaller than k.
func (ix *Index) Query(label string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}
	ref, ok := ix.byLabel[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return ix.QueryID(ref, k)
}

// QueryID is Query addressed by document id instead of label.
func (ix *Index) QueryID(ref, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}
	if ref < 0 || ref >= len(ix.matrix) {
		return nil, fmt.Errorf("%w: document id %d out of range", ErrInvalidArgument, ref)
	}

	scored := make([]Result, len(ix.matrix))
	for id := range ix.matrix {
		scored[id] = Result{
			ID:    id,
			Label: ix.labels[id],
			Score: ix.similarity(ref, id),
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	// Drop exactly one occurrence of the reference, then take k.
	results := make([]Result, 0, k)
	excluded := false
	for _, r := range scored {
		if !excluded && r.ID == ref {
			excluded = true
			continue
		}
		results = append(results, r)
		if len(results) == k {
			break
		}
	}
	return results, nil
}

func (ix *Index) similarity(a, b int) float64 {
	if ix.kernel == DotProduct {
		return vectorizer.Dot(ix.matrix[a], ix.matrix[b])
	}
	if ix.norms[a] == 0 || ix.norms[b] == 0 {
		return 0
	}
	return vectorizer.Dot(ix.matrix[a], ix.matrix[b]) / (ix.norms[a] * ix.norms[b])
}
