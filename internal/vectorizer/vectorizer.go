package vectorizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyCorpus is returned when Fit is called with no documents.
var ErrEmptyCorpus = errors.New("vectorizer: empty corpus")

// Mode selects the term weighting scheme.
type Mode int

const (
	// RawCount weights each term by its raw frequency within the document.
	RawCount Mode = iota
	// TFIDF weights each term by tf * smoothed idf and L2-normalizes every
	// document vector, so self-similarity under the dot product is 1.0.
	TFIDF
)

func (m Mode) String() string {
	switch m {
	case RawCount:
		return "count"
	case TFIDF:
		return "tfidf"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "count":
		return RawCount, nil
	case "tfidf":
		return TFIDF, nil
	}
	return 0, fmt.Errorf("vectorizer: unknown mode %q", s)
}

// Vocabulary maps normalized tokens to column indices. Indices are assigned
// in lexicographic ascending term order, so two fits over the same corpus
// produce identical assignments.
type Vocabulary struct {
	index map[string]int
	terms []string
}

// Index returns the column index of a term.
func (v *Vocabulary) Index(term string) (int, bool) {
	idx, ok := v.index[term]
	return idx, ok
}

// Size returns the number of terms.
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// Terms returns the terms in column-index order. The caller must not
// mutate the returned slice.
func (v *Vocabulary) Terms() []string {
	return v.terms
}

// AsMap returns a copy of the term-to-index mapping.
func (v *Vocabulary) AsMap() map[string]int {
	m := make(map[string]int, len(v.index))
	for term, idx := range v.index {
		m[term] = idx
	}
	return m
}

// VocabularyFromMap rebuilds a Vocabulary from a persisted term-to-index
// mapping. The indices must form a bijection onto 0..len-1.
func VocabularyFromMap(m map[string]int) (*Vocabulary, error) {
	terms := make([]string, len(m))
	seen := make([]bool, len(m))
	for term, idx := range m {
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("vectorizer: vocabulary index %d for %q out of range", idx, term)
		}
		if seen[idx] {
			return nil, fmt.Errorf("vectorizer: duplicate vocabulary index %d", idx)
		}
		seen[idx] = true
		terms[idx] = term
	}
	index := make(map[string]int, len(m))
	for term, idx := range m {
		index[term] = idx
	}
	return &Vocabulary{index: index, terms: terms}, nil
}

// Model is the result of fitting a corpus: the shared vocabulary and one
// sparse vector per input document, in input order.
type Model struct {
	Vocabulary *Vocabulary
	Matrix     []Vector
	Mode       Mode
}

// Fit builds the vocabulary and weighted corpus matrix from tokenized
// documents. It is a pure function of its inputs: the same documents in the
// same order always yield identical output. Documents with no surviving
// tokens produce all-zero vectors.
func Fit(docs [][]string, mode Mode, stop Stopwords) (*Model, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	// Term counts per document and document frequencies, stopwords dropped.
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tf := make(map[string]int)
		for _, token := range doc {
			if token == "" || stop.Contains(token) {
				continue
			}
			tf[token]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	vocab := buildVocabulary(df)

	var idf []float64
	if mode == TFIDF {
		// idf = ln((1 + N) / (1 + df)) + 1, smoothed so unseen extremes
		// stay finite.
		n := float64(len(docs))
		idf = make([]float64, vocab.Size())
		for term, idx := range vocab.index {
			idf[idx] = math.Log((1+n)/(1+float64(df[term]))) + 1
		}
	}

	matrix := make([]Vector, len(docs))
	for i, tf := range counts {
		vec := Vector{Dim: vocab.Size()}
		vec.Indices = make([]int, 0, len(tf))
		for term := range tf {
			idx, _ := vocab.Index(term)
			vec.Indices = append(vec.Indices, idx)
		}
		sort.Ints(vec.Indices)
		vec.Values = make([]float64, len(vec.Indices))
		for j, idx := range vec.Indices {
			w := float64(tf[vocab.terms[idx]])
			if mode == TFIDF {
				w *= idf[idx]
			}
			vec.Values[j] = w
		}
		if mode == TFIDF {
			normalize(&vec)
		}
		matrix[i] = vec
	}

	return &Model{Vocabulary: vocab, Matrix: matrix, Mode: mode}, nil
}

// FitTexts tokenizes raw text documents and fits them. Absent documents are
// treated as empty strings, yielding all-zero vectors.
func FitTexts(texts []string, mode Mode, stop Stopwords, stem Stemmer) (*Model, error) {
	docs := make([][]string, len(texts))
	for i, text := range texts {
		docs[i] = Tokenize(text, stop, stem)
	}
	return Fit(docs, mode, stop)
}

func buildVocabulary(df map[string]int) *Vocabulary {
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return &Vocabulary{index: index, terms: terms}
}

func normalize(v *Vector) {
	norm := v.Norm()
	if norm == 0 {
		return
	}
	for i := range v.Values {
		v.Values[i] /= norm
	}
}
