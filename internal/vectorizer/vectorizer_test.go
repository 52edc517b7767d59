package vectorizer_test

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/similarity-engine/backend/internal/vectorizer"
)

func TestTokenize(t *testing.T) {
	stop := vectorizer.NewStopwords("a", "is")
	tokens := vectorizer.Tokenize("A Toy-Story, it's... toy story 2!", stop, nil)

	assert.Equal(t, []string{"toy", "story", "it", "s", "toy", "story", "2"}, tokens)
}

func TestTokenizeStemming(t *testing.T) {
	tokens := vectorizer.Tokenize("stories about toys", vectorizer.NewStopwords("about"), vectorizer.SnowballStemmer)

	assert.Equal(t, []string{"stori", "toy"}, tokens)
}

func TestTokenizeStopwordBeforeStemming(t *testing.T) {
	// "about" must be matched as a stopword on the raw token, not its stem.
	tokens := vectorizer.Tokenize("about", vectorizer.EnglishStopwords, vectorizer.SnowballStemmer)
	assert.Empty(t, tokens)
}

func TestFitRawCountDimensionality(t *testing.T) {
	stop := vectorizer.NewStopwords("the")
	model, err := vectorizer.Fit([][]string{{"the", "cat", "sat", "cat"}}, vectorizer.RawCount, stop)
	assert.NoError(t, err)

	// Two distinct non-stopword tokens.
	assert.Equal(t, 2, model.Vocabulary.Size())
	assert.Equal(t, 2, model.Matrix[0].Dim)

	// Raw counts, vocabulary lexicographic: cat=0, sat=1.
	assert.Equal(t, []int{0, 1}, model.Matrix[0].Indices)
	assert.Equal(t, []float64{2, 1}, model.Matrix[0].Values)
}

func TestFitVocabularyLexicographic(t *testing.T) {
	model, err := vectorizer.Fit([][]string{{"zebra", "apple"}, {"mango"}}, vectorizer.RawCount, nil)
	assert.NoError(t, err)

	assert.Equal(t, []string{"apple", "mango", "zebra"}, model.Vocabulary.Terms())
	idx, ok := model.Vocabulary.Index("mango")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestFitIdempotence(t *testing.T) {
	docs := [][]string{
		{"toy", "story", "toy"},
		{"story", "war"},
		{"quiet", "drama"},
	}

	first, err := vectorizer.Fit(docs, vectorizer.TFIDF, nil)
	assert.NoError(t, err)
	second, err := vectorizer.Fit(docs, vectorizer.TFIDF, nil)
	assert.NoError(t, err)

	assert.Equal(t, first.Vocabulary.Terms(), second.Vocabulary.Terms())
	assert.Equal(t, first.Matrix, second.Matrix)
}

func TestFitTFIDFSelfSimilarity(t *testing.T) {
	docs := [][]string{
		{"toy", "story", "toy"},
		{"story", "war"},
		{"quiet", "drama"},
	}
	model, err := vectorizer.Fit(docs, vectorizer.TFIDF, nil)
	assert.NoError(t, err)

	// TFIDF vectors are L2-normalized, so the dot product of any non-zero
	// vector with itself is 1.
	for _, vec := range model.Matrix {
		assert.InDelta(t, 1.0, vectorizer.Dot(vec, vec), 1e-5)
		assert.InDelta(t, 1.0, vec.Norm(), 1e-5)
	}
}

func TestFitZeroVector(t *testing.T) {
	stop := vectorizer.NewStopwords("the", "and")
	model, err := vectorizer.Fit([][]string{{"cat"}, {"the", "and"}}, vectorizer.TFIDF, stop)
	assert.NoError(t, err)

	assert.True(t, model.Matrix[1].IsZero())
	assert.Equal(t, float64(0), vectorizer.Cosine(model.Matrix[0], model.Matrix[1]))
	assert.Equal(t, float64(0), vectorizer.Dot(model.Matrix[0], model.Matrix[1]))
}

func TestFitEmptyCorpus(t *testing.T) {
	_, err := vectorizer.Fit(nil, vectorizer.TFIDF, nil)
	assert.ErrorIs(t, err, vectorizer.ErrEmptyCorpus)

	_, err = vectorizer.FitTexts([]string{}, vectorizer.TFIDF, nil, nil)
	assert.ErrorIs(t, err, vectorizer.ErrEmptyCorpus)
}

func TestFitTexts(t *testing.T) {
	model, err := vectorizer.FitTexts([]string{"Toy story!", ""}, vectorizer.RawCount, nil, nil)
	assert.NoError(t, err)

	assert.Len(t, model.Matrix, 2)
	assert.Equal(t, []string{"story", "toy"}, model.Vocabulary.Terms())
	// The absent document survives as an all-zero vector.
	assert.True(t, model.Matrix[1].IsZero())
}

func TestSparseDot(t *testing.T) {
	a := vectorizer.Vector{Indices: []int{0, 2}, Values: []float64{1, 1}, Dim: 3}
	b := vectorizer.Vector{Indices: []int{1, 2}, Values: []float64{1, 1}, Dim: 3}

	assert.Equal(t, 1.0, vectorizer.Dot(a, b))
	assert.InDelta(t, 0.5, vectorizer.Cosine(a, b), 1e-9)
}

func TestCosineSymmetry(t *testing.T) {
	docs := [][]string{
		{"toy", "story"},
		{"story", "war", "war"},
		{"quiet"},
	}
	model, err := vectorizer.Fit(docs, vectorizer.RawCount, nil)
	assert.NoError(t, err)

	for i := range model.Matrix {
		for j := range model.Matrix {
			assert.Equal(t,
				vectorizer.Cosine(model.Matrix[i], model.Matrix[j]),
				vectorizer.Cosine(model.Matrix[j], model.Matrix[i]))
		}
	}
}

func TestTFIDFDownweightsCommonTerms(t *testing.T) {
	// "story" appears in every document, "toy" in one; idf must rank the
	// rare term higher.
	docs := [][]string{
		{"toy", "story"},
		{"war", "story"},
		{"drama", "story"},
	}
	model, err := vectorizer.Fit(docs, vectorizer.TFIDF, nil)
	assert.NoError(t, err)

	storyIdx, _ := model.Vocabulary.Index("story")
	toyIdx, _ := model.Vocabulary.Index("toy")

	vec := model.Matrix[0]
	weights := make(map[int]float64, vec.NNZ())
	for i, idx := range vec.Indices {
		weights[idx] = vec.Values[i]
	}
	assert.Greater(t, weights[toyIdx], weights[storyIdx])
}

func TestVocabularyFromMapRoundtrip(t *testing.T) {
	model, err := vectorizer.Fit([][]string{{"toy", "story", "war"}}, vectorizer.RawCount, nil)
	assert.NoError(t, err)

	restored, err := vectorizer.VocabularyFromMap(model.Vocabulary.AsMap())
	assert.NoError(t, err)
	assert.Equal(t, model.Vocabulary.Terms(), restored.Terms())
}

func TestVocabularyFromMapInvalid(t *testing.T) {
	_, err := vectorizer.VocabularyFromMap(map[string]int{"a": 0, "b": 2})
	assert.Error(t, err)

	_, err = vectorizer.VocabularyFromMap(map[string]int{"a": -1})
	assert.Error(t, err)
}

func TestLoadStopwords(t *testing.T) {
	path := t.TempDir() + "/stopwords.txt"
	writeFile(t, path, "# common words\nthe\nAnd\n\na\n")

	stop, err := vectorizer.LoadStopwords(path)
	assert.NoError(t, err)
	assert.True(t, stop.Contains("the"))
	assert.True(t, stop.Contains("and"))
	assert.True(t, stop.Contains("a"))
	assert.False(t, stop.Contains("#"))

	_, err = vectorizer.LoadStopwords(path + ".missing")
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNormIsEuclidean(t *testing.T) {
	v := vectorizer.Vector{Indices: []int{0, 1}, Values: []float64{3, 4}, Dim: 2}
	assert.InDelta(t, 5.0, v.Norm(), 1e-12)
	assert.InDelta(t, math.Sqrt(2), vectorizer.Vector{Indices: []int{0, 1}, Values: []float64{1, 1}, Dim: 2}.Norm(), 1e-12)
}
