package vectorizer

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Stopwords is a set of tokens excluded from the vocabulary entirely.
type Stopwords map[string]struct{}

// NewStopwords builds a stopword set from a word list.
func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Contains reports whether the word is a stopword. Safe on a nil set.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// LoadStopwords reads a stopword file with one word per line. Blank lines
// and lines starting with '#' are skipped.
func LoadStopwords(path string) (Stopwords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stopword file: %w", err)
	}
	defer f.Close()

	s := make(Stopwords)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		s[strings.ToLower(word)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopword file: %w", err)
	}
	return s, nil
}

// EnglishStopwords is the default stopword set for the free-text path.
var EnglishStopwords = NewStopwords(
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "could", "did", "do",
	"does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "i", "if", "in", "into",
	"is", "it", "its", "itself", "just", "me", "more", "most", "my",
	"myself", "no", "nor", "not", "now", "of", "off", "on", "once", "only",
	"or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these",
	"they", "this", "those", "through", "to", "too", "under", "until",
	"up", "very", "was", "we", "were", "what", "when", "where", "which",
	"while", "who", "whom", "why", "will", "with", "you", "your", "yours",
	"yourself", "yourselves",
)

// Stemmer reduces a token to its stem. A nil Stemmer leaves tokens as-is.
type Stemmer func(string) string

// SnowballStemmer stems English tokens with the snowball (Porter2)
// algorithm, collapsing inflected forms like "stories"/"story".
func SnowballStemmer(token string) string {
	return english.Stem(token, false)
}

// Tokenize splits text into normalized tokens: lowercase, split on
// non-alphanumeric boundaries, stopwords and empty tokens dropped, then the
// optional stemmer applied. Stopwords are matched before stemming.
func Tokenize(text string, stop Stopwords, stem Stemmer) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c)
	})
	var tokens []string
	for _, field := range fields {
		if stop.Contains(field) {
			continue
		}
		if stem != nil {
			field = stem(field)
		}
		tokens = append(tokens, field)
	}
	return tokens
}
