// Package similarity scores lexical overlap between two documents.
//
// The default implementation weights terms with smoothed TF-IDF over the
// two-document corpus formed by the inputs and compares the weight vectors
// by cosine similarity.
package similarity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"

	"github.com/spigell/resume-screener/internal/normalize"
)

// minTokenLength drops single character tokens from the vocabulary.
const minTokenLength = 2

// Scorer computes a similarity in [0, 1] between two texts.
type Scorer interface {
	Similarity(a, b string) float64
}

// Score converts the similarity reported by s into an integer percentage.
func Score(s Scorer, a, b string) int {
	sim := s.Similarity(a, b)
	if math.IsNaN(sim) || sim <= 0 {
		return 0
	}

	score := int(math.Round(sim * 100))
	if score > 100 {
		return 100
	}
	return score
}

// TFIDF is a Scorer backed by TF-IDF weighting and cosine similarity.
// It is safe for concurrent use.
type TFIDF struct {
	stopWords analysis.TokenMap
}

// Option configures a TFIDF scorer.
type Option func(*TFIDF)

// WithExtraStopWords adds words to the built-in English stop list.
func WithExtraStopWords(words ...string) Option {
	return func(t *TFIDF) {
		for _, w := range words {
			for _, token := range normalize.Tokens(w) {
				t.stopWords.AddToken(token)
			}
		}
	}
}

// WithoutStopWords disables stop word filtering entirely.
func WithoutStopWords() Option {
	return func(t *TFIDF) {
		t.stopWords = analysis.NewTokenMap()
	}
}

// NewTFIDF builds a scorer using the English stop list shipped with bleve.
func NewTFIDF(opts ...Option) (*TFIDF, error) {
	stopWords := analysis.NewTokenMap()
	if err := stopWords.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, fmt.Errorf("loading english stop words: %w", err)
	}

	t := &TFIDF{stopWords: stopWords}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// IsStopWord reports whether word is excluded from the vocabulary.
func (t *TFIDF) IsStopWord(word string) bool {
	return t.stopWords[strings.ToLower(word)]
}

// Similarity returns the cosine similarity of the TF-IDF vectors of a and b.
// Inputs are normalized first. It returns 0 when either document has no
// vocabulary terms.
func (t *TFIDF) Similarity(a, b string) float64 {
	docA := t.termCounts(a)
	docB := t.termCounts(b)
	if len(docA) == 0 || len(docB) == 0 {
		return 0
	}

	vecA, vecB := weigh(docA, docB)
	return cosine(vecA, vecB)
}

// Terms returns the sorted vocabulary terms of text after normalization and stop word removal.
func (t *TFIDF) Terms(text string) []string {
	counts := t.termCounts(text)
	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func (t *TFIDF) termCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, token := range normalize.Tokens(text) {
		if len(token) < minTokenLength || t.stopWords[token] {
			continue
		}
		counts[token]++
	}
	return counts
}

// weigh applies smoothed inverse document frequency over the two-document
// corpus: idf = ln((1+n)/(1+df)) + 1.
func weigh(docA, docB map[string]float64) (map[string]float64, map[string]float64) {
	const docs = 2.0

	idf := func(term string) float64 {
		df := 0.0
		if docA[term] > 0 {
			df++
		}
		if docB[term] > 0 {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	vecA := make(map[string]float64, len(docA))
	for term, tf := range docA {
		vecA[term] = tf * idf(term)
	}

	vecB := make(map[string]float64, len(docB))
	for term, tf := range docB {
		vecB[term] = tf * idf(term)
	}

	return vecA, vecB
}

func cosine(a, b map[string]float64) float64 {
	normA := norm(a)
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for term, weight := range a {
		if other, ok := b[term]; ok {
			dot += weight * other
		}
	}
	if dot == 0 {
		return 0
	}

	sim := dot / (normA * normB)
	if sim > 1 {
		return 1
	}
	return sim
}

func norm(v map[string]float64) float64 {
	var sum float64
	for _, weight := range v {
		sum += weight * weight
	}
	return math.Sqrt(sum)
}
