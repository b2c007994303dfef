// Package skills finds known skill phrases in free text.
package skills

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrEmptyPhrase is returned when a vocabulary entry is blank.
var ErrEmptyPhrase = errors.New("skill phrase must not be empty")

// DefaultPhrases is the built-in skill table.
var DefaultPhrases = []string{
	"python", "java", "c++", "sql", "html", "css", "javascript", "typescript",
	"machine learning", "deep learning", "nlp", "data analysis", "ai", "analysis",
	"excel", "power bi", "tableau", "data science", "statistics",
	"django", "flask", "react", "angular", "node",
	"rest api", "git", "github", "docker", "aws", "cloud",
	"communication", "teamwork", "leadership", "problem solving",
	"time management", "project management", "critical thinking",
}

// A phrase must not touch a letter, digit or underscore on either side.
const (
	leftBoundary  = `(?:^|[^\pL\pN_])`
	rightBoundary = `(?:[^\pL\pN_]|$)`
)

// Vocabulary is an ordered, read-only set of skill phrases.
// It is safe for concurrent use.
type Vocabulary struct {
	phrases  []string
	patterns []*regexp.Regexp
}

// New builds a vocabulary from phrases. Phrases are trimmed and lowercased;
// duplicates keep their first position.
func New(phrases ...string) (*Vocabulary, error) {
	v := &Vocabulary{}
	seen := make(map[string]struct{}, len(phrases))

	for i, raw := range phrases {
		phrase := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
		if phrase == "" {
			return nil, fmt.Errorf("phrase #%d: %w", i, ErrEmptyPhrase)
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}

		pattern, err := compile(phrase)
		if err != nil {
			return nil, fmt.Errorf("compile phrase %q: %w", phrase, err)
		}

		v.phrases = append(v.phrases, phrase)
		v.patterns = append(v.patterns, pattern)
	}

	return v, nil
}

// Default returns the vocabulary built from DefaultPhrases.
func Default() *Vocabulary {
	v, err := New(DefaultPhrases...)
	if err != nil {
		panic(fmt.Sprintf("default skill vocabulary: %v", err))
	}
	return v
}

func compile(phrase string) (*regexp.Regexp, error) {
	words := strings.Fields(phrase)
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}

	return regexp.Compile(`(?i)` + leftBoundary + strings.Join(quoted, `\s+`) + rightBoundary)
}

// Phrases returns a copy of the vocabulary in its original order.
func (v *Vocabulary) Phrases() []string {
	return append([]string(nil), v.phrases...)
}

// Len returns the number of phrases.
func (v *Vocabulary) Len() int {
	return len(v.phrases)
}

// Extract returns the sorted set of phrases mentioned in text as whole words.
func (v *Vocabulary) Extract(text string) []string {
	found := make([]string, 0)
	if strings.TrimSpace(text) == "" {
		return found
	}

	for i, pattern := range v.patterns {
		if pattern.MatchString(text) {
			found = append(found, v.phrases[i])
		}
	}

	sort.Strings(found)
	return found
}

// Intersect returns elements present in both a and b, sorted.
func Intersect(a, b []string) []string {
	in := toSet(b)
	result := make([]string, 0)
	for _, s := range unique(a) {
		if _, ok := in[s]; ok {
			result = append(result, s)
		}
	}
	return result
}

// Difference returns elements of a that are absent from b, sorted.
func Difference(a, b []string) []string {
	in := toSet(b)
	result := make([]string, 0)
	for _, s := range unique(a) {
		if _, ok := in[s]; !ok {
			result = append(result, s)
		}
	}
	return result
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func unique(items []string) []string {
	set := toSet(items)
	result := make([]string, 0, len(set))
	for s := range set {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}
