// Package tokenizer provides text tokenisation for the TF-IDF analyzer.
// It lower-cases input, splits on non-alphanumeric boundaries, discards
// purely numeric candidates, and removes stop-words. No stemming is applied:
// term frequencies are computed over surface forms.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

// Token represents a single normalised term and its position in the
// filtered token sequence.
type Token struct {
	Term     string
	Position int
}

// StopSet is a set of words excluded from analysis. Membership checks are
// case-insensitive because Tokenize lower-cases candidates before lookup.
type StopSet map[string]struct{}

// NewStopSet builds a StopSet from the given words. Entries are lower-cased;
// empty or whitespace-only entries are a configuration error.
func NewStopSet(words []string) (StopSet, error) {
	set := make(StopSet, len(words))
	for i, w := range words {
		trimmed := strings.TrimSpace(w)
		if trimmed == "" {
			return nil, fmt.Errorf("stop word %d is empty or whitespace", i)
		}
		set[strings.ToLower(trimmed)] = struct{}{}
	}
	return set, nil
}

// Merge returns a new StopSet containing the words of both sets.
func (s StopSet) Merge(other StopSet) StopSet {
	merged := make(StopSet, len(s)+len(other))
	for w := range s {
		merged[w] = struct{}{}
	}
	for w := range other {
		merged[w] = struct{}{}
	}
	return merged
}

// Contains reports whether word is in the set.
func (s StopSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Tokenize breaks text into a slice of lowercased Tokens with numeric
// candidates and stop-words removed. Splitting on every rune that is neither
// a letter nor a digit drops punctuation and whitespace during segmentation,
// so only the numeric and stop-word filters remain per candidate. Empty
// input yields an empty slice, not an error. Deterministic: the same text
// always produces the same sequence.
func Tokenize(text string, stop StopSet) []Token {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if isNumeric(word) {
			continue
		}
		if stop.Contains(word) {
			continue
		}
		tokens = append(tokens, Token{
			Term:     word,
			Position: pos,
		})
		pos++
	}
	return tokens
}

// isNumeric reports whether the word consists entirely of digits.
// Mixed letter/digit tokens are kept.
func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(word) > 0
}
