// Package analyzer implements the TF-IDF computation engine: per-document
// term frequencies, smoothed inverse document frequencies against a corpus
// statistics store, and ranked word-score results. The computation is pure
// and deterministic; the only external read is the corpus snapshot supplied
// by the injected Store.
package analyzer

import (
	"context"
	"fmt"
	"math"

	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/ranker"
	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/tokenizer"
	"github.com/avdeevsm/tfidf-analyzer/internal/corpus"
	"github.com/avdeevsm/tfidf-analyzer/pkg/tracing"
)

// DefaultTopWords is the number of ranked terms returned when the
// configuration does not override it.
const DefaultTopWords = 50

// Config holds the analyzer's validated construction-time settings.
// It is never mutated during a computation.
type Config struct {
	// TopWords caps the number of ranked terms per result. Must be > 0.
	TopWords int
	// StopWords is the full stop-word set applied during tokenization.
	StopWords tokenizer.StopSet
}

// Validate reports configuration errors. Called once at construction, never
// per request.
func (c Config) Validate() error {
	if c.TopWords <= 0 {
		return fmt.Errorf("topWords must be positive, got %d", c.TopWords)
	}
	return nil
}

// TermFrequencies is the TF computation result for one document.
type TermFrequencies struct {
	// TF maps each distinct term to its relative frequency
	// count(term) / TotalTokens.
	TF map[string]float64
	// Counts maps each distinct term to its occurrence count.
	Counts map[string]int
	// Order lists distinct terms in first-seen order. Rankers use it for
	// deterministic tie-breaking instead of map iteration order.
	Order []string
	// TotalTokens is the filtered token count, the TF denominator.
	TotalTokens int
}

// ComputeTF counts occurrences of each distinct term in the filtered token
// sequence and divides by the total filtered token count. Zero tokens yield
// empty maps, a defined state rather than an error.
func ComputeTF(tokens []tokenizer.Token) TermFrequencies {
	tf := TermFrequencies{
		TF:          make(map[string]float64),
		Counts:      make(map[string]int),
		Order:       make([]string, 0),
		TotalTokens: len(tokens),
	}
	if len(tokens) == 0 {
		return tf
	}
	for _, token := range tokens {
		if _, seen := tf.Counts[token.Term]; !seen {
			tf.Order = append(tf.Order, token.Term)
		}
		tf.Counts[token.Term]++
	}
	total := float64(tf.TotalTokens)
	for term, count := range tf.Counts {
		tf.TF[term] = float64(count) / total
	}
	return tf
}

// IDF computes the smoothed inverse document frequency
// ln((N+1)/(df+1)). The "+1" on both sides avoids division by zero for
// unseen terms and keeps the value above zero for terms present in every
// document. Never negative while df <= N, which the corpus store guarantees.
func IDF(docCount, docFreq int) float64 {
	return math.Log(float64(docCount+1) / float64(docFreq+1))
}

// Result is the analysis output for one document.
type Result struct {
	// Words is the ranked word-score table, at most TopWords entries,
	// sorted by IDF descending.
	Words []ranker.WordScore
	// TotalTokens is the filtered token count of the document.
	TotalTokens int
	// DistinctTerms lists the document's distinct terms in first-seen
	// order; the caller registers them with the corpus store after
	// persisting the document.
	DistinctTerms []string
}

// Analyzer ties tokenizer, TF, IDF, and ranker together against an injected
// corpus store. Safe for concurrent use: all state is immutable after New.
type Analyzer struct {
	cfg   Config
	store corpus.Store
}

// New validates cfg and returns an Analyzer reading corpus statistics from
// store.
func New(cfg Config, store corpus.Store) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer config: %w", err)
	}
	if cfg.StopWords == nil {
		cfg.StopWords = tokenizer.DefaultRussian()
	}
	return &Analyzer{cfg: cfg, store: store}, nil
}

// TopWords returns the configured result cap.
func (a *Analyzer) TopWords() int {
	return a.cfg.TopWords
}

// Analyze computes the ranked TF-IDF table for text against the current
// corpus snapshot. The snapshot is read before the document is registered,
// so the document does not count toward its own IDF. An empty document is a
// valid input and produces an empty result.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	_, span := tracing.StartChildSpan(ctx, "tokenize")
	tokens := tokenizer.Tokenize(text, a.cfg.StopWords)
	span.End()

	tf := ComputeTF(tokens)
	if tf.TotalTokens == 0 {
		return &Result{Words: []ranker.WordScore{}, DistinctTerms: []string{}}, nil
	}

	_, span = tracing.StartChildSpan(ctx, "corpus_snapshot")
	stats, err := a.store.Snapshot(ctx, tf.Order)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("reading corpus snapshot: %w", err)
	}

	idf := make(map[string]float64, len(tf.Order))
	for _, term := range tf.Order {
		idf[term] = IDF(stats.DocumentCount, stats.DocumentFrequency[term])
	}

	words := ranker.Rank(tf.Order, tf.TF, idf, a.cfg.TopWords)
	return &Result{
		Words:         words,
		TotalTokens:   tf.TotalTokens,
		DistinctTerms: tf.Order,
	}, nil
}
