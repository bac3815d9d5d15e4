package collection

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer"
	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/ranker"
	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/tokenizer"
	"github.com/google/uuid"
)

// Service manages collections and computes collection-scoped statistics.
type Service struct {
	repo   *Repository
	stop   tokenizer.StopSet
	topN   int
	logger *slog.Logger
}

// NewService wires the collection service. The stop set and topN mirror the
// analyzer configuration so collection tables rank the same vocabulary.
func NewService(repo *Repository, stop tokenizer.StopSet, topN int) *Service {
	return &Service{
		repo:   repo,
		stop:   stop,
		topN:   topN,
		logger: slog.Default().With("component", "collection-service"),
	}
}

// Create makes a new empty collection.
func (s *Service) Create(ctx context.Context, ownerID, name string) (*Collection, error) {
	c := &Collection{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("collection created", "collection_id", c.ID, "name", name)
	return c, nil
}

// Get returns one collection.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*Collection, error) {
	return s.repo.Get(ctx, id, ownerID)
}

// List returns a page of the owner's collections.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Collection, error) {
	return s.repo.List(ctx, ownerID, limit, offset)
}

// Delete removes a collection, leaving its documents in place.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.Delete(ctx, id, ownerID)
}

// AddDocument links a document into a collection.
func (s *Service) AddDocument(ctx context.Context, collectionID, documentID, ownerID string) error {
	return s.repo.AddDocument(ctx, collectionID, documentID, ownerID)
}

// RemoveDocument unlinks a document from a collection.
func (s *Service) RemoveDocument(ctx context.Context, collectionID, documentID, ownerID string) error {
	return s.repo.RemoveDocument(ctx, collectionID, documentID, ownerID)
}

// Statistics computes the collection-scoped TF-IDF table. Documents are
// tokenized concurrently; the fold over the results is sequential so the
// first-seen term order is deterministic.
func (s *Service) Statistics(ctx context.Context, collectionID, ownerID string) (*StatisticsResponse, error) {
	contents, err := s.repo.DocumentContents(ctx, collectionID, ownerID)
	if err != nil {
		return nil, err
	}

	docTokens := make([][]tokenizer.Token, len(contents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, content := range contents {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			docTokens[i] = tokenizer.Tokenize(content, s.stop)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	words, totalTokens := ComputeStatistics(docTokens, s.topN)
	return &StatisticsResponse{
		CollectionID:  collectionID,
		DocumentCount: len(contents),
		TotalTokens:   totalTokens,
		Words:         words,
	}, nil
}

// ComputeStatistics treats the token streams as a self-contained corpus:
// TF is computed over the concatenation of all documents, and document
// frequency counts how many of these documents contain each term. An empty
// collection yields an empty table.
func ComputeStatistics(docTokens [][]tokenizer.Token, topN int) ([]ranker.WordScore, int) {
	counts := make(map[string]int)
	docFreq := make(map[string]int)
	var order []string
	totalTokens := 0

	for _, tokens := range docTokens {
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if counts[tok.Term] == 0 {
				order = append(order, tok.Term)
			}
			counts[tok.Term]++
			seen[tok.Term] = struct{}{}
			totalTokens++
		}
		for term := range seen {
			docFreq[term]++
		}
	}
	if totalTokens == 0 {
		return []ranker.WordScore{}, 0
	}

	tf := make(map[string]float64, len(counts))
	idf := make(map[string]float64, len(counts))
	for term, count := range counts {
		tf[term] = float64(count) / float64(totalTokens)
		idf[term] = analyzer.IDF(len(docTokens), docFreq[term])
	}

	return ranker.Rank(order, tf, idf, topN), totalTokens
}
