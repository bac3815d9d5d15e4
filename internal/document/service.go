package document

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/avdeevsm/tfidf-analyzer/internal/analytics"
	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer"
	"github.com/avdeevsm/tfidf-analyzer/internal/corpus"
	"github.com/avdeevsm/tfidf-analyzer/internal/document/cache"
	"github.com/avdeevsm/tfidf-analyzer/internal/document/huffman"
	"github.com/avdeevsm/tfidf-analyzer/internal/document/validator"
	"github.com/avdeevsm/tfidf-analyzer/pkg/metrics"
	"github.com/avdeevsm/tfidf-analyzer/pkg/middleware"
	"github.com/avdeevsm/tfidf-analyzer/pkg/tracing"
	"github.com/google/uuid"
)

// Service coordinates the document pipeline: validate → analyze → persist →
// register with the corpus → invalidate cached statistics → emit an
// analytics event. The cache, collector, and metrics are optional; the
// service degrades gracefully when they are nil.
type Service struct {
	repo        *Repository
	analyzer    *analyzer.Analyzer
	corpus      corpus.Store
	cache       *cache.StatsCache
	collector   *analytics.Collector
	metrics     *metrics.Metrics
	maxFileSize int64
	logger      *slog.Logger
}

// NewService wires the document service.
func NewService(
	repo *Repository,
	a *analyzer.Analyzer,
	store corpus.Store,
	statsCache *cache.StatsCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
	maxFileSize int64,
) *Service {
	return &Service{
		repo:        repo,
		analyzer:    a,
		corpus:      store,
		cache:       statsCache,
		collector:   collector,
		metrics:     m,
		maxFileSize: maxFileSize,
		logger:      slog.Default().With("component", "document-service"),
	}
}

// Upload validates and analyzes an uploaded file, persists the document and
// its ranked word statistics, and registers the document's distinct terms
// with the corpus. The corpus snapshot is read during analysis, before
// registration, so the document never counts toward its own IDF.
func (s *Service) Upload(ctx context.Context, ownerID, filename, contentType string, data []byte) (*AnalysisResponse, error) {
	if err := validator.ValidateUpload(filename, contentType, data, s.maxFileSize); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "analyze_document", middleware.GetRequestID(ctx))
	defer func() {
		span.End()
		span.Log()
	}()

	text := string(data)
	docID := uuid.NewString()
	span.SetAttr("doc_id", docID)
	span.SetAttr("content_size", len(data))

	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		s.trackFailure(ctx, docID, len(data), start)
		return nil, fmt.Errorf("analyzing document: %w", err)
	}

	doc := &Document{
		ID:          docID,
		OwnerID:     ownerID,
		Filename:    filename,
		ContentHash: fmt.Sprintf("%x", sha256.Sum256(data)),
		ContentSize: len(data),
		TotalTokens: result.TotalTokens,
		Status:      StatusPending,
	}

	_, persistSpan := tracing.StartChildSpan(ctx, "persist")
	err = s.repo.SaveAnalysis(ctx, doc, text, result.Words)
	persistSpan.End()
	if err != nil {
		s.trackFailure(ctx, docID, len(data), start)
		return nil, fmt.Errorf("saving analysis: %w", err)
	}

	_, registerSpan := tracing.StartChildSpan(ctx, "corpus_register")
	err = s.corpus.RegisterDocument(ctx, docID, result.DistinctTerms)
	registerSpan.End()
	if err != nil {
		s.trackFailure(ctx, docID, len(data), start)
		return nil, fmt.Errorf("registering document in corpus: %w", err)
	}
	doc.Status = StatusAnalyzed

	// Every IDF value in the cache is stale now that the corpus grew.
	if s.cache != nil {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			s.logger.Warn("statistics cache invalidation failed", "error", err)
		}
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.DocumentsAnalyzed.WithLabelValues("completed").Inc()
		s.metrics.CorpusDocuments.Inc()
		s.metrics.AnalysisDuration.Observe(elapsed.Seconds())
		s.metrics.TokensPerDocument.Observe(float64(result.TotalTokens))
		s.metrics.TermsReturned.Observe(float64(len(result.Words)))
	}
	if s.collector != nil {
		s.collector.Track(analytics.AnalysisEvent{
			Type:          analytics.EventAnalysisCompleted,
			DocumentID:    docID,
			ContentLength: len(data),
			TokenCount:    result.TotalTokens,
			TermsReturned: len(result.Words),
			ProcessingMs:  elapsed.Milliseconds(),
			Timestamp:     time.Now().UTC(),
			RequestID:     middleware.GetRequestID(ctx),
		})
	}

	s.logger.Info("document analyzed",
		"doc_id", docID,
		"filename", filename,
		"total_tokens", result.TotalTokens,
		"terms_returned", len(result.Words),
		"latency_ms", elapsed.Milliseconds(),
	)

	return &AnalysisResponse{
		Document:    *doc,
		Words:       result.Words,
		TotalTokens: result.TotalTokens,
	}, nil
}

// Get returns one document's metadata.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*Document, error) {
	return s.repo.Get(ctx, id, ownerID)
}

// List returns a page of the owner's documents.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	return s.repo.List(ctx, ownerID, limit, offset)
}

// Delete removes a document and its stored statistics. The document's
// corpus contribution is intentionally kept (the corpus grows
// monotonically).
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return s.repo.Delete(ctx, id, ownerID)
}

// Statistics returns the document's stored ranked word table as raw JSON,
// served from the cache when possible.
func (s *Service) Statistics(ctx context.Context, id, ownerID string) (json.RawMessage, bool, error) {
	topN := s.analyzer.TopWords()
	compute := func() (any, error) {
		words, err := s.repo.GetStatistics(ctx, id, ownerID)
		if err != nil {
			return nil, err
		}
		return StatisticsResponse{DocumentID: id, Words: words}, nil
	}

	if s.cache == nil {
		result, err := compute()
		if err != nil {
			return nil, false, err
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, false, fmt.Errorf("marshaling statistics: %w", err)
		}
		return data, false, nil
	}

	var payload json.RawMessage
	hit, err := s.cache.Do(ctx, id, topN, &payload, compute)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		if hit {
			s.metrics.CacheHitsTotal.Inc()
		} else {
			s.metrics.CacheMissesTotal.Inc()
		}
	}
	return payload, hit, nil
}

// Huffman returns the document content encoded with a Huffman code built
// from the content itself.
func (s *Service) Huffman(ctx context.Context, id, ownerID string) (*HuffmanResponse, error) {
	content, err := s.repo.GetContent(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	encoded := huffman.Encode(content)
	return &HuffmanResponse{
		DocumentID:  id,
		HuffmanCode: encoded,
		EncodedBits: len(encoded),
	}, nil
}

func (s *Service) trackFailure(ctx context.Context, docID string, contentLen int, start time.Time) {
	// A PENDING row may already be persisted; flip it to FAILED so it never
	// serves statistics. The request context may be cancelled by now, so the
	// update runs on a detached context.
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.MarkFailed(markCtx, docID); err != nil {
		s.logger.Warn("marking document failed", "doc_id", docID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.DocumentsAnalyzed.WithLabelValues("failed").Inc()
	}
	if s.collector == nil {
		return
	}
	s.collector.Track(analytics.AnalysisEvent{
		Type:          analytics.EventAnalysisFailed,
		DocumentID:    docID,
		ContentLength: contentLen,
		ProcessingMs:  time.Since(start).Milliseconds(),
		Timestamp:     time.Now().UTC(),
		RequestID:     middleware.GetRequestID(ctx),
	})
}
