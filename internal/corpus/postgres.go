package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/avdeevsm/tfidf-analyzer/pkg/postgres"
	"github.com/lib/pq"
)

// PostgresStore persists corpus statistics in PostgreSQL. Document counts
// come from the corpus_documents registration log; per-term document
// frequencies live in term_document_frequency. Both grow monotonically:
// deleting a document row never shrinks them, so df <= N always holds and
// IDF stays non-negative.
type PostgresStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewPostgresStore creates a corpus store backed by the given database.
func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: slog.Default().With("component", "corpus-store"),
	}
}

// Snapshot reads the document count and the document frequency of each term
// in a single transaction, so the statistics cannot shift mid-analysis.
func (s *PostgresStore) Snapshot(ctx context.Context, terms []string) (Stats, error) {
	stats := Stats{DocumentFrequency: make(map[string]int, len(terms))}
	for _, term := range terms {
		stats.DocumentFrequency[term] = 0
	}

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM corpus_documents`,
		).Scan(&stats.DocumentCount); err != nil {
			return fmt.Errorf("counting registered documents: %w", err)
		}
		if len(terms) == 0 {
			return nil
		}
		rows, err := tx.QueryContext(ctx,
			`SELECT term, doc_count FROM term_document_frequency WHERE term = ANY($1)`,
			pq.Array(terms),
		)
		if err != nil {
			return fmt.Errorf("querying document frequencies: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var term string
			var count int
			if err := rows.Scan(&term, &count); err != nil {
				return fmt.Errorf("scanning document frequency row: %w", err)
			}
			stats.DocumentFrequency[term] = count
		}
		return rows.Err()
	})
	if err != nil {
		return Stats{}, fmt.Errorf("reading corpus snapshot: %w", err)
	}
	return stats, nil
}

// RegisterDocument appends the document to the registration log, flips its
// status to ANALYZED, and increments the document frequency of each distinct
// term, all in one transaction. The log's primary key guards against double
// registration: if the document is already logged nothing else happens.
func (s *PostgresStore) RegisterDocument(ctx context.Context, docID string, distinctTerms []string) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO corpus_documents (document_id) VALUES ($1)
			 ON CONFLICT (document_id) DO NOTHING`,
			docID,
		)
		if err != nil {
			return fmt.Errorf("logging registration: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking registration result: %w", err)
		}
		if rows == 0 {
			s.logger.Warn("document already registered, skipping", "doc_id", docID)
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET status = 'ANALYZED', analyzed_at = NOW() WHERE id = $1`,
			docID,
		); err != nil {
			return fmt.Errorf("marking document analyzed: %w", err)
		}
		for _, term := range distinctTerms {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO term_document_frequency (term, doc_count) VALUES ($1, 1)
				 ON CONFLICT (term) DO UPDATE SET doc_count = term_document_frequency.doc_count + 1`,
				term,
			); err != nil {
				return fmt.Errorf("incrementing document frequency for %q: %w", term, err)
			}
		}
		s.logger.Debug("document registered in corpus",
			"doc_id", docID,
			"distinct_terms", len(distinctTerms),
		)
		return nil
	})
}
