package document

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/ranker"
	apperrors "github.com/avdeevsm/tfidf-analyzer/pkg/errors"
	"github.com/avdeevsm/tfidf-analyzer/pkg/postgres"
)

// Repository persists documents, their raw content, and their per-word
// analysis results in PostgreSQL.
type Repository struct {
	db *postgres.Client
}

// NewRepository creates a document repository over the given database.
func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

// SaveAnalysis inserts the document row, its content, and the ranked word
// statistics in one transaction. The document starts in PENDING status;
// corpus registration flips it to ANALYZED afterwards.
func (r *Repository) SaveAnalysis(ctx context.Context, doc *Document, content string, words []ranker.WordScore) error {
	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO documents (id, owner_id, filename, content, content_hash, content_size, total_tokens, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING created_at`,
			doc.ID, doc.OwnerID, doc.Filename, content, doc.ContentHash,
			doc.ContentSize, doc.TotalTokens, doc.Status,
		).Scan(&doc.CreatedAt); err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		for i, w := range words {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO analysis_results (document_id, position, word, tf, idf) VALUES ($1, $2, $3, $4, $5)`,
				doc.ID, i, w.Word, w.TF, w.IDF,
			); err != nil {
				return fmt.Errorf("inserting analysis result for %q: %w", w.Word, err)
			}
		}
		return nil
	})
}

// Get returns one document's metadata, scoped to its owner.
func (r *Repository) Get(ctx context.Context, id, ownerID string) (*Document, error) {
	var doc Document
	var analyzedAt sql.NullTime
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT id, owner_id, filename, content_hash, content_size, total_tokens, status, created_at, analyzed_at
		 FROM documents WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.ContentHash, &doc.ContentSize,
		&doc.TotalTokens, &doc.Status, &doc.CreatedAt, &analyzedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying document: %w", err)
	}
	if analyzedAt.Valid {
		doc.AnalyzedAt = &analyzedAt.Time
	}
	return &doc, nil
}

// GetContent returns the stored raw text of one document.
func (r *Repository) GetContent(ctx context.Context, id, ownerID string) (string, error) {
	var content string
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT content FROM documents WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&content)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrDocumentNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying document content: %w", err)
	}
	return content, nil
}

// List returns a page of the owner's documents, newest first.
func (r *Repository) List(ctx context.Context, ownerID string, limit, offset int) ([]Document, error) {
	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT id, owner_id, filename, content_hash, content_size, total_tokens, status, created_at, analyzed_at
		 FROM documents WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		var analyzedAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.ContentHash,
			&doc.ContentSize, &doc.TotalTokens, &doc.Status, &doc.CreatedAt, &analyzedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		if analyzedAt.Valid {
			doc.AnalyzedAt = &analyzedAt.Time
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetStatistics returns the stored ranked word table for one document,
// sorted by IDF descending as it was at analysis time. Only ANALYZED
// documents have statistics; a document that never joined the corpus is
// reported as not analyzed.
func (r *Repository) GetStatistics(ctx context.Context, id, ownerID string) ([]ranker.WordScore, error) {
	doc, err := r.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if doc.Status != StatusAnalyzed {
		return nil, apperrors.ErrDocumentNotAnalyzed
	}
	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT word, tf, idf FROM analysis_results WHERE document_id = $1 ORDER BY idf DESC, position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying analysis results: %w", err)
	}
	defer rows.Close()

	words := make([]ranker.WordScore, 0)
	for rows.Next() {
		var w ranker.WordScore
		if err := rows.Scan(&w.Word, &w.TF, &w.IDF); err != nil {
			return nil, fmt.Errorf("scanning analysis result row: %w", err)
		}
		w.TFIDF = math.Round(w.TF*w.IDF*10000) / 10000
		words = append(words, w)
	}
	return words, rows.Err()
}

// MarkFailed records that a document's corpus registration did not happen.
// A document that already reached ANALYZED is left alone, and ids without a
// persisted row are a no-op.
func (r *Repository) MarkFailed(ctx context.Context, id string) error {
	if _, err := r.db.DB.ExecContext(ctx,
		`UPDATE documents SET status = 'FAILED' WHERE id = $1 AND status = 'PENDING'`, id,
	); err != nil {
		return fmt.Errorf("marking document failed: %w", err)
	}
	return nil
}

// Delete removes a document and its analysis results. The corpus keeps the
// document's contribution: document-frequency counts grow monotonically.
func (r *Repository) Delete(ctx context.Context, id, ownerID string) error {
	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM analysis_results WHERE document_id = $1`, id,
		); err != nil {
			return fmt.Errorf("deleting analysis results: %w", err)
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM documents WHERE id = $1 AND owner_id = $2`, id, ownerID,
		)
		if err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return apperrors.ErrDocumentNotFound
		}
		return nil
	})
}
