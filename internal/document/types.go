// Package document defines the document upload and analysis pipeline: input
// validation, TF-IDF analysis, persistence of documents and their ranked
// word statistics, and corpus registration.
package document

import (
	"time"

	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/ranker"
)

// Document is an uploaded text file's stored metadata. Immutable after
// creation except for the status transition performed by corpus
// registration.
type Document struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Filename    string     `json:"filename"`
	ContentHash string     `json:"content_hash"`
	ContentSize int        `json:"content_size"`
	TotalTokens int        `json:"total_tokens"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	AnalyzedAt  *time.Time `json:"analyzed_at,omitempty"`
}

// Document status values. A document is PENDING between insertion and
// corpus registration, then ANALYZED; FAILED documents never joined the
// corpus.
const (
	StatusPending  = "PENDING"
	StatusAnalyzed = "ANALYZED"
	StatusFailed   = "FAILED"
)

// AnalysisResponse is returned to the caller after an upload completes.
type AnalysisResponse struct {
	Document    Document           `json:"document"`
	Words       []ranker.WordScore `json:"words"`
	TotalTokens int                `json:"total_tokens"`
}

// StatisticsResponse is the stored ranked word table of one document.
type StatisticsResponse struct {
	DocumentID string             `json:"document_id"`
	Words      []ranker.WordScore `json:"words"`
}

// HuffmanResponse carries the Huffman-encoded document content.
type HuffmanResponse struct {
	DocumentID  string `json:"document_id"`
	HuffmanCode string `json:"huffman_code"`
	EncodedBits int    `json:"encoded_bits"`
}
