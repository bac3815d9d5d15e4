package collection

import (
	"time"

	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer/ranker"
)

// Collection groups documents for collection-scoped statistics.
type Collection struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"-"`
	Name          string    `json:"name"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatisticsResponse is the collection-scoped TF-IDF table. The collection
// itself acts as the corpus: document frequencies are counted within the
// collection only.
type StatisticsResponse struct {
	CollectionID  string             `json:"collection_id"`
	DocumentCount int                `json:"document_count"`
	TotalTokens   int                `json:"total_tokens"`
	Words         []ranker.WordScore `json:"words"`
}
