package corpus

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used by unit tests and benchmarks.
// Statistics do not survive restarts.
type MemoryStore struct {
	mu         sync.RWMutex
	docCount   int
	docFreq    map[string]int
	registered map[string]struct{}
}

// NewMemoryStore creates an empty in-memory corpus store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docFreq:    make(map[string]int),
		registered: make(map[string]struct{}),
	}
}

// Snapshot returns the current statistics under a read lock, which gives the
// same consistency guarantee as the transactional Postgres read.
func (m *MemoryStore) Snapshot(ctx context.Context, terms []string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := Stats{
		DocumentCount:     m.docCount,
		DocumentFrequency: make(map[string]int, len(terms)),
	}
	for _, term := range terms {
		stats.DocumentFrequency[term] = m.docFreq[term]
	}
	return stats, nil
}

// RegisterDocument increments the document count and each distinct term's
// frequency exactly once per document ID.
func (m *MemoryStore) RegisterDocument(ctx context.Context, docID string, distinctTerms []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.registered[docID]; seen {
		return nil
	}
	m.registered[docID] = struct{}{}
	m.docCount++
	for _, term := range distinctTerms {
		m.docFreq[term]++
	}
	return nil
}
