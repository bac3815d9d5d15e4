// Package corpus tracks document-frequency statistics across all analyzed
// documents. The analyzer reads a consistent snapshot of these statistics to
// compute IDF values; registration of a new document's contribution happens
// separately, after analysis completes, so a document never counts toward
// its own IDF.
package corpus

import "context"

// Stats is a consistent snapshot of corpus statistics at analysis time.
type Stats struct {
	// DocumentCount is the total number of registered documents.
	DocumentCount int
	// DocumentFrequency maps each requested term to the number of
	// registered documents containing it at least once. Terms never seen
	// by the corpus map to 0.
	DocumentFrequency map[string]int
}

// Store is the corpus statistics collaborator. Implementations must
// guarantee that Snapshot reflects a single consistent state (no term's
// document frequency may exceed DocumentCount) and that RegisterDocument is
// atomic and at-most-once per document ID.
type Store interface {
	// Snapshot returns the current document count and the document
	// frequency of each requested term in one consistent read.
	Snapshot(ctx context.Context, terms []string) (Stats, error)

	// RegisterDocument records that the document with the given ID
	// contains the given distinct terms, incrementing each term's document
	// frequency by exactly one and the document count by one. Registering
	// the same document ID twice is a no-op.
	RegisterDocument(ctx context.Context, docID string, distinctTerms []string) error
}
