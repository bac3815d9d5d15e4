package analytics

import "time"

type EventType string

const (
	EventAnalysisCompleted EventType = "analysis_completed"
	EventAnalysisFailed    EventType = "analysis_failed"
)

// AnalysisEvent records one document analysis attempt: how long it took,
// how large the input was, and how many tokens and ranked terms it produced.
type AnalysisEvent struct {
	Type          EventType `json:"type"`
	DocumentID    string    `json:"document_id"`
	ContentLength int       `json:"content_length"`
	TokenCount    int       `json:"token_count"`
	TermsReturned int       `json:"terms_returned"`
	ProcessingMs  int64     `json:"processing_ms"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
}
