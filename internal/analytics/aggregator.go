package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/avdeevsm/tfidf-analyzer/pkg/kafka"
)

// Report is the aggregated processing-metrics view served by the API:
// how many files were processed, how long processing took, and how large
// the inputs were.
type Report struct {
	FilesProcessed      int64    `json:"files_processed"`
	FilesFailed         int64    `json:"files_failed"`
	MinTimeProcessed    float64  `json:"min_time_processed"`
	AvgTimeProcessed    float64  `json:"avg_time_processed"`
	MaxTimeProcessed    float64  `json:"max_time_processed"`
	LatestTimeProcessed *float64 `json:"latest_file_processed_timestamp"`
	MaxContentLength    int      `json:"max_content_length"`
	AvgContentLength    float64  `json:"avg_content_length"`
}

// Aggregator consumes analysis events from Kafka and maintains the running
// processing metrics.
type Aggregator struct {
	mu sync.RWMutex

	processed       int64
	failed          int64
	minTimeMs       int64
	maxTimeMs       int64
	totalTimeMs     int64
	latestTimeMs    int64
	hasLatest       bool
	maxContentLen   int
	totalContentLen int64

	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator; attach its consumer via SetConsumer
// or pass one directly.
func NewAggregator(consumer *kafka.Consumer) *Aggregator {
	return &Aggregator{
		consumer: consumer,
		logger:   slog.Default().With("component", "analytics-aggregator"),
	}
}

// SetConsumer attaches the Kafka consumer the aggregator reads from. It
// exists because the consumer's handler needs the aggregator first.
func (a *Aggregator) SetConsumer(consumer *kafka.Consumer) {
	a.consumer = consumer
}

// Start enters the consume loop until ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) error {
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

// HandleEvent returns a Kafka MessageHandler recording each analysis event
// into agg.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[AnalysisEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode analysis event", "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Record folds one event into the running metrics.
func (a *Aggregator) Record(event AnalysisEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if event.Type == EventAnalysisFailed {
		a.failed++
		return
	}

	if a.processed == 0 || event.ProcessingMs < a.minTimeMs {
		a.minTimeMs = event.ProcessingMs
	}
	if event.ProcessingMs > a.maxTimeMs {
		a.maxTimeMs = event.ProcessingMs
	}
	a.totalTimeMs += event.ProcessingMs
	a.latestTimeMs = event.ProcessingMs
	a.hasLatest = true

	if event.ContentLength > a.maxContentLen {
		a.maxContentLen = event.ContentLength
	}
	a.totalContentLen += int64(event.ContentLength)
	a.processed++
}

// Stats returns the current aggregated report. Times are in seconds.
func (a *Aggregator) Stats() Report {
	a.mu.RLock()
	defer a.mu.RUnlock()

	report := Report{
		FilesProcessed:   a.processed,
		FilesFailed:      a.failed,
		MaxContentLength: a.maxContentLen,
	}
	if a.processed > 0 {
		report.MinTimeProcessed = float64(a.minTimeMs) / 1000
		report.MaxTimeProcessed = float64(a.maxTimeMs) / 1000
		report.AvgTimeProcessed = float64(a.totalTimeMs) / float64(a.processed) / 1000
		report.AvgContentLength = float64(a.totalContentLen) / float64(a.processed)
	}
	if a.hasLatest {
		latest := float64(a.latestTimeMs) / 1000
		report.LatestTimeProcessed = &latest
	}
	return report
}
