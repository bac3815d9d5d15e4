package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/avdeevsm/tfidf-analyzer/pkg/kafka"
	"github.com/avdeevsm/tfidf-analyzer/pkg/resilience"
)

// Collector buffers analysis events and publishes them to Kafka without
// blocking the upload path. Events are dropped when the buffer is full.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan AnalysisEvent
	logger   *slog.Logger
	done     chan struct{}
}

// NewCollector creates a Collector with the given buffer size.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan AnalysisEvent, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop. It drains buffered events on ctx
// cancellation before returning.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event, dropping it if the buffer is full.
func (c *Collector) Track(event AnalysisEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the publish loop to finish.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event AnalysisEvent) {
	err := resilience.Retry(ctx, "publish-analysis-event", resilience.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
	}, func() error {
		return c.producer.Publish(ctx, kafka.Event{
			Key:   string(event.Type),
			Value: event,
		})
	})
	if err != nil {
		c.logger.Error("failed to publish analysis event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
