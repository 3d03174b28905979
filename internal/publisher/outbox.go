package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/metrics"
)

const (
	// QueueLimit caps the events held between flushes.
	QueueLimit = 1024
	batchSize  = 100
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Outbox buffers admin events in memory and flushes them to Kafka on a tick.
// A failed flush keeps the batch queued for the next tick.
type Outbox struct {
	writer  MessageWriter
	tick    time.Duration
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	queue []domain.Event
}

func NewOutbox(brokers []string, topic string, tick time.Duration, logger *slog.Logger) *Outbox {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newOutbox(w, tick, logger)
}

func newOutbox(w MessageWriter, tick time.Duration, logger *slog.Logger) *Outbox {
	if tick <= 0 {
		tick = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{
		writer:  w,
		tick:    tick,
		timeout: 5 * time.Second,
		logger:  logger.With("component", "outbox"),
	}
}

// Enqueue never blocks. When the queue is full the event is dropped.
func (o *Outbox) Enqueue(e domain.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) >= QueueLimit {
		o.logger.Warn("outbox full, dropping event", "event_id", e.ID, "event_type", string(e.Type))
		metrics.RecordOutboxPublish(false, 1)
		return
	}
	o.queue = append(o.queue, e)
	metrics.SetOutboxDepth(len(o.queue))
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *Outbox) Run(ctx context.Context) {
	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			o.flush(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close makes a last flush attempt and closes the writer.
func (o *Outbox) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	o.flush(ctx)
	return o.writer.Close()
}

func (o *Outbox) flush(ctx context.Context) {
	o.mu.Lock()
	n := min(len(o.queue), batchSize)
	batch := append([]domain.Event(nil), o.queue[:n]...)
	o.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(batch))
	for _, e := range batch {
		msg, err := toMessage(e)
		if err != nil {
			o.logger.Error("failed to encode event", "event_id", e.ID, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}

	if len(msgs) > 0 {
		writeCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		if err := o.writer.WriteMessages(writeCtx, msgs...); err != nil {
			o.logger.Error("failed to publish events", "count", len(msgs), "error", err)
			metrics.RecordOutboxPublish(false, len(msgs))
			return
		}
		metrics.RecordOutboxPublish(true, len(msgs))
	}

	o.mu.Lock()
	o.queue = o.queue[n:]
	metrics.SetOutboxDepth(len(o.queue))
	o.mu.Unlock()
}

func toMessage(e domain.Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.Key), // aggregate id for ordering
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
		},
		Time: e.OccurredAt,
	}, nil
}
