package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes usage summaries. Summaries are periodic and
// small, so acks from all replicas are affordable.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Summary aggregates one reporting window of the recent-call log.
type Summary struct {
	Window       int64  `json:"window_unix_nano"`
	Calls        uint64 `json:"calls"`
	Bytes        uint64 `json:"bytes"`
	Errors       uint64 `json:"errors"`
	MaxNanos     int64  `json:"max_latency_nanos"`
	Revision     string `json:"settings_revision"`
	DrainedLists int    `json:"drained_lists"`
}

// SendSummary publishes one window keyed by its timestamp.
func (p *Producer) SendSummary(ctx context.Context, s Summary) error {
	value, err := json.Marshal(s)
	if err != nil {
		return err
	}
	key := []byte(time.Unix(0, s.Window).UTC().Format(time.RFC3339Nano))
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// Send publishes a raw message for ad-hoc events.
func (p *Producer) Send(
	ctx context.Context,
	key []byte,
	value []byte,
) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
