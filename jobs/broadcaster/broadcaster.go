package broadcaster

import (
	"context"
	"log"
	"time"

	"github.com/IBM/sarama"

	"helix/infra/archive"
)

// Broadcaster drains the change-event outbox into Kafka. Delivery is
// at-least-once: an event is marked SENT before the publish and ACKED
// after, so a crash between the two replays it.
type Broadcaster struct {
	outbox   *archive.Store
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	outbox *archive.Store,
	brokers []string,
	topic string,
	interval time.Duration,
) (*Broadcaster, error) {

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	return &Broadcaster{
		outbox:   outbox,
		producer: producer,
		topic:    topic,
		interval: interval,
	}, nil
}

// ------------------------------------------------
// START LOOP
// ------------------------------------------------

func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				b.publishOnce()
			}
		}
	}()
}

// ------------------------------------------------
// PUBLISH LOGIC
// ------------------------------------------------

func (b *Broadcaster) publishOnce() {
	_ = b.outbox.ScanByState(archive.StateNew, func(seq uint64, rec archive.Record) error {

		if err := b.outbox.MarkSent(seq); err != nil {
			return nil
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(rec.EventID),
			Value: sarama.ByteEncoder(rec.Payload),
		}

		if _, _, err := b.producer.SendMessage(msg); err != nil {
			log.Printf("[broadcaster] publish seq=%d failed: %v", seq, err)
			return nil // stays SENT; the sweep below retries it
		}

		_ = b.outbox.MarkAcked(seq)
		return nil
	})

	// Re-deliver events stuck in SENT from a crashed or failed run.
	_ = b.outbox.ScanByState(archive.StateSent, func(seq uint64, rec archive.Record) error {
		if time.Since(time.Unix(0, rec.LastAttempt)) < 5*time.Second {
			return nil
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(rec.EventID),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			return nil
		}
		_ = b.outbox.MarkAcked(seq)
		return nil
	})
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
