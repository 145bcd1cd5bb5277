package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pulse_ledger/internal/domain"

	"github.com/segmentio/kafka-go"
)

// KafkaSink streams events to a topic keyed by account, so every account's
// events stay ordered within one partition.
type KafkaSink struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewKafkaSink(brokers []string, topic string, l *slog.Logger) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				l.Warn("kafka delivery failed", "count", len(messages), "error", err)
			}
		},
	}
	return &KafkaSink{writer: w, log: l}
}

func (s *KafkaSink) Notify(ctx context.Context, events []domain.Event) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			s.log.Error("marshal event", "id", e.ID, "error", err)
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(string(e.Network) + ":" + string(e.Account)),
			Value: payload,
			Time:  e.CreatedAt,
			Headers: []kafka.Header{
				{Key: "kind", Value: []byte(e.Kind)},
			},
		})
	}
	if len(msgs) == 0 {
		return
	}
	// Async writer: errors arrive through Completion.
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		s.log.Warn("queue events to kafka", "count", len(msgs), "error", err)
	}
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
