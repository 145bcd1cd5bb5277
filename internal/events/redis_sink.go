package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"pulse_ledger/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisSink publishes every event as JSON on "<prefix>:<network>".
type RedisSink struct {
	client *redis.Client
	prefix string
	log    *slog.Logger
}

func NewRedisSink(client *redis.Client, prefix string, l *slog.Logger) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, log: l}
}

func (s *RedisSink) Channel(n domain.Network) string {
	return s.prefix + ":" + string(n)
}

func (s *RedisSink) Notify(ctx context.Context, events []domain.Event) {
	pipe := s.client.Pipeline()
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			s.log.Error("marshal event", "id", e.ID, "error", err)
			continue
		}
		pipe.Publish(ctx, s.Channel(e.Network), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("publish events to redis", "count", len(events), "error", err)
	}
}
