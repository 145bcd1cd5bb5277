package events

import (
	"context"
	"log/slog"

	"pulse_ledger/internal/domain"
)

type LogSink struct {
	log *slog.Logger
}

func NewLogSink(l *slog.Logger) *LogSink {
	return &LogSink{log: l}
}

func (s *LogSink) Notify(ctx context.Context, events []domain.Event) {
	for _, e := range events {
		s.log.InfoContext(ctx, "ledger event",
			"id", e.ID,
			"network", e.Network,
			"kind", e.Kind,
			"account", e.Account,
			"day", e.Day,
			"quest_id", uint8(e.QuestID),
			"points", e.Points,
		)
	}
}
