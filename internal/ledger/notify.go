package ledger

import (
	"context"

	"pulse_ledger/internal/domain"
)

// Notifier receives the events of a committed call, in order.
// It is invoked while writes are serialized, so it should not block for long.
type Notifier interface {
	Notify(ctx context.Context, events []domain.Event)
}

type NotifierFunc func(ctx context.Context, events []domain.Event)

func (f NotifierFunc) Notify(ctx context.Context, events []domain.Event) { f(ctx, events) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, []domain.Event) {}
