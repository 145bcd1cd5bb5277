package events

import (
	"context"
	"sync"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/ledger"
)

// Bus fans committed ledger events out to every registered sink in order.
type Bus struct {
	mu    sync.RWMutex
	sinks []ledger.Notifier
}

func NewBus(sinks ...ledger.Notifier) *Bus {
	return &Bus{sinks: sinks}
}

func (b *Bus) Subscribe(n ledger.Notifier) {
	b.mu.Lock()
	b.sinks = append(b.sinks, n)
	b.mu.Unlock()
}

func (b *Bus) Notify(ctx context.Context, events []domain.Event) {
	b.mu.RLock()
	sinks := b.sinks
	b.mu.RUnlock()
	for _, s := range sinks {
		s.Notify(ctx, events)
	}
}

var _ ledger.Notifier = (*Bus)(nil)
