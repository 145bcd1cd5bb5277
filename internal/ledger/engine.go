package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/logger"

	"github.com/google/uuid"
)

// Engine applies the ledger rules on top of a Store. All writes of one
// engine are serialized and each commits atomically or not at all.
type Engine struct {
	network  domain.Network
	store    Store
	clock    Clock
	notifier Notifier
	log      *slog.Logger

	mu sync.Mutex
}

type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(network domain.Network, store Store, opts ...Option) *Engine {
	e := &Engine{
		network:  network,
		store:    store,
		clock:    SystemClock{},
		notifier: nopNotifier{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.With("component", "ledger")
	}
	e.log = e.log.With("network", string(network))
	return e
}

func (e *Engine) Network() domain.Network { return e.network }

func (e *Engine) CurrentDay() int64 { return DayOf(e.clock.Now()) }

// Genesis records owner as the ledger owner unless the store already has
// one, in which case the stored owner wins.
func (e *Engine) Genesis(ctx context.Context, owner domain.Account) error {
	if owner.IsZero() {
		return ErrInvalidOwner
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		g, ok, err := tx.Gate(ctx)
		if err != nil {
			return err
		}
		if ok {
			if g.Owner != owner {
				e.log.Warn("configured owner differs from stored owner, keeping stored",
					"stored", g.Owner, "configured", owner)
			}
			return nil
		}
		e.log.Info("ledger genesis", "owner", owner)
		if err := tx.PutGate(ctx, domain.GateState{Owner: owner}); err != nil {
			return err
		}
		return tx.PutStats(ctx, domain.GlobalStats{})
	})
}

// call is the per-attempt state of one write.
type call struct {
	ctx     context.Context
	tx      Tx
	network domain.Network
	caller  domain.Account
	now     time.Time
	day     int64
	gate    domain.GateState
	events  []domain.Event
}

func (c *call) emit(kind domain.EventKind, account domain.Account, quest domain.QuestID, points int64, data map[string]any) {
	c.events = append(c.events, domain.Event{
		ID:        uuid.NewString(),
		Network:   c.network,
		Kind:      kind,
		Account:   account,
		Day:       c.day,
		QuestID:   quest,
		Points:    points,
		Data:      data,
		CreatedAt: c.now,
	})
}

// write runs fn inside one store transaction and publishes the events of
// the attempt that committed.
func (e *Engine) write(ctx context.Context, op string, caller domain.Account, fn func(c *call) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	var committed *call
	err := e.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		gate, ok, err := tx.Gate(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}
		if caller.IsZero() && !gate.Paused {
			return ErrInvalidAccount
		}
		c := &call{
			ctx:     ctx,
			tx:      tx,
			network: e.network,
			caller:  caller,
			now:     now,
			day:     DayOf(now),
			gate:    gate,
		}
		if err := fn(c); err != nil {
			return err
		}
		committed = c
		return nil
	})
	if err != nil {
		if le, ok := AsError(err); ok {
			e.log.Debug("call rejected", "op", op, "account", caller, "reason", le.Reason)
		} else if !errors.Is(err, context.Canceled) {
			e.log.Error("call failed", "op", op, "account", caller, "error", err)
		}
		return err
	}

	e.log.Info("call committed", "op", op, "account", caller, "day", committed.day, "events", len(committed.events))
	if len(committed.events) > 0 {
		e.notifier.Notify(ctx, committed.events)
	}
	return nil
}
