package ledger

import (
	"context"
	"sync"
	"time"

	"pulse_ledger/internal/domain"
)

type dayKey struct {
	account domain.Account
	day     int64
}

type nudgeKey struct {
	account domain.Account
	target  domain.Account
	day     int64
}

type memoryState struct {
	gate        *domain.GateState
	stats       domain.GlobalStats
	profiles    map[domain.Account]domain.UserProfile
	completed   map[dayKey]domain.QuestSet
	combos      map[dayKey]struct{}
	nudges      map[nudgeKey]struct{}
	messages    map[domain.Account][]domain.Message
	predictions map[dayKey]domain.Prediction
}

// MemoryStore keeps ledger state in process memory. Writes are staged in a
// transaction buffer and applied to the base state only on commit.
type MemoryStore struct {
	mu    sync.RWMutex
	state memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		profiles:    make(map[domain.Account]domain.UserProfile),
		completed:   make(map[dayKey]domain.QuestSet),
		combos:      make(map[dayKey]struct{}),
		nudges:      make(map[nudgeKey]struct{}),
		messages:    make(map[domain.Account][]domain.Message),
		predictions: make(map[dayKey]domain.Prediction),
	}}
}

func (s *MemoryStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newMemoryTx(&s.state, true)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, newMemoryTx(&s.state, false))
}

type memoryTx struct {
	base     *memoryState
	writable bool

	gate        *domain.GateState
	stats       *domain.GlobalStats
	profiles    map[domain.Account]domain.UserProfile
	completed   map[dayKey]domain.QuestSet
	combos      map[dayKey]struct{}
	nudges      map[nudgeKey]struct{}
	messages    map[domain.Account][]domain.Message
	predictions map[dayKey]domain.Prediction
}

func newMemoryTx(base *memoryState, writable bool) *memoryTx {
	return &memoryTx{
		base:        base,
		writable:    writable,
		profiles:    make(map[domain.Account]domain.UserProfile),
		completed:   make(map[dayKey]domain.QuestSet),
		combos:      make(map[dayKey]struct{}),
		nudges:      make(map[nudgeKey]struct{}),
		messages:    make(map[domain.Account][]domain.Message),
		predictions: make(map[dayKey]domain.Prediction),
	}
}

func (t *memoryTx) commit() {
	b := t.base
	if t.gate != nil {
		g := *t.gate
		b.gate = &g
	}
	if t.stats != nil {
		b.stats = *t.stats
	}
	for k, v := range t.profiles {
		b.profiles[k] = v
	}
	for k, v := range t.completed {
		b.completed[k] = v
	}
	for k := range t.combos {
		b.combos[k] = struct{}{}
	}
	for k := range t.nudges {
		b.nudges[k] = struct{}{}
	}
	for k, msgs := range t.messages {
		b.messages[k] = append(b.messages[k], msgs...)
	}
	for k, v := range t.predictions {
		b.predictions[k] = v
	}
}

func (t *memoryTx) Gate(context.Context) (domain.GateState, bool, error) {
	if t.gate != nil {
		return *t.gate, true, nil
	}
	if t.base.gate != nil {
		return *t.base.gate, true, nil
	}
	return domain.GateState{}, false, nil
}

func (t *memoryTx) PutGate(_ context.Context, g domain.GateState) error {
	if !t.writable {
		return ErrReadOnly
	}
	t.gate = &g
	return nil
}

func (t *memoryTx) Stats(context.Context) (domain.GlobalStats, error) {
	if t.stats != nil {
		return *t.stats, nil
	}
	return t.base.stats, nil
}

func (t *memoryTx) PutStats(_ context.Context, s domain.GlobalStats) error {
	if !t.writable {
		return ErrReadOnly
	}
	t.stats = &s
	return nil
}

func (t *memoryTx) Profile(_ context.Context, account domain.Account) (domain.UserProfile, error) {
	if p, ok := t.profiles[account]; ok {
		return p, nil
	}
	if p, ok := t.base.profiles[account]; ok {
		return p, nil
	}
	return domain.UserProfile{Account: account}, nil
}

func (t *memoryTx) PutProfile(_ context.Context, p domain.UserProfile) error {
	if !t.writable {
		return ErrReadOnly
	}
	p.Exists = true
	t.profiles[p.Account] = p
	return nil
}

func (t *memoryTx) CompletedQuests(_ context.Context, account domain.Account, day int64) (domain.QuestSet, error) {
	k := dayKey{account, day}
	if s, ok := t.completed[k]; ok {
		return s, nil
	}
	return t.base.completed[k], nil
}

func (t *memoryTx) MarkCompleted(ctx context.Context, account domain.Account, day int64, id domain.QuestID) error {
	if !t.writable {
		return ErrReadOnly
	}
	s, err := t.CompletedQuests(ctx, account, day)
	if err != nil {
		return err
	}
	s.Add(id)
	t.completed[dayKey{account, day}] = s
	return nil
}

func (t *memoryTx) ComboClaimed(_ context.Context, account domain.Account, day int64) (bool, error) {
	k := dayKey{account, day}
	if _, ok := t.combos[k]; ok {
		return true, nil
	}
	_, ok := t.base.combos[k]
	return ok, nil
}

func (t *memoryTx) MarkComboClaimed(_ context.Context, account domain.Account, day int64) error {
	if !t.writable {
		return ErrReadOnly
	}
	t.combos[dayKey{account, day}] = struct{}{}
	return nil
}

func (t *memoryTx) Nudged(_ context.Context, account, target domain.Account, day int64) (bool, error) {
	k := nudgeKey{account, target, day}
	if _, ok := t.nudges[k]; ok {
		return true, nil
	}
	_, ok := t.base.nudges[k]
	return ok, nil
}

func (t *memoryTx) PutNudge(_ context.Context, account, target domain.Account, day int64) error {
	if !t.writable {
		return ErrReadOnly
	}
	t.nudges[nudgeKey{account, target, day}] = struct{}{}
	return nil
}

func (t *memoryTx) AppendMessage(_ context.Context, account domain.Account, content string, at time.Time) (int, error) {
	if !t.writable {
		return 0, ErrReadOnly
	}
	idx := len(t.base.messages[account]) + len(t.messages[account])
	t.messages[account] = append(t.messages[account], domain.Message{
		Index:     idx,
		Content:   content,
		Timestamp: at,
	})
	return idx, nil
}

func (t *memoryTx) Message(_ context.Context, account domain.Account, index int) (domain.Message, bool, error) {
	if index < 0 {
		return domain.Message{}, false, nil
	}
	base := t.base.messages[account]
	if index < len(base) {
		return base[index], true, nil
	}
	staged := t.messages[account]
	if i := index - len(base); i < len(staged) {
		return staged[i], true, nil
	}
	return domain.Message{}, false, nil
}

func (t *memoryTx) MessageCount(_ context.Context, account domain.Account) (int, error) {
	return len(t.base.messages[account]) + len(t.messages[account]), nil
}

func (t *memoryTx) Prediction(_ context.Context, account domain.Account, day int64) (domain.Prediction, bool, error) {
	k := dayKey{account, day}
	if p, ok := t.predictions[k]; ok {
		return p, true, nil
	}
	p, ok := t.base.predictions[k]
	return p, ok, nil
}

func (t *memoryTx) PutPrediction(_ context.Context, account domain.Account, p domain.Prediction) error {
	if !t.writable {
		return ErrReadOnly
	}
	t.predictions[dayKey{account, p.Day}] = p
	return nil
}
