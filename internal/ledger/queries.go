package ledger

import (
	"context"

	"pulse_ledger/internal/domain"
)

func (e *Engine) UserProfile(ctx context.Context, account domain.Account) (domain.UserProfile, error) {
	var p domain.UserProfile
	err := e.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		p, err = tx.Profile(ctx, account)
		return err
	})
	return p, err
}

func (e *Engine) GlobalStats(ctx context.Context) (domain.GlobalStats, error) {
	var s domain.GlobalStats
	err := e.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		s, err = tx.Stats(ctx)
		return err
	})
	return s, err
}

// HasCompletedQuestToday is always false for reserved quest ids.
func (e *Engine) HasCompletedQuestToday(ctx context.Context, account domain.Account, id domain.QuestID) (bool, error) {
	if !id.Valid() {
		return false, ErrInvalidQuestID
	}
	set, err := e.CompletedQuestsToday(ctx, account)
	if err != nil {
		return false, err
	}
	return set.Has(id), nil
}

func (e *Engine) CompletedQuestsToday(ctx context.Context, account domain.Account) (domain.QuestSet, error) {
	day := e.CurrentDay()
	var set domain.QuestSet
	err := e.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		set, err = tx.CompletedQuests(ctx, account, day)
		return err
	})
	return set, err
}

func (e *Engine) UserMessage(ctx context.Context, account domain.Account, index int) (domain.Message, error) {
	var (
		m  domain.Message
		ok bool
	)
	err := e.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		m, ok, err = tx.Message(ctx, account, index)
		return err
	})
	if err != nil {
		return domain.Message{}, err
	}
	if !ok {
		return domain.Message{}, ErrMessageNotFound
	}
	return m, nil
}

func (e *Engine) MessageCount(ctx context.Context, account domain.Account) (int, error) {
	var n int
	err := e.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		n, err = tx.MessageCount(ctx, account)
		return err
	})
	return n, err
}

func (e *Engine) PredictionToday(ctx context.Context, account domain.Account) (domain.Prediction, bool, error) {
	day := e.CurrentDay()
	var (
		p  domain.Prediction
		ok bool
	)
	err := e.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		p, ok, err = tx.Prediction(ctx, account, day)
		return err
	})
	return p, ok, err
}

func (e *Engine) Gate(ctx context.Context) (domain.GateState, error) {
	var (
		g  domain.GateState
		ok bool
	)
	err := e.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		g, ok, err = tx.Gate(ctx)
		return err
	})
	if err != nil {
		return domain.GateState{}, err
	}
	if !ok {
		return domain.GateState{}, ErrNotInitialized
	}
	return g, nil
}
