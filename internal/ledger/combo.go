package ledger

import (
	"context"

	"pulse_ledger/internal/domain"
)

func comboReady(ctx context.Context, tx Tx, account domain.Account, day int64) (bool, error) {
	done, err := tx.CompletedQuests(ctx, account, day)
	if err != nil {
		return false, err
	}
	return done.HasAll(domain.ComboQuests...), nil
}

// ClaimDailyCombo pays domain.ComboBonus once per (account, day) after every
// combo quest was completed that day.
func (e *Engine) ClaimDailyCombo(ctx context.Context, caller domain.Account) (Receipt, error) {
	var receipt Receipt
	err := e.write(ctx, "claim_daily_combo", caller, func(c *call) error {
		if c.gate.Paused {
			return ErrPaused
		}
		ready, err := comboReady(c.ctx, c.tx, caller, c.day)
		if err != nil {
			return err
		}
		if !ready {
			return ErrComboUnavailable
		}
		claimed, err := c.tx.ComboClaimed(c.ctx, caller, c.day)
		if err != nil {
			return err
		}
		if claimed {
			return ErrComboAlreadyClaimed
		}

		profile, err := c.tx.Profile(c.ctx, caller)
		if err != nil {
			return err
		}
		if !profile.Exists {
			return ErrUserNotFound
		}
		stats, err := c.tx.Stats(c.ctx)
		if err != nil {
			return err
		}

		profile.TotalPoints += domain.ComboBonus
		stats.TotalPointsDistributed += domain.ComboBonus

		if err := c.tx.PutProfile(c.ctx, profile); err != nil {
			return err
		}
		if err := c.tx.PutStats(c.ctx, stats); err != nil {
			return err
		}
		if err := c.tx.MarkComboClaimed(c.ctx, caller, c.day); err != nil {
			return err
		}
		c.emit(domain.EventComboActivated, caller, 0, domain.ComboBonus, nil)

		receipt = Receipt{Points: domain.ComboBonus, Day: c.day}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func (e *Engine) IsComboAvailable(ctx context.Context, account domain.Account) (bool, error) {
	day := e.CurrentDay()
	var available bool
	err := e.store.View(ctx, func(ctx context.Context, tx Tx) error {
		ready, err := comboReady(ctx, tx, account, day)
		if err != nil || !ready {
			return err
		}
		claimed, err := tx.ComboClaimed(ctx, account, day)
		if err != nil {
			return err
		}
		available = !claimed
		return nil
	})
	return available, err
}
