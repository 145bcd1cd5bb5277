package ledger

import (
	"context"
	"strings"
	"unicode/utf8"

	"pulse_ledger/internal/domain"
)

// questRun carries the staged records of one quest attempt.
type questRun struct {
	*call
	profile   domain.UserProfile
	completed domain.QuestSet
	stats     domain.GlobalStats
	data      map[string]any
	receipt   Receipt
}

// quest describes one executable quest. Steps run in this order:
// precheck, repeat check, validate, profile requirement, apply.
type quest struct {
	id              domain.QuestID
	repeatErr       error
	requiresProfile bool
	precheck        func(r *questRun) error
	validate        func(r *questRun) error
	apply           func(r *questRun) error
}

func (e *Engine) complete(ctx context.Context, caller domain.Account, q quest) (Receipt, error) {
	var receipt Receipt
	err := e.write(ctx, q.id.String(), caller, func(c *call) error {
		if c.gate.Paused {
			return ErrPaused
		}

		r := &questRun{call: c}
		var err error
		if r.profile, err = c.tx.Profile(c.ctx, caller); err != nil {
			return err
		}
		if r.completed, err = c.tx.CompletedQuests(c.ctx, caller, c.day); err != nil {
			return err
		}

		if q.precheck != nil {
			if err := q.precheck(r); err != nil {
				return err
			}
		}
		if r.completed.Has(q.id) {
			return q.repeatErr
		}
		if q.validate != nil {
			if err := q.validate(r); err != nil {
				return err
			}
		}
		if q.requiresProfile && !r.profile.Exists {
			return ErrUserNotFound
		}

		if r.stats, err = c.tx.Stats(c.ctx); err != nil {
			return err
		}
		if !r.profile.Exists {
			r.profile = domain.NewUserProfile(caller, c.now)
			r.stats.TotalUsers++
			c.emit(domain.EventUserJoined, caller, 0, 0, nil)
		}

		if q.apply != nil {
			if err := q.apply(r); err != nil {
				return err
			}
		}

		points := q.id.Points()
		r.profile.TotalPoints += points
		r.stats.TotalPointsDistributed += points

		if err := c.tx.PutProfile(c.ctx, r.profile); err != nil {
			return err
		}
		if err := c.tx.MarkCompleted(c.ctx, caller, c.day, q.id); err != nil {
			return err
		}
		if err := c.tx.PutStats(c.ctx, r.stats); err != nil {
			return err
		}
		c.emit(domain.EventQuestCompleted, caller, q.id, points, r.data)

		r.receipt.QuestID = q.id
		r.receipt.Points = points
		r.receipt.Day = c.day
		receipt = r.receipt
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func (e *Engine) DailyCheckin(ctx context.Context, caller domain.Account) (Receipt, error) {
	return e.complete(ctx, caller, quest{
		id:        domain.QuestDailyCheckin,
		repeatErr: ErrAlreadyCheckedIn,
		validate: func(r *questRun) error {
			if r.profile.CheckedInOn(r.day) {
				return ErrAlreadyCheckedIn
			}
			return nil
		},
		apply: func(r *questRun) error {
			r.profile.ApplyCheckin(r.day)
			r.stats.TotalCheckins++
			r.emit(domain.EventStreakUpdated, r.caller, 0, 0, map[string]any{
				domain.DataCurrentStreak: r.profile.CurrentStreak,
				domain.DataLongestStreak: r.profile.LongestStreak,
			})
			return nil
		},
	})
}

// RelaySignal is only open to accounts that already have a profile.
func (e *Engine) RelaySignal(ctx context.Context, caller domain.Account) (Receipt, error) {
	return e.complete(ctx, caller, quest{
		id:              domain.QuestRelaySignal,
		repeatErr:       ErrQuestAlreadyCompleted,
		requiresProfile: true,
	})
}

func (e *Engine) UpdateAtmosphere(ctx context.Context, caller domain.Account, weatherCode int) (Receipt, error) {
	return e.complete(ctx, caller, quest{
		id:        domain.QuestUpdateAtmosphere,
		repeatErr: ErrQuestAlreadyCompleted,
		validate: func(r *questRun) error {
			if weatherCode < domain.MinWeatherCode || weatherCode > domain.MaxWeatherCode {
				return ErrInvalidWeatherCode
			}
			return nil
		},
		apply: func(r *questRun) error {
			r.data = map[string]any{domain.DataWeatherCode: weatherCode}
			return nil
		},
	})
}

// NudgeFriend checks the target before the once-per-day rule, so a repeat
// nudge of the same friend reports ErrAlreadyNudged.
func (e *Engine) NudgeFriend(ctx context.Context, caller, target domain.Account) (Receipt, error) {
	return e.complete(ctx, caller, quest{
		id:        domain.QuestNudgeFriend,
		repeatErr: ErrQuestAlreadyCompleted,
		precheck: func(r *questRun) error {
			if target.IsZero() {
				return ErrInvalidAccount
			}
			if target == r.caller {
				return ErrSelfNudge
			}
			friend, err := r.tx.Profile(r.ctx, target)
			if err != nil {
				return err
			}
			if !friend.Exists {
				return ErrFriendNotFound
			}
			nudged, err := r.tx.Nudged(r.ctx, r.caller, target, r.day)
			if err != nil {
				return err
			}
			if nudged {
				return ErrAlreadyNudged
			}
			return nil
		},
		apply: func(r *questRun) error {
			if err := r.tx.PutNudge(r.ctx, r.caller, target, r.day); err != nil {
				return err
			}
			r.data = map[string]any{domain.DataTarget: string(target)}
			r.emit(domain.EventFriendNudged, r.caller, 0, 0, map[string]any{domain.DataTarget: string(target)})
			return nil
		},
	})
}

func (e *Engine) CommitMessage(ctx context.Context, caller domain.Account, content string) (Receipt, error) {
	return e.complete(ctx, caller, quest{
		id:        domain.QuestCommitMessage,
		repeatErr: ErrQuestAlreadyCompleted,
		validate: func(r *questRun) error {
			n := utf8.RuneCountInString(content)
			if n == 0 {
				return ErrEmptyMessage
			}
			if n > domain.MaxMessageLength {
				return ErrMessageTooLong
			}
			// stored as postgres text, which holds neither NUL nor invalid utf-8
			if !utf8.ValidString(content) || strings.ContainsRune(content, 0) {
				return ErrInvalidMessageContent
			}
			return nil
		},
		apply: func(r *questRun) error {
			idx, err := r.tx.AppendMessage(r.ctx, r.caller, content, r.now)
			if err != nil {
				return err
			}
			r.receipt.MessageIndex = &idx
			r.emit(domain.EventMessageCommitted, r.caller, 0, 0, map[string]any{domain.DataMessageIndex: idx})
			return nil
		},
	})
}

func (e *Engine) PredictPulse(ctx context.Context, caller domain.Account, level int) (Receipt, error) {
	return e.complete(ctx, caller, quest{
		id:        domain.QuestPredictPulse,
		repeatErr: ErrQuestAlreadyCompleted,
		validate: func(r *questRun) error {
			if level < domain.MinPredictionLevel || level > domain.MaxPredictionLevel {
				return ErrInvalidPredictionLevel
			}
			return nil
		},
		apply: func(r *questRun) error {
			p := domain.Prediction{Day: r.day, Level: level, CreatedAt: r.now}
			if err := r.tx.PutPrediction(r.ctx, r.caller, p); err != nil {
				return err
			}
			r.emit(domain.EventPredictionMade, r.caller, 0, 0, map[string]any{domain.DataLevel: level})
			return nil
		},
	})
}
