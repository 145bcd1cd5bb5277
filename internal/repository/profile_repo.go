package repository

import (
	"context"
	"errors"

	"pulse_ledger/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (t *pgTx) Profile(ctx context.Context, account domain.Account) (domain.UserProfile, error) {
	p := domain.UserProfile{Account: account}
	err := t.tx.QueryRow(ctx, `
		SELECT total_points, current_streak, longest_streak, last_checkin_day,
		       total_checkins, level, staked_amount, joined_time
		FROM user_profiles
		WHERE network = $1 AND account = $2
	`, t.network, account).Scan(
		&p.TotalPoints, &p.CurrentStreak, &p.LongestStreak, &p.LastCheckinDay,
		&p.TotalCheckins, &p.Level, &p.StakedAmount, &p.JoinedTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{Account: account}, nil
	}
	if err != nil {
		return domain.UserProfile{}, err
	}
	p.Exists = true
	return p, nil
}

// PutProfile upserts; joined_time is written only on insert.
func (t *pgTx) PutProfile(ctx context.Context, p domain.UserProfile) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO user_profiles (network, account, total_points, current_streak, longest_streak,
		                           last_checkin_day, total_checkins, level, staked_amount, joined_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (network, account) DO UPDATE SET
			total_points = EXCLUDED.total_points,
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			last_checkin_day = EXCLUDED.last_checkin_day,
			total_checkins = EXCLUDED.total_checkins,
			level = EXCLUDED.level,
			staked_amount = EXCLUDED.staked_amount
	`, t.network, p.Account, p.TotalPoints, p.CurrentStreak, p.LongestStreak,
		p.LastCheckinDay, p.TotalCheckins, p.Level, p.StakedAmount, p.JoinedTime)
	return err
}
