package repository

import (
	"context"

	"pulse_ledger/internal/domain"
)

func (t *pgTx) CompletedQuests(ctx context.Context, account domain.Account, day int64) (domain.QuestSet, error) {
	var set domain.QuestSet
	rows, err := t.tx.Query(ctx, `
		SELECT quest_id
		FROM quest_completions
		WHERE network = $1 AND account = $2 AND day = $3
	`, t.network, account, day)
	if err != nil {
		return set, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int16
		if err := rows.Scan(&id); err != nil {
			return set, err
		}
		set.Add(domain.QuestID(id))
	}
	return set, rows.Err()
}

func (t *pgTx) MarkCompleted(ctx context.Context, account domain.Account, day int64, id domain.QuestID) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO quest_completions (network, account, day, quest_id)
		VALUES ($1, $2, $3, $4)
	`, t.network, account, day, int16(id))
	return err
}

func (t *pgTx) ComboClaimed(ctx context.Context, account domain.Account, day int64) (bool, error) {
	var claimed bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM combo_claims
			WHERE network = $1 AND account = $2 AND day = $3
		)
	`, t.network, account, day).Scan(&claimed)
	return claimed, err
}

func (t *pgTx) MarkComboClaimed(ctx context.Context, account domain.Account, day int64) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO combo_claims (network, account, day)
		VALUES ($1, $2, $3)
	`, t.network, account, day)
	return err
}

func (t *pgTx) Nudged(ctx context.Context, account, target domain.Account, day int64) (bool, error) {
	var nudged bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM nudges
			WHERE network = $1 AND account = $2 AND target = $3 AND day = $4
		)
	`, t.network, account, target, day).Scan(&nudged)
	return nudged, err
}

func (t *pgTx) PutNudge(ctx context.Context, account, target domain.Account, day int64) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO nudges (network, account, target, day)
		VALUES ($1, $2, $3, $4)
	`, t.network, account, target, day)
	return err
}
