package repository

import (
	"context"
	"errors"

	"pulse_ledger/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (t *pgTx) Gate(ctx context.Context) (domain.GateState, bool, error) {
	var g domain.GateState
	err := t.tx.QueryRow(ctx, `
		SELECT owner, paused FROM ledger_gate WHERE network = $1
	`, t.network).Scan(&g.Owner, &g.Paused)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GateState{}, false, nil
	}
	if err != nil {
		return domain.GateState{}, false, err
	}
	return g, true, nil
}

func (t *pgTx) PutGate(ctx context.Context, g domain.GateState) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO ledger_gate (network, owner, paused)
		VALUES ($1, $2, $3)
		ON CONFLICT (network) DO UPDATE SET
			owner = EXCLUDED.owner,
			paused = EXCLUDED.paused,
			updated_at = now()
	`, t.network, g.Owner, g.Paused)
	return err
}

// Stats reads as zero until genesis writes the row.
func (t *pgTx) Stats(ctx context.Context) (domain.GlobalStats, error) {
	var s domain.GlobalStats
	err := t.tx.QueryRow(ctx, `
		SELECT total_users, total_checkins, total_points_distributed
		FROM ledger_stats WHERE network = $1
	`, t.network).Scan(&s.TotalUsers, &s.TotalCheckins, &s.TotalPointsDistributed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GlobalStats{}, nil
	}
	return s, err
}

func (t *pgTx) PutStats(ctx context.Context, s domain.GlobalStats) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO ledger_stats (network, total_users, total_checkins, total_points_distributed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (network) DO UPDATE SET
			total_users = EXCLUDED.total_users,
			total_checkins = EXCLUDED.total_checkins,
			total_points_distributed = EXCLUDED.total_points_distributed
	`, t.network, s.TotalUsers, s.TotalCheckins, s.TotalPointsDistributed)
	return err
}
