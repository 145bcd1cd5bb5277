package repository

import (
	"context"
	"errors"
	"time"

	"pulse_ledger/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (t *pgTx) AppendMessage(ctx context.Context, account domain.Account, content string, at time.Time) (int, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	var idx int
	err := t.tx.QueryRow(ctx, `
		INSERT INTO messages (network, account, idx, content, created_at)
		SELECT $1, $2, COALESCE(MAX(idx) + 1, 0), $3, $4
		FROM messages
		WHERE network = $1 AND account = $2
		RETURNING idx
	`, t.network, account, content, at).Scan(&idx)
	return idx, err
}

func (t *pgTx) Message(ctx context.Context, account domain.Account, index int) (domain.Message, bool, error) {
	if index < 0 {
		return domain.Message{}, false, nil
	}
	var m domain.Message
	err := t.tx.QueryRow(ctx, `
		SELECT idx, content, created_at
		FROM messages
		WHERE network = $1 AND account = $2 AND idx = $3
	`, t.network, account, index).Scan(&m.Index, &m.Content, &m.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, false, nil
	}
	if err != nil {
		return domain.Message{}, false, err
	}
	return m, true, nil
}

func (t *pgTx) MessageCount(ctx context.Context, account domain.Account) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages WHERE network = $1 AND account = $2
	`, t.network, account).Scan(&n)
	return n, err
}

func (t *pgTx) Prediction(ctx context.Context, account domain.Account, day int64) (domain.Prediction, bool, error) {
	p := domain.Prediction{Day: day}
	var level int16
	err := t.tx.QueryRow(ctx, `
		SELECT level, created_at
		FROM predictions
		WHERE network = $1 AND account = $2 AND day = $3
	`, t.network, account, day).Scan(&level, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Prediction{}, false, nil
	}
	if err != nil {
		return domain.Prediction{}, false, err
	}
	p.Level = int(level)
	return p, true, nil
}

func (t *pgTx) PutPrediction(ctx context.Context, account domain.Account, p domain.Prediction) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO predictions (network, account, day, level, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.network, account, p.Day, int16(p.Level), p.CreatedAt)
	return err
}
