package repository

import (
	"context"
	"errors"
	"time"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTxConflict is returned when a write keeps losing serialization races.
var ErrTxConflict = errors.New("transaction conflict, retry later")

const defaultMaxAttempts = 5

// LedgerStore keeps the state of one network's ledger in Postgres.
// Writes run at SERIALIZABLE isolation and are retried on conflict.
type LedgerStore struct {
	db          *pgxpool.Pool
	network     domain.Network
	maxAttempts int
}

func NewLedgerStore(db *pgxpool.Pool, network domain.Network) *LedgerStore {
	return &LedgerStore{db: db, network: network, maxAttempts: defaultMaxAttempts}
}

var _ ledger.Store = (*LedgerStore)(nil)

func (s *LedgerStore) Update(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	retryDelay := 25 * time.Millisecond
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		err := s.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt == s.maxAttempts-1 {
			break
		}
		if err := sleepWithContext(ctx, retryDelay); err != nil {
			return err
		}
		if retryDelay < 400*time.Millisecond {
			retryDelay *= 2
		}
	}
	return ErrTxConflict
}

func (s *LedgerStore) View(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (s *LedgerStore) run(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx ledger.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx, network: s.network, readOnly: opts.AccessMode == pgx.ReadOnly}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// pgTx implements ledger.Tx over one pgx transaction. Its methods are
// spread over the *_repo.go files by record type.
type pgTx struct {
	tx       pgx.Tx
	network  domain.Network
	readOnly bool
}

func (t *pgTx) writable() error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	return nil
}

// Unique violations on ledger keys mean a concurrent writer won the race;
// the retry re-reads state and reports the proper rejection.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
