package ledger

import (
	"context"
	"time"

	"pulse_ledger/internal/domain"
)

// Store owns the ledger state of one network. Update runs fn in a
// transaction that commits only when fn returns nil; implementations may
// invoke fn more than once, so fn must not leak side effects.
type Store interface {
	Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the staged view of ledger state inside one transaction.
type Tx interface {
	Gate(ctx context.Context) (domain.GateState, bool, error)
	PutGate(ctx context.Context, g domain.GateState) error

	Stats(ctx context.Context) (domain.GlobalStats, error)
	PutStats(ctx context.Context, s domain.GlobalStats) error

	// Profile returns a zero profile with Exists=false for unknown accounts.
	Profile(ctx context.Context, account domain.Account) (domain.UserProfile, error)
	PutProfile(ctx context.Context, p domain.UserProfile) error

	CompletedQuests(ctx context.Context, account domain.Account, day int64) (domain.QuestSet, error)
	MarkCompleted(ctx context.Context, account domain.Account, day int64, id domain.QuestID) error

	ComboClaimed(ctx context.Context, account domain.Account, day int64) (bool, error)
	MarkComboClaimed(ctx context.Context, account domain.Account, day int64) error

	Nudged(ctx context.Context, account, target domain.Account, day int64) (bool, error)
	PutNudge(ctx context.Context, account, target domain.Account, day int64) error

	// AppendMessage returns the zero-based index of the new message.
	AppendMessage(ctx context.Context, account domain.Account, content string, at time.Time) (int, error)
	Message(ctx context.Context, account domain.Account, index int) (domain.Message, bool, error)
	MessageCount(ctx context.Context, account domain.Account) (int, error)

	Prediction(ctx context.Context, account domain.Account, day int64) (domain.Prediction, bool, error)
	PutPrediction(ctx context.Context, account domain.Account, p domain.Prediction) error
}
