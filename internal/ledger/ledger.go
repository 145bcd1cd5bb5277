package ledger

import (
	"context"

	"pulse_ledger/internal/domain"
)

// Receipt describes the reward of a successful quest or combo claim.
type Receipt struct {
	QuestID      domain.QuestID `json:"quest_id,omitempty"`
	Points       int64          `json:"points"`
	Day          int64          `json:"day"`
	MessageIndex *int           `json:"message_index,omitempty"`
}

// Ledger is the contract served for every network.
type Ledger interface {
	Network() domain.Network

	DailyCheckin(ctx context.Context, caller domain.Account) (Receipt, error)
	RelaySignal(ctx context.Context, caller domain.Account) (Receipt, error)
	UpdateAtmosphere(ctx context.Context, caller domain.Account, weatherCode int) (Receipt, error)
	NudgeFriend(ctx context.Context, caller, target domain.Account) (Receipt, error)
	CommitMessage(ctx context.Context, caller domain.Account, content string) (Receipt, error)
	PredictPulse(ctx context.Context, caller domain.Account, level int) (Receipt, error)
	ClaimDailyCombo(ctx context.Context, caller domain.Account) (Receipt, error)

	Pause(ctx context.Context, caller domain.Account) error
	Unpause(ctx context.Context, caller domain.Account) error
	TransferOwnership(ctx context.Context, caller, newOwner domain.Account) error

	CurrentDay() int64
	UserProfile(ctx context.Context, account domain.Account) (domain.UserProfile, error)
	GlobalStats(ctx context.Context) (domain.GlobalStats, error)
	HasCompletedQuestToday(ctx context.Context, account domain.Account, id domain.QuestID) (bool, error)
	CompletedQuestsToday(ctx context.Context, account domain.Account) (domain.QuestSet, error)
	IsComboAvailable(ctx context.Context, account domain.Account) (bool, error)
	UserMessage(ctx context.Context, account domain.Account, index int) (domain.Message, error)
	MessageCount(ctx context.Context, account domain.Account) (int, error)
	PredictionToday(ctx context.Context, account domain.Account) (domain.Prediction, bool, error)
	Gate(ctx context.Context) (domain.GateState, error)
}

var _ Ledger = (*Engine)(nil)
