package chain

import (
	"fmt"
	"regexp"
	"strings"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/ledger"
)

var evmAddress = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// revert strings and custom errors of the Base contract
var evmFailures = map[*ledger.Error]string{
	ledger.ErrUnauthorized:           "OwnableUnauthorizedAccount",
	ledger.ErrPaused:                 "EnforcedPause",
	ledger.ErrNotPaused:              "ExpectedPause",
	ledger.ErrInvalidOwner:           "OwnableInvalidOwner",
	ledger.ErrInvalidAccount:         "Invalid address",
	ledger.ErrInvalidQuestID:         "Invalid quest ID",
	ledger.ErrInvalidWeatherCode:     "Invalid weather code",
	ledger.ErrSelfNudge:              "Cannot nudge yourself",
	ledger.ErrEmptyMessage:           "Message cannot be empty",
	ledger.ErrMessageTooLong:         "Message too long",
	ledger.ErrInvalidMessageContent:  "Invalid message content",
	ledger.ErrInvalidPredictionLevel: "Invalid prediction level",
	ledger.ErrAlreadyCheckedIn:       "Already checked in today",
	ledger.ErrQuestAlreadyCompleted:  "Quest already completed today",
	ledger.ErrUserNotFound:           "User does not exist",
	ledger.ErrFriendNotFound:         "Friend does not exist",
	ledger.ErrAlreadyNudged:          "Already nudged this friend today",
	ledger.ErrComboUnavailable:       "Combo not available",
	ledger.ErrComboAlreadyClaimed:    "Combo already claimed today",
	ledger.ErrMessageNotFound:        "Message does not exist",
}

// EVM serves the Base network: 0x addresses, revert-string failures.
type EVM struct{}

func (EVM) Network() domain.Network { return domain.NetworkBase }

// ParseAccount lowercases the address so checksummed and plain forms map
// to one account.
func (EVM) ParseAccount(raw string) (domain.Account, error) {
	raw = strings.TrimSpace(raw)
	if !evmAddress.MatchString(raw) {
		return "", fmt.Errorf("invalid evm address %q", raw)
	}
	return domain.Account(strings.ToLower(raw)), nil
}

func (EVM) EncodeFailure(err *ledger.Error) Failure {
	msg, ok := evmFailures[err]
	if !ok {
		msg = err.Reason
	}
	code := "revert"
	if err.Kind == ledger.KindAuthorization {
		code = "custom_error"
	}
	return Failure{Code: code, Message: msg}
}

type evmProfile struct {
	TotalPoints    int64  `json:"totalPoints"`
	CurrentStreak  int64  `json:"currentStreak"`
	LongestStreak  int64  `json:"longestStreak"`
	LastCheckinDay int64  `json:"lastCheckinDay"`
	TotalCheckins  int64  `json:"totalCheckins"`
	Level          int64  `json:"level"`
	StakedAmount   int64  `json:"stakedAmount"`
	JoinedTime     int64  `json:"joinedTime"`
	Exists         bool   `json:"exists"`
	Account        string `json:"account"`
}

// ProfileView mirrors the contract tuple: unset values read as zero.
func (EVM) ProfileView(p domain.UserProfile) any {
	v := evmProfile{
		TotalPoints:   p.TotalPoints,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		TotalCheckins: p.TotalCheckins,
		Level:         p.Level,
		StakedAmount:  p.StakedAmount,
		Exists:        p.Exists,
		Account:       string(p.Account),
	}
	if p.LastCheckinDay != nil {
		v.LastCheckinDay = *p.LastCheckinDay
	}
	if p.Exists {
		v.JoinedTime = p.JoinedTime.Unix()
	}
	return v
}
