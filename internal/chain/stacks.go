package chain

import (
	"fmt"
	"regexp"
	"strings"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/ledger"
)

// standard principal with an optional contract name
var stacksPrincipal = regexp.MustCompile(`^S[PMTN][0-9A-HJKMNP-TV-Z]{38,40}(\.[a-zA-Z][a-zA-Z0-9-]{0,39})?$`)

// Clarity error codes of the Stacks contract
var stacksFailures = map[*ledger.Error]uint{
	ledger.ErrUnauthorized:           100,
	ledger.ErrPaused:                 101,
	ledger.ErrNotPaused:              102,
	ledger.ErrInvalidOwner:           103,
	ledger.ErrAlreadyCheckedIn:       200,
	ledger.ErrQuestAlreadyCompleted:  201,
	ledger.ErrUserNotFound:           202,
	ledger.ErrInvalidWeatherCode:     300,
	ledger.ErrSelfNudge:              301,
	ledger.ErrFriendNotFound:         302,
	ledger.ErrAlreadyNudged:          303,
	ledger.ErrEmptyMessage:           304,
	ledger.ErrMessageTooLong:         305,
	ledger.ErrInvalidPredictionLevel: 306,
	ledger.ErrInvalidQuestID:         307,
	ledger.ErrInvalidAccount:         308,
	ledger.ErrInvalidMessageContent:  309,
	ledger.ErrComboUnavailable:       400,
	ledger.ErrComboAlreadyClaimed:    401,
	ledger.ErrMessageNotFound:        402,
}

// Stacks serves the Stacks network: c32 principals, (err uN) failures.
type Stacks struct{}

func (Stacks) Network() domain.Network { return domain.NetworkStacks }

func (Stacks) ParseAccount(raw string) (domain.Account, error) {
	raw = strings.TrimSpace(raw)
	principal, contract, _ := strings.Cut(raw, ".")
	principal = strings.ToUpper(principal)
	if contract != "" {
		principal += "." + contract
	}
	if !stacksPrincipal.MatchString(principal) {
		return "", fmt.Errorf("invalid stacks principal %q", raw)
	}
	return domain.Account(principal), nil
}

func (Stacks) EncodeFailure(err *ledger.Error) Failure {
	code, ok := stacksFailures[err]
	if !ok {
		return Failure{Code: "(err u999)", Message: err.Reason}
	}
	return Failure{Code: fmt.Sprintf("(err u%d)", code), Message: err.Reason}
}

type stacksProfile struct {
	TotalPoints    int64  `json:"total-points"`
	CurrentStreak  int64  `json:"current-streak"`
	LongestStreak  int64  `json:"longest-streak"`
	LastCheckinDay *int64 `json:"last-checkin-day"`
	TotalCheckins  int64  `json:"total-checkins"`
	Level          int64  `json:"level"`
	StakedAmount   int64  `json:"staked-amount"`
	JoinedTime     int64  `json:"joined-time"`
	Exists         bool   `json:"exists"`
	Principal      string `json:"principal"`
}

// ProfileView uses the kebab-case tuple keys; an unset checkin day is none (null).
func (Stacks) ProfileView(p domain.UserProfile) any {
	v := stacksProfile{
		TotalPoints:    p.TotalPoints,
		CurrentStreak:  p.CurrentStreak,
		LongestStreak:  p.LongestStreak,
		LastCheckinDay: p.LastCheckinDay,
		TotalCheckins:  p.TotalCheckins,
		Level:          p.Level,
		StakedAmount:   p.StakedAmount,
		Exists:         p.Exists,
		Principal:      string(p.Account),
	}
	if p.Exists {
		v.JoinedTime = p.JoinedTime.Unix()
	}
	return v
}
