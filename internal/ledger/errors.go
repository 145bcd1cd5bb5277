package ledger

import "errors"

// Kind classifies a rejected call.
type Kind int

const (
	KindAuthorization Kind = iota + 1
	KindValidation
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is a rejection with a stable, machine-matchable reason.
// A call that returns one has written nothing.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// AsError extracts the ledger rejection from err, if any.
func AsError(err error) (*Error, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

var (
	ErrUnauthorized = &Error{KindAuthorization, "unauthorized"}
	ErrPaused       = &Error{KindAuthorization, "paused"}
	ErrNotPaused    = &Error{KindAuthorization, "not paused"}

	ErrInvalidAccount         = &Error{KindValidation, "invalid account"}
	ErrInvalidOwner           = &Error{KindValidation, "invalid owner"}
	ErrInvalidQuestID         = &Error{KindValidation, "invalid quest id"}
	ErrInvalidWeatherCode     = &Error{KindValidation, "invalid weather code"}
	ErrSelfNudge              = &Error{KindValidation, "cannot nudge yourself"}
	ErrEmptyMessage           = &Error{KindValidation, "empty message"}
	ErrMessageTooLong         = &Error{KindValidation, "message too long"}
	ErrInvalidMessageContent  = &Error{KindValidation, "invalid message content"}
	ErrInvalidPredictionLevel = &Error{KindValidation, "invalid prediction level"}

	ErrAlreadyCheckedIn      = &Error{KindState, "already checked in today"}
	ErrQuestAlreadyCompleted = &Error{KindState, "quest already completed today"}
	ErrUserNotFound          = &Error{KindState, "user does not exist"}
	ErrFriendNotFound        = &Error{KindState, "friend does not exist"}
	ErrAlreadyNudged         = &Error{KindState, "already nudged this friend today"}
	ErrComboUnavailable      = &Error{KindState, "combo not available"}
	ErrComboAlreadyClaimed   = &Error{KindState, "combo already claimed today"}
	ErrMessageNotFound       = &Error{KindState, "message not found"}
)

// ErrNotInitialized is returned when a store has no genesis record.
var ErrNotInitialized = errors.New("ledger: store not initialized")

// ErrReadOnly is returned by write methods of a View transaction.
var ErrReadOnly = errors.New("ledger: read-only transaction")
