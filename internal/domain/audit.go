package domain

import "time"

// EventKind names a committed ledger transition.
type EventKind string

const (
	EventUserJoined           EventKind = "user_joined"
	EventQuestCompleted       EventKind = "quest_completed"
	EventStreakUpdated        EventKind = "streak_updated"
	EventComboActivated       EventKind = "combo_activated"
	EventMessageCommitted     EventKind = "message_committed"
	EventFriendNudged         EventKind = "friend_nudged"
	EventPredictionMade       EventKind = "prediction_made"
	EventPaused               EventKind = "paused"
	EventUnpaused             EventKind = "unpaused"
	EventOwnershipTransferred EventKind = "ownership_transferred"
)

// Event is emitted once per transition, after the call that caused it commits.
// Kind-specific values live in Data (streak, target, index, level, ...).
type Event struct {
	ID        string         `db:"id" json:"id"`
	Network   Network        `db:"network" json:"network"`
	Kind      EventKind      `db:"kind" json:"kind"`
	Account   Account        `db:"account" json:"account"`
	Day       int64          `db:"day" json:"day"`
	QuestID   QuestID        `db:"quest_id" json:"quest_id,omitempty"`
	Points    int64          `db:"points" json:"points,omitempty"`
	Data      map[string]any `db:"data" json:"data,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Event data keys
const (
	DataCurrentStreak = "current_streak"
	DataLongestStreak = "longest_streak"
	DataTarget        = "target"
	DataMessageIndex  = "message_index"
	DataWeatherCode   = "weather_code"
	DataLevel         = "level"
	DataPreviousOwner = "previous_owner"
)
