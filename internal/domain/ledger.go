package domain

import "time"

// MaxMessageLength is counted in characters, not bytes.
const MaxMessageLength = 280

const (
	MinWeatherCode     = 1
	MaxWeatherCode     = 10
	MinPredictionLevel = 1
	MaxPredictionLevel = 10
)

type Message struct {
	Index     int       `db:"idx" json:"index"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

type Prediction struct {
	Day       int64     `db:"day" json:"day"`
	Level     int       `db:"level" json:"level"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type GlobalStats struct {
	TotalUsers             int64 `db:"total_users" json:"total_users"`
	TotalCheckins          int64 `db:"total_checkins" json:"total_checkins"`
	TotalPointsDistributed int64 `db:"total_points_distributed" json:"total_points_distributed"`
}

// GateState holds the owner-controlled pause switch of one ledger.
type GateState struct {
	Owner  Account `db:"owner" json:"owner"`
	Paused bool    `db:"paused" json:"paused"`
}
