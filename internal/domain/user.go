package domain

import "time"

// InitialLevel is assigned at profile creation. Nothing raises it yet.
const InitialLevel = 1

// UserProfile - per-account ledger record
type UserProfile struct {
	Account        Account   `db:"account" json:"account"`
	TotalPoints    int64     `db:"total_points" json:"total_points"`
	CurrentStreak  int64     `db:"current_streak" json:"current_streak"`
	LongestStreak  int64     `db:"longest_streak" json:"longest_streak"`
	LastCheckinDay *int64    `db:"last_checkin_day" json:"last_checkin_day"`
	TotalCheckins  int64     `db:"total_checkins" json:"total_checkins"`
	Level          int64     `db:"level" json:"level"`
	StakedAmount   int64     `db:"staked_amount" json:"staked_amount"`
	JoinedTime     time.Time `db:"joined_time" json:"joined_time"`
	Exists         bool      `db:"-" json:"exists"`
}

// NewUserProfile returns the record created on an account's first successful quest.
func NewUserProfile(account Account, joined time.Time) UserProfile {
	return UserProfile{
		Account:    account,
		Level:      InitialLevel,
		JoinedTime: joined,
		Exists:     true,
	}
}

// CheckedInOn reports whether the last checkin happened on day.
func (p *UserProfile) CheckedInOn(day int64) bool {
	return p.LastCheckinDay != nil && *p.LastCheckinDay == day
}

// ApplyCheckin advances the streak for a checkin on day: consecutive days
// extend it, any gap restarts it at 1.
func (p *UserProfile) ApplyCheckin(day int64) {
	if p.LastCheckinDay != nil && *p.LastCheckinDay == day-1 {
		p.CurrentStreak++
	} else {
		p.CurrentStreak = 1
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	d := day
	p.LastCheckinDay = &d
	p.TotalCheckins++
}
