package domain

import "fmt"

// QuestID - identifier of a quest in the fixed quest table (1..10)
type QuestID uint8

const (
	QuestDailyCheckin     QuestID = 1
	QuestRelaySignal      QuestID = 2
	QuestUpdateAtmosphere QuestID = 3
	QuestNudgeFriend      QuestID = 4
	QuestReserved5        QuestID = 5
	QuestCommitMessage    QuestID = 6
	QuestReserved7        QuestID = 7
	QuestReserved8        QuestID = 8
	QuestPredictPulse     QuestID = 9
	QuestReserved10       QuestID = 10

	MinQuestID = QuestDailyCheckin
	MaxQuestID = QuestReserved10
)

// ComboBonus is awarded once per (account, day) when every ComboQuests member
// was completed that day.
const ComboBonus int64 = 200

// ComboQuests - checkin, atmosphere, message
var ComboQuests = []QuestID{QuestDailyCheckin, QuestUpdateAtmosphere, QuestCommitMessage}

type questInfo struct {
	name        string
	points      int64
	implemented bool
}

var questTable = [MaxQuestID + 1]questInfo{
	QuestDailyCheckin:     {"daily_checkin", 50, true},
	QuestRelaySignal:      {"relay_signal", 100, true},
	QuestUpdateAtmosphere: {"update_atmosphere", 30, true},
	QuestNudgeFriend:      {"nudge_friend", 40, true},
	QuestReserved5:        {"reserved_5", 60, false},
	QuestCommitMessage:    {"commit_message", 20, true},
	QuestReserved7:        {"reserved_7", 200, false},
	QuestReserved8:        {"reserved_8", 500, false},
	QuestPredictPulse:     {"predict_pulse", 80, true},
	QuestReserved10:       {"reserved_10", 1000, false},
}

// ParseQuestID accepts only ids present in the quest table.
func ParseQuestID(n int) (QuestID, error) {
	if n < int(MinQuestID) || n > int(MaxQuestID) {
		return 0, fmt.Errorf("quest id %d out of range", n)
	}
	return QuestID(n), nil
}

func (q QuestID) Valid() bool {
	return q >= MinQuestID && q <= MaxQuestID
}

// Points returns the configured reward, including for reserved ids.
func (q QuestID) Points() int64 {
	if !q.Valid() {
		return 0
	}
	return questTable[q].points
}

// Implemented reports whether the quest has an executable operation.
// Reserved ids only exist in configuration.
func (q QuestID) Implemented() bool {
	return q.Valid() && questTable[q].implemented
}

func (q QuestID) String() string {
	if !q.Valid() {
		return fmt.Sprintf("quest_%d", uint8(q))
	}
	return questTable[q].name
}

// QuestSet - set of quests completed by one account on one day.
// It is a value type; copies never alias.
type QuestSet struct {
	members [MaxQuestID + 1]bool
}

func NewQuestSet(ids ...QuestID) QuestSet {
	var s QuestSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add ignores ids outside the quest table.
func (s *QuestSet) Add(id QuestID) {
	if id.Valid() {
		s.members[id] = true
	}
}

func (s QuestSet) Has(id QuestID) bool {
	return id.Valid() && s.members[id]
}

func (s QuestSet) HasAll(ids ...QuestID) bool {
	for _, id := range ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

func (s QuestSet) Len() int {
	n := 0
	for _, ok := range s.members {
		if ok {
			n++
		}
	}
	return n
}

// IDs returns members in ascending order.
func (s QuestSet) IDs() []QuestID {
	ids := make([]QuestID, 0, s.Len())
	for id := MinQuestID; id <= MaxQuestID; id++ {
		if s.members[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
