package events

import (
	"context"
	"strconv"

	"pulse_ledger/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink counts committed transitions.
type MetricsSink struct {
	events *prometheus.CounterVec
	quests *prometheus.CounterVec
	points *prometheus.CounterVec
}

func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	s := &MetricsSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_events_total",
			Help: "Committed ledger events by kind",
		}, []string{"network", "kind"}),
		quests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_quests_completed_total",
			Help: "Completed quests by quest id",
		}, []string{"network", "quest_id"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_points_awarded_total",
			Help: "Points awarded by quests and combo bonuses",
		}, []string{"network"}),
	}
	reg.MustRegister(s.events, s.quests, s.points)
	return s
}

func (s *MetricsSink) Notify(_ context.Context, events []domain.Event) {
	for _, e := range events {
		network := string(e.Network)
		s.events.WithLabelValues(network, string(e.Kind)).Inc()
		switch e.Kind {
		case domain.EventQuestCompleted:
			s.quests.WithLabelValues(network, strconv.Itoa(int(e.QuestID))).Inc()
			s.points.WithLabelValues(network).Add(float64(e.Points))
		case domain.EventComboActivated:
			s.points.WithLabelValues(network).Add(float64(e.Points))
		}
	}
}
