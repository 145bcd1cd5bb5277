package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/ledger"
	"pulse_ledger/internal/migrations"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestIsRetryable(t *testing.T) {
	cases := map[string]bool{"40001": true, "40P01": true, "23505": true, "23514": false}
	for code, want := range cases {
		err := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: code})
		if got := isRetryable(err); got != want {
			t.Fatalf("code %s: got %v want %v", code, got, want)
		}
	}
	if isRetryable(errors.New("plain")) {
		t.Fatalf("plain error must not be retried")
	}
}

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := migrations.Apply(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

// uniqueNetwork isolates test runs sharing one database.
func uniqueNetwork(t *testing.T, pool *pgxpool.Pool) domain.Network {
	t.Helper()
	n := domain.Network(fmt.Sprintf("test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx := context.Background()
		for _, table := range []string{"ledger_gate", "ledger_stats", "user_profiles", "quest_completions",
			"combo_claims", "nudges", "messages", "predictions", "ledger_events"} {
			_, _ = pool.Exec(ctx, "DELETE FROM "+table+" WHERE network = $1", n)
		}
	})
	return n
}

func TestLedgerStoreEngineFlow(t *testing.T) {
	pool := testPool(t)
	network := uniqueNetwork(t, pool)
	ctx := context.Background()

	clock := ledger.NewManualClock(ledger.StartOfDay(20000).Add(time.Hour))
	eng := ledger.NewEngine(network, NewLedgerStore(pool, network), ledger.WithClock(clock))
	if err := eng.Genesis(ctx, "owner"); err != nil {
		t.Fatalf("genesis: %v", err)
	}

	if _, err := eng.DailyCheckin(ctx, "alice"); err != nil {
		t.Fatalf("checkin: %v", err)
	}
	if _, err := eng.DailyCheckin(ctx, "alice"); !errors.Is(err, ledger.ErrAlreadyCheckedIn) {
		t.Fatalf("expected already checked in, got %v", err)
	}
	if _, err := eng.UpdateAtmosphere(ctx, "alice", 2); err != nil {
		t.Fatalf("atmosphere: %v", err)
	}
	r, err := eng.CommitMessage(ctx, "alice", "hello pulse")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if *r.MessageIndex != 0 {
		t.Fatalf("expected index 0, got %d", *r.MessageIndex)
	}
	if _, err := eng.ClaimDailyCombo(ctx, "alice"); err != nil {
		t.Fatalf("combo: %v", err)
	}
	if _, err := eng.ClaimDailyCombo(ctx, "alice"); !errors.Is(err, ledger.ErrComboAlreadyClaimed) {
		t.Fatalf("expected combo already claimed, got %v", err)
	}

	p, err := eng.UserProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !p.Exists || p.TotalPoints != 300 || p.LastCheckinDay == nil || *p.LastCheckinDay != 20000 {
		t.Fatalf("unexpected profile %+v", p)
	}
	m, err := eng.UserMessage(ctx, "alice", 0)
	if err != nil || m.Content != "hello pulse" {
		t.Fatalf("unexpected message %+v %v", m, err)
	}

	clock.Advance(24 * time.Hour)
	if _, err := eng.DailyCheckin(ctx, "alice"); err != nil {
		t.Fatalf("checkin day 2: %v", err)
	}
	p, _ = eng.UserProfile(ctx, "alice")
	if p.CurrentStreak != 2 || p.LongestStreak != 2 {
		t.Fatalf("unexpected streak %+v", p)
	}

	s, err := eng.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.TotalUsers != 1 || s.TotalCheckins != 2 || s.TotalPointsDistributed != 350 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestEventRepository(t *testing.T) {
	pool := testPool(t)
	network := uniqueNetwork(t, pool)
	ctx := context.Background()
	repo := NewEventRepository(pool)

	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []domain.Event{
		{ID: "6f1f3a9e-1c1a-4b8e-9d8e-1a2b3c4d5e01", Network: network, Kind: domain.EventUserJoined, Account: "alice", Day: 1, CreatedAt: now},
		{ID: "6f1f3a9e-1c1a-4b8e-9d8e-1a2b3c4d5e02", Network: network, Kind: domain.EventQuestCompleted, Account: "alice", Day: 1,
			QuestID: domain.QuestUpdateAtmosphere, Points: 30, Data: map[string]any{domain.DataWeatherCode: 4}, CreatedAt: now.Add(time.Second)},
	}
	if err := repo.CreateBatch(ctx, events); err != nil {
		t.Fatalf("create batch: %v", err)
	}
	// replays are ignored
	if err := repo.Create(ctx, events[0]); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByAccount(ctx, network, "alice", 10)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0].Kind != domain.EventQuestCompleted || got[0].Points != 30 {
		t.Fatalf("unexpected events %+v", got)
	}
	if code, ok := got[0].Data[domain.DataWeatherCode].(float64); !ok || code != 4 {
		t.Fatalf("unexpected data %+v", got[0].Data)
	}
}
