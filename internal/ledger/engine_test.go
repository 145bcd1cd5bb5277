package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pulse_ledger/internal/domain"
)

const (
	owner domain.Account = "owner"
	alice domain.Account = "alice"
	bob   domain.Account = "bob"
	carol domain.Account = "carol"
)

// day 20000 starts at 2024-10-04 00:00 UTC
var epoch = StartOfDay(20000).Add(9 * time.Hour)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Notify(_ context.Context, events []domain.Event) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
}

func (r *recorder) kinds() []domain.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

func newTestEngine(t *testing.T) (*Engine, *ManualClock, *recorder) {
	t.Helper()
	clock := NewManualClock(epoch)
	rec := &recorder{}
	e := NewEngine(domain.NetworkBase, NewMemoryStore(), WithClock(clock), WithNotifier(rec))
	if err := e.Genesis(context.Background(), owner); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	return e, clock, rec
}

func mustProfile(t *testing.T, e *Engine, a domain.Account) domain.UserProfile {
	t.Helper()
	p, err := e.UserProfile(context.Background(), a)
	if err != nil {
		t.Fatalf("profile %s: %v", a, err)
	}
	return p
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestFirstCheckinCreatesProfile(t *testing.T) {
	e, _, rec := newTestEngine(t)
	ctx := context.Background()

	if p := mustProfile(t, e, alice); p.Exists {
		t.Fatalf("profile should not exist before first quest")
	}

	r, err := e.DailyCheckin(ctx, alice)
	if err != nil {
		t.Fatalf("checkin: %v", err)
	}
	if r.Points != 50 || r.QuestID != domain.QuestDailyCheckin || r.Day != 20000 {
		t.Fatalf("unexpected receipt %+v", r)
	}

	p := mustProfile(t, e, alice)
	if !p.Exists || p.Level != 1 || p.TotalPoints != 50 || p.CurrentStreak != 1 || p.LongestStreak != 1 || p.TotalCheckins != 1 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if !p.JoinedTime.Equal(epoch) {
		t.Fatalf("joined time %v, want %v", p.JoinedTime, epoch)
	}

	kinds := rec.kinds()
	want := []domain.EventKind{domain.EventUserJoined, domain.EventStreakUpdated, domain.EventQuestCompleted}
	if len(kinds) != len(want) {
		t.Fatalf("events %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events %v, want %v", kinds, want)
		}
	}
}

func TestCheckinTwiceSameDay(t *testing.T) {
	e, clock, rec := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.DailyCheckin(ctx, alice); err != nil {
		t.Fatalf("checkin: %v", err)
	}
	before := mustProfile(t, e, alice)
	stats, _ := e.GlobalStats(ctx)
	rec.reset()

	clock.Advance(10 * time.Hour)
	_, err := e.DailyCheckin(ctx, alice)
	expectErr(t, err, ErrAlreadyCheckedIn)
	if err.Error() != "already checked in today" {
		t.Fatalf("unexpected reason %q", err.Error())
	}

	after := mustProfile(t, e, alice)
	if after.TotalPoints != before.TotalPoints || after.TotalCheckins != before.TotalCheckins || after.CurrentStreak != before.CurrentStreak {
		t.Fatalf("state changed by rejected call: %+v -> %+v", before, after)
	}
	stats2, _ := e.GlobalStats(ctx)
	if stats2 != stats {
		t.Fatalf("stats changed by rejected call: %+v -> %+v", stats, stats2)
	}
	if len(rec.kinds()) != 0 {
		t.Fatalf("rejected call emitted events %v", rec.kinds())
	}
}

func TestStreakConsecutiveAndReset(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := e.DailyCheckin(ctx, alice); err != nil {
			t.Fatalf("checkin day %d: %v", i, err)
		}
		p := mustProfile(t, e, alice)
		if p.CurrentStreak != int64(i+1) {
			t.Fatalf("day %d: streak %d", i, p.CurrentStreak)
		}
		if p.LongestStreak < p.CurrentStreak {
			t.Fatalf("longest %d < current %d", p.LongestStreak, p.CurrentStreak)
		}
		clock.Advance(24 * time.Hour)
	}

	// skip one day
	clock.Advance(24 * time.Hour)
	if _, err := e.DailyCheckin(ctx, alice); err != nil {
		t.Fatalf("checkin after gap: %v", err)
	}
	p := mustProfile(t, e, alice)
	if p.CurrentStreak != 1 || p.LongestStreak != 3 {
		t.Fatalf("expected 1/3 after gap, got %d/%d", p.CurrentStreak, p.LongestStreak)
	}
	if p.TotalCheckins != 4 || p.TotalPoints != 200 {
		t.Fatalf("unexpected totals %+v", p)
	}
}

func TestDayBoundaryUsesUnixDays(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	clock.Set(StartOfDay(20001).Add(-time.Second))
	if _, err := e.DailyCheckin(ctx, alice); err != nil {
		t.Fatalf("checkin: %v", err)
	}
	clock.Advance(time.Second)
	if e.CurrentDay() != 20001 {
		t.Fatalf("expected day 20001, got %d", e.CurrentDay())
	}
	if _, err := e.DailyCheckin(ctx, alice); err != nil {
		t.Fatalf("checkin on next day: %v", err)
	}
	if p := mustProfile(t, e, alice); p.CurrentStreak != 2 {
		t.Fatalf("expected streak 2, got %d", p.CurrentStreak)
	}
}

func TestUpdateAtmosphere(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	for _, code := range []int{0, 11, 15, -1} {
		_, err := e.UpdateAtmosphere(ctx, alice, code)
		expectErr(t, err, ErrInvalidWeatherCode)
	}
	if p := mustProfile(t, e, alice); p.Exists {
		t.Fatalf("failed calls must not create a profile")
	}

	r, err := e.UpdateAtmosphere(ctx, alice, 5)
	if err != nil {
		t.Fatalf("atmosphere: %v", err)
	}
	if r.Points != 30 {
		t.Fatalf("expected 30 points, got %d", r.Points)
	}
	_, err = e.UpdateAtmosphere(ctx, alice, 6)
	expectErr(t, err, ErrQuestAlreadyCompleted)
}

func TestPredictPulse(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.PredictPulse(ctx, alice, 0)
	expectErr(t, err, ErrInvalidPredictionLevel)
	_, err = e.PredictPulse(ctx, alice, 11)
	expectErr(t, err, ErrInvalidPredictionLevel)

	r, err := e.PredictPulse(ctx, alice, 7)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if r.Points != 80 {
		t.Fatalf("expected 80 points, got %d", r.Points)
	}
	p, ok, err := e.PredictionToday(ctx, alice)
	if err != nil || !ok || p.Level != 7 || p.Day != 20000 {
		t.Fatalf("unexpected prediction %+v %v %v", p, ok, err)
	}
}

func TestRelaySignalRequiresProfile(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.RelaySignal(ctx, alice)
	expectErr(t, err, ErrUserNotFound)

	if _, err := e.UpdateAtmosphere(ctx, alice, 3); err != nil {
		t.Fatalf("atmosphere: %v", err)
	}
	r, err := e.RelaySignal(ctx, alice)
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	if r.Points != 100 {
		t.Fatalf("expected 100 points, got %d", r.Points)
	}
	_, err = e.RelaySignal(ctx, alice)
	expectErr(t, err, ErrQuestAlreadyCompleted)
}

func TestNudgeFriend(t *testing.T) {
	e, clock, rec := newTestEngine(t)
	ctx := context.Background()

	_, err := e.NudgeFriend(ctx, alice, alice)
	expectErr(t, err, ErrSelfNudge)
	_, err = e.NudgeFriend(ctx, alice, bob)
	expectErr(t, err, ErrFriendNotFound)

	if _, err := e.DailyCheckin(ctx, bob); err != nil {
		t.Fatalf("bob checkin: %v", err)
	}
	if _, err := e.DailyCheckin(ctx, carol); err != nil {
		t.Fatalf("carol checkin: %v", err)
	}
	rec.reset()

	r, err := e.NudgeFriend(ctx, alice, bob)
	if err != nil {
		t.Fatalf("nudge: %v", err)
	}
	if r.Points != 40 {
		t.Fatalf("expected 40 points, got %d", r.Points)
	}
	kinds := rec.kinds()
	if len(kinds) != 3 || kinds[1] != domain.EventFriendNudged {
		t.Fatalf("unexpected events %v", kinds)
	}

	_, err = e.NudgeFriend(ctx, alice, bob)
	expectErr(t, err, ErrAlreadyNudged)
	_, err = e.NudgeFriend(ctx, alice, carol)
	expectErr(t, err, ErrQuestAlreadyCompleted)

	clock.Advance(24 * time.Hour)
	if _, err := e.NudgeFriend(ctx, alice, bob); err != nil {
		t.Fatalf("nudge next day: %v", err)
	}
}

func TestCommitMessageRoundTrip(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CommitMessage(ctx, alice, "")
	expectErr(t, err, ErrEmptyMessage)
	_, err = e.CommitMessage(ctx, alice, strings.Repeat("a", 281))
	expectErr(t, err, ErrMessageTooLong)
	_, err = e.CommitMessage(ctx, alice, "gm\x00")
	expectErr(t, err, ErrInvalidMessageContent)
	_, err = e.CommitMessage(ctx, alice, "gm \xff\xfe")
	expectErr(t, err, ErrInvalidMessageContent)

	// 280 multi-byte characters are within bounds
	long := strings.Repeat("é", 280)
	r, err := e.CommitMessage(ctx, alice, long)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if r.Points != 20 || r.MessageIndex == nil || *r.MessageIndex != 0 {
		t.Fatalf("unexpected receipt %+v", r)
	}
	m, err := e.UserMessage(ctx, alice, 0)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if m.Content != long || !m.Timestamp.Equal(epoch) {
		t.Fatalf("unexpected message %+v", m)
	}

	clock.Advance(24 * time.Hour)
	r, err = e.CommitMessage(ctx, alice, "gm")
	if err != nil {
		t.Fatalf("commit day 2: %v", err)
	}
	if *r.MessageIndex != 1 {
		t.Fatalf("expected index 1, got %d", *r.MessageIndex)
	}
	if n, _ := e.MessageCount(ctx, alice); n != 2 {
		t.Fatalf("expected 2 messages, got %d", n)
	}
	_, err = e.UserMessage(ctx, alice, 2)
	expectErr(t, err, ErrMessageNotFound)
	_, err = e.UserMessage(ctx, alice, -1)
	expectErr(t, err, ErrMessageNotFound)
}

func TestDailyCombo(t *testing.T) {
	e, clock, rec := newTestEngine(t)
	ctx := context.Background()

	_, err := e.ClaimDailyCombo(ctx, alice)
	expectErr(t, err, ErrComboUnavailable)

	if _, err := e.DailyCheckin(ctx, alice); err != nil {
		t.Fatalf("checkin: %v", err)
	}
	if _, err := e.UpdateAtmosphere(ctx, alice, 4); err != nil {
		t.Fatalf("atmosphere: %v", err)
	}
	if ok, _ := e.IsComboAvailable(ctx, alice); ok {
		t.Fatalf("combo available with two of three quests")
	}
	if _, err := e.CommitMessage(ctx, alice, "pulse"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if ok, _ := e.IsComboAvailable(ctx, alice); !ok {
		t.Fatalf("combo should be available")
	}

	rec.reset()
	r, err := e.ClaimDailyCombo(ctx, alice)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if r.Points != domain.ComboBonus {
		t.Fatalf("expected bonus %d, got %d", domain.ComboBonus, r.Points)
	}
	if k := rec.kinds(); len(k) != 1 || k[0] != domain.EventComboActivated {
		t.Fatalf("unexpected events %v", k)
	}
	_, err = e.ClaimDailyCombo(ctx, alice)
	expectErr(t, err, ErrComboAlreadyClaimed)
	if ok, _ := e.IsComboAvailable(ctx, alice); ok {
		t.Fatalf("combo still available after claim")
	}

	p := mustProfile(t, e, alice)
	if p.TotalPoints != 50+30+20+200 {
		t.Fatalf("unexpected total points %d", p.TotalPoints)
	}
	stats, _ := e.GlobalStats(ctx)
	if stats.TotalPointsDistributed != p.TotalPoints {
		t.Fatalf("stats %d != profile %d", stats.TotalPointsDistributed, p.TotalPoints)
	}

	clock.Advance(24 * time.Hour)
	if ok, _ := e.IsComboAvailable(ctx, alice); ok {
		t.Fatalf("combo must not carry over to the next day")
	}
	set, _ := e.CompletedQuestsToday(ctx, alice)
	if set.Len() != 0 {
		t.Fatalf("completed set should reset at rollover, got %v", set.IDs())
	}
}

func TestPauseBlocksWrites(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.DailyCheckin(ctx, bob); err != nil {
		t.Fatalf("checkin: %v", err)
	}

	expectErr(t, e.Pause(ctx, alice), ErrUnauthorized)
	if err := e.Pause(ctx, owner); err != nil {
		t.Fatalf("pause: %v", err)
	}
	expectErr(t, e.Pause(ctx, owner), ErrPaused)

	calls := map[string]func() error{
		"checkin":    func() error { _, err := e.DailyCheckin(ctx, alice); return err },
		"owner":      func() error { _, err := e.DailyCheckin(ctx, owner); return err },
		"relay":      func() error { _, err := e.RelaySignal(ctx, bob); return err },
		"atmosphere": func() error { _, err := e.UpdateAtmosphere(ctx, alice, 99); return err },
		"nudge":      func() error { _, err := e.NudgeFriend(ctx, alice, alice); return err },
		"no target":  func() error { _, err := e.NudgeFriend(ctx, alice, ""); return err },
		"message":    func() error { _, err := e.CommitMessage(ctx, alice, ""); return err },
		"predict":    func() error { _, err := e.PredictPulse(ctx, alice, 0); return err },
		"combo":      func() error { _, err := e.ClaimDailyCombo(ctx, alice); return err },
	}
	for name, fn := range calls {
		if err := fn(); !errors.Is(err, ErrPaused) {
			t.Fatalf("%s: expected paused, got %v", name, err)
		}
	}

	expectErr(t, e.Unpause(ctx, bob), ErrUnauthorized)
	if err := e.Unpause(ctx, owner); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	expectErr(t, e.Unpause(ctx, owner), ErrNotPaused)
	if _, err := e.DailyCheckin(ctx, alice); err != nil {
		t.Fatalf("checkin after unpause: %v", err)
	}
}

func TestTransferOwnership(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	expectErr(t, e.TransferOwnership(ctx, alice, alice), ErrUnauthorized)
	expectErr(t, e.TransferOwnership(ctx, owner, ""), ErrInvalidOwner)
	if err := e.TransferOwnership(ctx, owner, alice); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	expectErr(t, e.Pause(ctx, owner), ErrUnauthorized)
	if err := e.Pause(ctx, alice); err != nil {
		t.Fatalf("pause by new owner: %v", err)
	}
	g, _ := e.Gate(ctx)
	if g.Owner != alice || !g.Paused {
		t.Fatalf("unexpected gate %+v", g)
	}
}

func TestGenesisKeepsStoredOwner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	e := NewEngine(domain.NetworkBase, store)
	if _, err := e.DailyCheckin(ctx, alice); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if err := e.Genesis(ctx, owner); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	if err := e.Genesis(ctx, bob); err != nil {
		t.Fatalf("second genesis: %v", err)
	}
	if g, _ := e.Gate(ctx); g.Owner != owner {
		t.Fatalf("owner overwritten: %+v", g)
	}
}

func TestGlobalStatsCountsUsers(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	accounts := []domain.Account{"a1", "a2", "a3", "a4", "a5"}
	for _, a := range accounts {
		if _, err := e.DailyCheckin(ctx, a); err != nil {
			t.Fatalf("checkin %s: %v", a, err)
		}
	}
	// more quests by existing users must not bump totalUsers
	if _, err := e.RelaySignal(ctx, "a1"); err != nil {
		t.Fatalf("relay: %v", err)
	}
	s, err := e.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.TotalUsers != 5 || s.TotalCheckins != 5 || s.TotalPointsDistributed != 5*50+100 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestHasCompletedQuestToday(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.HasCompletedQuestToday(ctx, alice, 0); !errors.Is(err, ErrInvalidQuestID) {
		t.Fatalf("expected invalid quest id, got %v", err)
	}
	if _, err := e.DailyCheckin(ctx, alice); err != nil {
		t.Fatalf("checkin: %v", err)
	}
	done, err := e.HasCompletedQuestToday(ctx, alice, domain.QuestDailyCheckin)
	if err != nil || !done {
		t.Fatalf("expected checkin completed, got %v %v", done, err)
	}
	for _, id := range []domain.QuestID{domain.QuestReserved5, domain.QuestReserved10, domain.QuestRelaySignal} {
		if done, _ := e.HasCompletedQuestToday(ctx, alice, id); done {
			t.Fatalf("quest %d should not be completed", id)
		}
	}
}

func TestEmptyCallerRejected(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.DailyCheckin(context.Background(), "")
	expectErr(t, err, ErrInvalidAccount)
}

func TestPausedReportedBeforeEmptyCaller(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	if err := e.Pause(ctx, owner); err != nil {
		t.Fatalf("pause: %v", err)
	}

	_, err := e.DailyCheckin(ctx, "")
	expectErr(t, err, ErrPaused)
	_, err = e.CommitMessage(ctx, "", "")
	expectErr(t, err, ErrPaused)
	_, err = e.ClaimDailyCombo(ctx, "")
	expectErr(t, err, ErrPaused)
	expectErr(t, e.Unpause(ctx, ""), ErrUnauthorized)
}

func TestConcurrentCheckinsCountOnce(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.DailyCheckin(ctx, alice); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one successful checkin, got %d", succeeded)
	}
	s, _ := e.GlobalStats(ctx)
	if s.TotalUsers != 1 || s.TotalCheckins != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestErrorKinds(t *testing.T) {
	cases := map[error]Kind{
		ErrPaused:             KindAuthorization,
		ErrUnauthorized:       KindAuthorization,
		ErrInvalidWeatherCode: KindValidation,
		ErrSelfNudge:          KindValidation,
		ErrAlreadyCheckedIn:   KindState,
		ErrComboUnavailable:   KindState,
	}
	for err, kind := range cases {
		le, ok := AsError(err)
		if !ok || le.Kind != kind {
			t.Fatalf("%v: expected kind %v", err, kind)
		}
	}
	if _, ok := AsError(errors.New("boom")); ok {
		t.Fatalf("plain error classified as ledger error")
	}
}
