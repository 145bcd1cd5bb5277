package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/ledger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func sample() []domain.Event {
	return []domain.Event{
		{ID: "1", Network: domain.NetworkBase, Kind: domain.EventUserJoined, Account: "a"},
		{ID: "2", Network: domain.NetworkBase, Kind: domain.EventQuestCompleted, Account: "a", QuestID: 1, Points: 50},
		{ID: "3", Network: domain.NetworkBase, Kind: domain.EventComboActivated, Account: "a", Points: 200},
	}
}

func TestBusFanOutInOrder(t *testing.T) {
	var got []string
	record := func(tag string) ledger.Notifier {
		return ledger.NotifierFunc(func(_ context.Context, events []domain.Event) {
			for _, e := range events {
				got = append(got, tag+e.ID)
			}
		})
	}
	bus := NewBus(record("x"))
	bus.Subscribe(record("y"))
	bus.Notify(context.Background(), sample())

	want := []string{"x1", "x2", "x3", "y1", "y2", "y3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMetricsSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewMetricsSink(reg)
	s.Notify(context.Background(), sample())

	if v := testutil.ToFloat64(s.points.WithLabelValues("base")); v != 250 {
		t.Fatalf("expected 250 points, got %v", v)
	}
	if v := testutil.ToFloat64(s.quests.WithLabelValues("base", "1")); v != 1 {
		t.Fatalf("expected 1 checkin, got %v", v)
	}
	if v := testutil.ToFloat64(s.events.WithLabelValues("base", "user_joined")); v != 1 {
		t.Fatalf("expected 1 join, got %v", v)
	}
}

type fakeWriter struct {
	mu      sync.Mutex
	calls   int
	events  []domain.Event
	err     error
	ctxErr  error
	started chan struct{}
	release chan struct{}
}

func (f *fakeWriter) CreateBatch(ctx context.Context, events []domain.Event) error {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.events = append(f.events, events...)
	f.ctxErr = ctx.Err()
	return f.err
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestAuditSinkSurvivesCanceledRequest(t *testing.T) {
	w := &fakeWriter{}
	s := NewAuditSink(w, quiet)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Notify(ctx, sample())
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if w.calls != 1 || len(w.events) != 3 {
		t.Fatalf("unexpected writes %+v", w)
	}
	if w.ctxErr != nil {
		t.Fatalf("write context should not inherit cancellation, got %v", w.ctxErr)
	}
}

func TestAuditSinkKeepsWritingAfterFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("db down")}
	s := NewAuditSink(w, quiet)
	s.Notify(context.Background(), sample())
	s.Notify(context.Background(), sample())
	s.Close()
	if w.calls != 2 {
		t.Fatalf("expected two write attempts, got %d", w.calls)
	}
}

func TestAuditSinkNotifyDoesNotWaitForWriter(t *testing.T) {
	w := &fakeWriter{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewAuditSink(w, quiet)

	returned := make(chan struct{})
	go func() {
		s.Notify(context.Background(), sample())
		s.Notify(context.Background(), sample())
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatalf("notify blocked on a slow writer")
	}

	close(w.release)
	s.Close()
	if w.count() != 2 || len(w.events) != 6 {
		t.Fatalf("queued batches not written: %d calls, %d events", w.calls, len(w.events))
	}
}

func TestAuditSinkDropsWhenQueueFull(t *testing.T) {
	w := &fakeWriter{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewAuditSink(w, quiet)

	s.Notify(context.Background(), sample()[:1])
	select {
	case <-w.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not pick up the first batch")
	}
	for i := 0; i < auditQueueSize+5; i++ {
		s.Notify(context.Background(), sample()[:1])
	}

	close(w.release)
	s.Close()
	if w.count() != auditQueueSize+1 {
		t.Fatalf("expected %d writes, got %d", auditQueueSize+1, w.count())
	}

	// after close batches are dropped, not sent on the closed queue
	s.Notify(context.Background(), sample())
	if w.count() != auditQueueSize+1 {
		t.Fatalf("write after close")
	}
}

func TestRedisSinkPublishes(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	s := NewRedisSink(client, "pulse:test", quiet)
	sub := client.Subscribe(ctx, s.Channel(domain.NetworkBase))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s.Notify(ctx, sample()[:1])

	select {
	case msg := <-sub.Channel():
		var e domain.Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if e.ID != "1" || e.Kind != domain.EventUserJoined {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no message received")
	}
}
