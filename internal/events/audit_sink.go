package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pulse_ledger/internal/domain"
)

const auditQueueSize = 1024

// EventWriter persists events; implemented by repository.EventRepository.
type EventWriter interface {
	CreateBatch(ctx context.Context, events []domain.Event) error
}

// AuditSink queues committed batches and writes them to the event log from
// one worker, in commit order. Notify never waits on the database; when the
// queue is full the batch is dropped and logged.
type AuditSink struct {
	repo    EventWriter
	log     *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan []domain.Event
	done   chan struct{}
}

func NewAuditSink(repo EventWriter, l *slog.Logger) *AuditSink {
	s := &AuditSink{
		repo:    repo,
		log:     l,
		timeout: 5 * time.Second,
		queue:   make(chan []domain.Event, auditQueueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AuditSink) Notify(_ context.Context, events []domain.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn("audit sink closed, dropping events", "count", len(events))
		return
	}
	select {
	case s.queue <- events:
	default:
		s.log.Error("audit queue full, dropping events", "count", len(events))
	}
}

func (s *AuditSink) run() {
	defer close(s.done)
	for batch := range s.queue {
		s.write(batch)
	}
}

func (s *AuditSink) write(batch []domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		s.log.Error("failed to write event log", "count", len(batch), "error", err)
	}
}

// Close stops accepting batches and waits for the queued ones to be written.
func (s *AuditSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
	return nil
}
