package repository

import (
	"context"
	"encoding/json"

	"pulse_ledger/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository persists committed ledger events as an append-only log.
type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const insertEvent = `
	INSERT INTO ledger_events (id, network, kind, account, day, quest_id, points, data, created_at)
	VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO NOTHING
`

func eventArgs(e domain.Event) []any {
	data, err := json.Marshal(e.Data)
	if err != nil || e.Data == nil {
		data = []byte("{}")
	}
	return []any{e.ID, e.Network, e.Kind, e.Account, e.Day, int16(e.QuestID), e.Points, data, e.CreatedAt}
}

// Create inserts one event
func (r *EventRepository) Create(ctx context.Context, e domain.Event) error {
	_, err := r.db.Exec(ctx, insertEvent, eventArgs(e)...)
	return err
}

// CreateBatch inserts the events of one call in a single round trip.
func (r *EventRepository) CreateBatch(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(insertEvent, eventArgs(e)...)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// GetByAccount returns the newest events of an account first.
func (r *EventRepository) GetByAccount(ctx context.Context, network domain.Network, account domain.Account, limit int) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, network, kind, account, day, quest_id, points, data, created_at
		FROM ledger_events
		WHERE network = $1 AND account = $2
		ORDER BY created_at DESC, id
		LIMIT $3
	`, network, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetRecent returns the newest events of a network.
func (r *EventRepository) GetRecent(ctx context.Context, network domain.Network, limit int) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, network, kind, account, day, quest_id, points, data, created_at
		FROM ledger_events
		WHERE network = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, network, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var (
			e       domain.Event
			questID int16
			data    []byte
		)
		if err := rows.Scan(&e.ID, &e.Network, &e.Kind, &e.Account, &e.Day, &questID, &e.Points, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.QuestID = domain.QuestID(questID)
		if len(data) > 0 && string(data) != "{}" {
			if err := json.Unmarshal(data, &e.Data); err != nil {
				e.Data = nil
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
