package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/ledger"
)

// Hub pushes committed ledger events to connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	log     *slog.Logger
}

func NewHub(l *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     l,
	}
}

var _ ledger.Notifier = (*Hub)(nil)

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("ws client registered", "network", c.Network, "account", c.Account, "all", c.All, "clients", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.closeSend()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify never blocks on a slow client; a full queue disconnects it.
func (h *Hub) Notify(_ context.Context, events []domain.Event) {
	for i := range events {
		e := events[i]
		msg, err := json.Marshal(Envelope{Type: MsgEvent, Event: &e})
		if err != nil {
			h.log.Error("marshal ws event", "id", e.ID, "error", err)
			continue
		}

		var slow []*Client
		h.mu.RLock()
		for c := range h.clients {
			if !c.wants(e) {
				continue
			}
			if !c.trySend(msg) {
				slow = append(slow, c)
			}
		}
		h.mu.RUnlock()

		for _, c := range slow {
			h.log.Warn("ws client too slow, disconnecting", "account", c.Account)
			h.unregister(c)
		}
	}
}
