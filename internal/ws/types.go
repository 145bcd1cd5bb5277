package ws

import "pulse_ledger/internal/domain"

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady = "ready"
	MsgPong  = "pong"
	MsgEvent = "event"
	MsgError = "error"
)

// Envelope is the frame sent to clients.
type Envelope struct {
	Type    string         `json:"type"`
	Event   *domain.Event  `json:"event,omitempty"`
	Network domain.Network `json:"network,omitempty"`
	Account domain.Account `json:"account,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type inbound struct {
	Type string `json:"type"`
}
