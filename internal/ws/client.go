package ws

import (
	"encoding/json"
	"sync"
	"time"

	"pulse_ledger/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 256
)

// Client is one websocket subscriber. Without All it only receives events
// about its own account: its own transitions and nudges aimed at it.
type Client struct {
	Network domain.Network
	Account domain.Account
	All     bool

	conn *websocket.Conn
	hub  *Hub

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, network domain.Network, account domain.Account, all bool) *Client {
	return &Client{
		Network: network,
		Account: account,
		All:     all,
		conn:    conn,
		hub:     hub,
		send:    make(chan []byte, sendBuffer),
	}
}

func (c *Client) wants(e domain.Event) bool {
	if e.Network != c.Network {
		return false
	}
	if c.All || e.Account == c.Account {
		return true
	}
	target, _ := e.Data[domain.DataTarget].(string)
	return e.Kind == domain.EventFriendNudged && domain.Account(target) == c.Account
}

// trySend reports false when the queue is full or already closed.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}

func (c *Client) enqueue(env Envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.trySend(msg)
}

// Run blocks until the connection is closed.
func (c *Client) Run() {
	c.hub.register(c)
	c.enqueue(Envelope{Type: MsgReady, Network: c.Network, Account: c.Account})
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("ws read error", "account", c.Account, "error", err)
			}
			return
		}
		var in inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			c.enqueue(Envelope{Type: MsgError, Error: "invalid message"})
			continue
		}
		switch in.Type {
		case MsgPing:
			c.enqueue(Envelope{Type: MsgPong})
		default:
			c.enqueue(Envelope{Type: MsgError, Error: "unknown message type"})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
