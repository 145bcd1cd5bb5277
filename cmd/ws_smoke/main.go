package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"pulse_ledger/internal/cli"
	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/service"
	"pulse_ledger/internal/ws"
)

const (
	accountA = "0x000000000000000000000000000000000000a001"
	accountB = "0x000000000000000000000000000000000000b002"
)

// ws_smoke checks in two accounts against a running server and expects the
// live notifications on their sockets.
func main() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	if err := service.InitJWT(jwtSecret); err != nil {
		log.Fatal(err)
	}

	token := func(acc string) string {
		t, err := service.GenerateJWT(service.Session{Network: domain.NetworkBase, Account: domain.Account(acc)}, time.Hour)
		if err != nil {
			log.Fatalf("gen token %s: %v", acc, err)
		}
		return t
	}
	tokenA, tokenB := token(accountA), token(accountB)

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	dial := func(tok string) *websocket.Conn {
		url := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, tok)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			log.Fatalf("dial: %v", err)
		}
		return conn
	}
	connA, connB := dial(tokenA), dial(tokenB)
	defer connA.Close()
	defer connB.Close()

	waitFor := func(conn *websocket.Conn, name string, kind domain.EventKind) {
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			conn.SetReadDeadline(deadline)
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Fatalf("%s read: %v", name, err)
			}
			var env ws.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			if env.Type == ws.MsgEvent && env.Event != nil && env.Event.Kind == kind {
				log.Printf("%s got %s: %s", name, kind, msg)
				return
			}
		}
		log.Fatalf("%s: no %s event", name, kind)
	}

	api := fmt.Sprintf("http://127.0.0.1:%s", port)
	ctx := context.Background()

	// a rerun on the same day is rejected with 409 and emits nothing
	run := func(name, tok, op string, body any, conn *websocket.Conn, kind domain.EventKind) {
		_, err := cli.NewClient(api, tok).Quest(ctx, domain.NetworkBase, op, body)
		var apiErr *cli.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			log.Printf("%s %s: %s", name, op, apiErr.Reason)
			return
		}
		if err != nil {
			log.Fatalf("%s %s: %v", name, op, err)
		}
		waitFor(conn, name, kind)
	}

	run("A", tokenA, "checkin", nil, connA, domain.EventStreakUpdated)
	run("B", tokenB, "checkin", nil, connB, domain.EventStreakUpdated)
	run("A", tokenA, "nudge", map[string]string{"target": accountB}, connB, domain.EventFriendNudged)

	log.Println("smoke test finished")
}
