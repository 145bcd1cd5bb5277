package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"pulse_ledger/internal/chain"
	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/service"

	"github.com/joho/godotenv"
)

// issue_token mints a bearer token for an account, for smoke tests and
// operator use with pulsectl.
func main() {
	_ = godotenv.Load()

	network := flag.String("network", string(domain.NetworkBase), "network: base or stacks")
	account := flag.String("account", "", "account in the network's address format")
	ttl := flag.Duration("ttl", service.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	if err := service.InitJWT(os.Getenv("JWT_SECRET")); err != nil {
		log.Fatal(err)
	}
	adapter, err := chain.AdapterFor(domain.Network(strings.ToLower(*network)))
	if err != nil {
		log.Fatal(err)
	}
	acc, err := adapter.ParseAccount(*account)
	if err != nil {
		log.Fatalf("account: %v", err)
	}

	token, err := service.GenerateJWT(service.Session{Network: adapter.Network(), Account: acc}, *ttl)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "issued for %s on %s, expires %s\n", acc, adapter.Network(), time.Now().Add(*ttl).Format(time.RFC3339))
}
