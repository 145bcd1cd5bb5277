package service

import (
	"errors"
	"testing"
	"time"

	"pulse_ledger/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	if err := InitJWT("test-secret"); err != nil {
		t.Fatalf("init: %v", err)
	}
	s := Session{Network: domain.NetworkStacks, Account: "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"}

	tok, err := GenerateJWT(s, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err := ParseJWT(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != s {
		t.Fatalf("expected %+v, got %+v", s, got)
	}
}

func TestJWTRejectsExpiredAndForeign(t *testing.T) {
	if err := InitJWT("test-secret"); err != nil {
		t.Fatalf("init: %v", err)
	}
	past := time.Now().Add(-2 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Network: "base",
		Account: "0xabc",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	})
	tok, _ := expired.SignedString([]byte("test-secret"))
	if _, err := ParseJWT(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for expired, got %v", err)
	}

	foreign, _ := GenerateJWT(Session{Network: domain.NetworkBase, Account: "0xabc"}, time.Hour)
	if err := InitJWT("other-secret"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := ParseJWT(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for foreign key, got %v", err)
	}

	unknown := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Network: "solana",
		Account: "x",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok, _ = unknown.SignedString([]byte("other-secret"))
	if _, err := ParseJWT(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for unknown network, got %v", err)
	}
}

func TestInitJWTRequiresSecret(t *testing.T) {
	if err := InitJWT(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
