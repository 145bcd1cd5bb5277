package service

import (
	"errors"
	"sync"
	"time"

	"pulse_ledger/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrJWTNotInitialized = errors.New("jwt secret not initialized")
	ErrInvalidToken      = errors.New("invalid token")
)

// DefaultTokenTTL is used when GenerateJWT gets a non-positive ttl.
const DefaultTokenTTL = 24 * time.Hour

var (
	jwtMu     sync.RWMutex
	jwtSecret []byte
)

// Session identifies the wallet session a token was issued for.
type Session struct {
	Network domain.Network
	Account domain.Account
}

type sessionClaims struct {
	Network string `json:"network"`
	Account string `json:"account"`
	jwt.RegisteredClaims
}

func InitJWT(secret string) error {
	if secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	jwtMu.Lock()
	jwtSecret = []byte(secret)
	jwtMu.Unlock()
	return nil
}

func secret() ([]byte, error) {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	if len(jwtSecret) == 0 {
		return nil, ErrJWTNotInitialized
	}
	return jwtSecret, nil
}

// GenerateJWT signs a session token. The account must already be in the
// network's canonical form.
func GenerateJWT(s Session, ttl time.Duration) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := sessionClaims{
		Network: string(s.Network),
		Account: string(s.Account),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(s.Account),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseJWT validates signature and time claims.
func ParseJWT(tokenString string) (Session, error) {
	key, err := secret()
	if err != nil {
		return Session{}, err
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	s := Session{Network: domain.Network(claims.Network), Account: domain.Account(claims.Account)}
	if !s.Network.Valid() || s.Account.IsZero() {
		return Session{}, ErrInvalidToken
	}
	return s, nil
}
