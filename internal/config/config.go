package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pulse_ledger/internal/chain"
	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AllowedOrigin string
	LogLevel      string
	LogJSON       bool

	// Empty DatabaseURL selects the in-memory store.
	DatabaseURL string
	DBMaxConns  int32
	AutoMigrate bool
	JWTSecret   string
	TokenTTL    time.Duration
	Networks    []domain.Network
	Owners      map[domain.Network]domain.Account

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisEventsChannel string

	KafkaBrokers []string
	KafkaTopic   string

	APIRateLimit    int
	APIRateWindow   time.Duration
	QuestRateLimit  int
	QuestRateWindow time.Duration
}

// Load reads .env (if present) and the environment; invalid config is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// Parse builds a Config from a lookup function.
func Parse(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:            withDefault(getenv("APP_PORT"), "8080"),
		AllowedOrigin:      getenv("ALLOWED_ORIGIN"),
		LogLevel:           withDefault(getenv("LOG_LEVEL"), "info"),
		LogJSON:            getenv("LOG_JSON") == "true",
		DatabaseURL:        getenv("DATABASE_URL"),
		AutoMigrate:        getenv("AUTO_MIGRATE") == "true",
		JWTSecret:          getenv("JWT_SECRET"),
		RedisAddr:          getenv("REDIS_ADDR"),
		RedisPassword:      getenv("REDIS_PASSWORD"),
		RedisEventsChannel: withDefault(getenv("REDIS_EVENTS_CHANNEL"), "pulse:events"),
		KafkaTopic:         withDefault(getenv("KAFKA_TOPIC"), "pulse-events"),
		Owners:             make(map[domain.Network]domain.Account),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	var err error
	if cfg.DBMaxConns, err = positiveInt32(getenv, "DB_MAX_CONNS", 20); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = nonNegativeInt(getenv, "REDIS_DB", 0); err != nil {
		return nil, err
	}
	ttl, err := positiveInt(getenv, "TOKEN_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.TokenTTL = time.Duration(ttl) * time.Hour

	if cfg.APIRateLimit, err = positiveInt(getenv, "API_RATE_LIMIT", 120); err != nil {
		return nil, err
	}
	window, err := positiveInt(getenv, "API_RATE_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.APIRateWindow = time.Duration(window) * time.Second

	if cfg.QuestRateLimit, err = positiveInt(getenv, "QUEST_RATE_LIMIT", 30); err != nil {
		return nil, err
	}
	window, err = positiveInt(getenv, "QUEST_RATE_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.QuestRateWindow = time.Duration(window) * time.Second

	cfg.KafkaBrokers = splitList(getenv("KAFKA_BROKERS"))

	networks := splitList(withDefault(getenv("NETWORKS"), "base,stacks"))
	seen := make(map[domain.Network]bool)
	for _, raw := range networks {
		n := domain.Network(strings.ToLower(raw))
		if !n.Valid() {
			return nil, fmt.Errorf("NETWORKS: unknown network %q", raw)
		}
		if seen[n] {
			continue
		}
		seen[n] = true

		key := strings.ToUpper(string(n)) + "_OWNER"
		owner := strings.TrimSpace(getenv(key))
		if owner == "" {
			return nil, fmt.Errorf("%s is not set", key)
		}
		adapter, err := chain.AdapterFor(n)
		if err != nil {
			return nil, err
		}
		canonical, err := adapter.ParseAccount(owner)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		cfg.Networks = append(cfg.Networks, n)
		cfg.Owners[n] = canonical
	}
	if len(cfg.Networks) == 0 {
		return nil, fmt.Errorf("NETWORKS is empty")
	}

	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func positiveInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func nonNegativeInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func positiveInt32(getenv func(string) string, key string, def int32) (int32, error) {
	n, err := positiveInt(getenv, key, int(def))
	if err != nil {
		return 0, err
	}
	if n > 1<<31-1 {
		return 0, fmt.Errorf("%s is too large", key)
	}
	return int32(n), nil
}
