package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pulse_ledger/internal/chain"
	"pulse_ledger/internal/config"
	"pulse_ledger/internal/db"
	"pulse_ledger/internal/events"
	httpServer "pulse_ledger/internal/http"
	"pulse_ledger/internal/http/handlers"
	"pulse_ledger/internal/http/middleware"
	"pulse_ledger/internal/ledger"
	"pulse_ledger/internal/logger"
	"pulse_ledger/internal/migrations"
	"pulse_ledger/internal/repository"
	"pulse_ledger/internal/service"
	"pulse_ledger/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if err := service.InitJWT(cfg.JWTSecret); err != nil {
		logger.Fatal("jwt init failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			logger.Fatal("database connect failed", "error", err)
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			applied, err := migrations.Apply(ctx, pool)
			if err != nil {
				logger.Fatal("migrations failed", "error", err)
			}
			logger.Info("migrations applied", "files", applied)
		}
	} else {
		logger.Warn("DATABASE_URL not set; ledger state lives in memory only")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
	}

	hub := ws.NewHub(logger.With("component", "ws"))
	bus := events.NewBus(
		events.NewLogSink(logger.With("component", "events")),
		events.NewMetricsSink(prometheus.DefaultRegisterer),
		hub,
	)
	var eventRepo *repository.EventRepository
	if pool != nil {
		eventRepo = repository.NewEventRepository(pool)
		auditSink := events.NewAuditSink(eventRepo, logger.With("component", "audit"))
		defer auditSink.Close()
		bus.Subscribe(auditSink)
	}
	if rdb != nil {
		bus.Subscribe(events.NewRedisSink(rdb, cfg.RedisEventsChannel, logger.With("component", "redis")))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, logger.With("component", "kafka"))
		defer kafkaSink.Close()
		bus.Subscribe(kafkaSink)
	}

	reg := chain.NewRegistry()
	for _, n := range cfg.Networks {
		adapter, err := chain.AdapterFor(n)
		if err != nil {
			logger.Fatal("unsupported network", "network", n, "error", err)
		}
		var store ledger.Store = ledger.NewMemoryStore()
		if pool != nil {
			store = repository.NewLedgerStore(pool, n)
		}
		engine := ledger.NewEngine(n, store,
			ledger.WithNotifier(bus),
			ledger.WithLogger(logger.With("network", n)),
		)
		if err := engine.Genesis(ctx, cfg.Owners[n]); err != nil {
			logger.Fatal("ledger genesis failed", "network", n, "error", err)
		}
		if err := reg.Register(adapter, engine); err != nil {
			logger.Fatal("register network failed", "network", n, "error", err)
		}
		logger.Info("network ready", "network", n)
	}

	deps := map[string]handlers.Pinger{}
	if pool != nil {
		deps["database"] = pool
	}
	if rdb != nil {
		deps["redis"] = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	routes := httpServer.Deps{
		Registry:      reg,
		Health:        handlers.NewHealthHandler(version, deps),
		Hub:           hub,
		Limiter:       middleware.NewRateLimiter(rdb),
		AllowedOrigin: cfg.AllowedOrigin,
		Limits: httpServer.Limits{
			APIRequests:   cfg.APIRateLimit,
			APIWindow:     cfg.APIRateWindow,
			QuestRequests: cfg.QuestRateLimit,
			QuestWindow:   cfg.QuestRateWindow,
		},
	}
	if eventRepo != nil {
		routes.Events = eventRepo
	}
	httpServer.RegisterRoutes(r, routes)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "port", cfg.AppPort, "version", version, "networks", reg.Networks())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited with error", "error", err)
	}
	logger.Info("server exited")
}
