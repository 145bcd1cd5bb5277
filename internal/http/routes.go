package http

import (
	"time"

	"pulse_ledger/internal/chain"
	"pulse_ledger/internal/http/handlers"
	"pulse_ledger/internal/http/middleware"
	"pulse_ledger/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Limits configures the two rate limiter tiers.
type Limits struct {
	APIRequests   int
	APIWindow     time.Duration
	QuestRequests int
	QuestWindow   time.Duration
}

type Deps struct {
	Registry      *chain.Registry
	Events        handlers.EventReader
	Health        *handlers.HealthHandler
	Hub           *ws.Hub
	Limiter       *middleware.RateLimiter
	Limits        Limits
	AllowedOrigin string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Registry, d.Events)

	r.Use(middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(d.AllowedOrigin))

	// Health checks (no rate limiting)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Hub != nil {
		r.GET("/ws", ws.HandleWS(d.Hub, d.AllowedOrigin))
	}

	v1 := r.Group("/api/v1")
	v1.Use(d.Limiter.Limit("api", d.Limits.APIRequests, d.Limits.APIWindow, middleware.ByIP))
	v1.GET("/networks", h.Networks)

	n := v1.Group("/:network", middleware.Network(d.Registry))
	{
		n.GET("/day", h.CurrentDay)
		n.GET("/stats", h.GlobalStats)
		n.GET("/gate", h.Gate)
		n.GET("/profiles/:account", h.UserProfile)
		n.GET("/quests/:account", h.CompletedQuests)
		n.GET("/quests/:account/:questId", h.HasCompletedQuest)
		n.GET("/combo/:account", h.ComboAvailable)
		n.GET("/messages/:account", h.MessageCount)
		n.GET("/messages/:account/:index", h.UserMessage)
		n.GET("/predictions/:account", h.PredictionToday)
		n.GET("/events/:account", h.AccountEvents)
	}

	// Quest writes are limited per account, not per IP.
	questRL := d.Limiter.Limit("quest", d.Limits.QuestRequests, d.Limits.QuestWindow, middleware.ByAccount)
	quests := n.Group("", middleware.Auth(), questRL)
	{
		quests.POST("/quests/checkin", h.DailyCheckin)
		quests.POST("/quests/relay", h.RelaySignal)
		quests.POST("/quests/atmosphere", h.UpdateAtmosphere)
		quests.POST("/quests/nudge", h.NudgeFriend)
		quests.POST("/quests/message", h.CommitMessage)
		quests.POST("/quests/predict", h.PredictPulse)
		quests.POST("/combo/claim", h.ClaimDailyCombo)
	}

	admin := n.Group("/admin", middleware.Auth())
	{
		admin.POST("/pause", h.Pause)
		admin.POST("/unpause", h.Unpause)
		admin.POST("/transfer-ownership", h.TransferOwnership)
	}
}
