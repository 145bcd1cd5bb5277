package handlers

import (
	"net/http"

	"pulse_ledger/internal/chain"
	"pulse_ledger/internal/ledger"

	"github.com/gin-gonic/gin"
)

type atmosphereRequest struct {
	WeatherCode *int `json:"weather_code" binding:"required"`
}

type nudgeRequest struct {
	Target string `json:"target" binding:"required"`
}

type messageRequest struct {
	Content string `json:"content"`
}

type predictRequest struct {
	Level *int `json:"level" binding:"required"`
}

func (h *Handler) DailyCheckin(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	rec, err := entry.Ledger.DailyCheckin(c.Request.Context(), s.Account)
	respond(c, entry, rec, err)
}

func (h *Handler) RelaySignal(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	rec, err := entry.Ledger.RelaySignal(c.Request.Context(), s.Account)
	respond(c, entry, rec, err)
}

func (h *Handler) UpdateAtmosphere(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	var req atmosphereRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weather_code is required"})
		return
	}
	rec, err := entry.Ledger.UpdateAtmosphere(c.Request.Context(), s.Account, *req.WeatherCode)
	respond(c, entry, rec, err)
}

func (h *Handler) NudgeFriend(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	var req nudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target is required"})
		return
	}
	// an unparseable target reaches the ledger as the zero account so a
	// paused gate is reported before it
	target, _ := entry.Adapter.ParseAccount(req.Target)
	rec, err := entry.Ledger.NudgeFriend(c.Request.Context(), s.Account, target)
	respond(c, entry, rec, err)
}

func (h *Handler) CommitMessage(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	rec, err := entry.Ledger.CommitMessage(c.Request.Context(), s.Account, req.Content)
	respond(c, entry, rec, err)
}

func (h *Handler) PredictPulse(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level is required"})
		return
	}
	rec, err := entry.Ledger.PredictPulse(c.Request.Context(), s.Account, *req.Level)
	respond(c, entry, rec, err)
}

func (h *Handler) ClaimDailyCombo(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	rec, err := entry.Ledger.ClaimDailyCombo(c.Request.Context(), s.Account)
	respond(c, entry, rec, err)
}

func respond(c *gin.Context, entry chain.Entry, rec ledger.Receipt, err error) {
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
