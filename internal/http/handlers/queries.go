package handlers

import (
	"net/http"
	"strconv"

	"pulse_ledger/internal/chain"
	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func network(c *gin.Context) (chain.Entry, bool) {
	entry, ok := middleware.EntryFrom(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown network"})
	}
	return entry, ok
}

// subject resolves the network entry and the :account path parameter.
func subject(c *gin.Context) (chain.Entry, domain.Account, bool) {
	entry, ok := network(c)
	if !ok {
		return chain.Entry{}, "", false
	}
	acc, ok := accountParam(c, entry, c.Param("account"))
	return entry, acc, ok
}

func (h *Handler) CurrentDay(c *gin.Context) {
	entry, ok := network(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": entry.Ledger.CurrentDay()})
}

func (h *Handler) GlobalStats(c *gin.Context) {
	entry, ok := network(c)
	if !ok {
		return
	}
	stats, err := entry.Ledger.GlobalStats(c.Request.Context())
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Gate(c *gin.Context) {
	entry, ok := network(c)
	if !ok {
		return
	}
	g, err := entry.Ledger.Gate(c.Request.Context())
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// UserProfile answers in the network's profile layout; unknown accounts
// read as an empty profile.
func (h *Handler) UserProfile(c *gin.Context) {
	entry, acc, ok := subject(c)
	if !ok {
		return
	}
	p, err := entry.Ledger.UserProfile(c.Request.Context(), acc)
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, entry.Adapter.ProfileView(p))
}

func (h *Handler) CompletedQuests(c *gin.Context) {
	entry, acc, ok := subject(c)
	if !ok {
		return
	}
	set, err := entry.Ledger.CompletedQuestsToday(c.Request.Context(), acc)
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"day":       entry.Ledger.CurrentDay(),
		"completed": set.IDs(),
	})
}

func (h *Handler) HasCompletedQuest(c *gin.Context) {
	entry, acc, ok := subject(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.Param("questId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest id"})
		return
	}
	done, err := entry.Ledger.HasCompletedQuestToday(c.Request.Context(), acc, domain.QuestID(n))
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quest_id": n, "completed": done})
}

func (h *Handler) ComboAvailable(c *gin.Context) {
	entry, acc, ok := subject(c)
	if !ok {
		return
	}
	avail, err := entry.Ledger.IsComboAvailable(c.Request.Context(), acc)
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": avail, "bonus": domain.ComboBonus})
}

func (h *Handler) MessageCount(c *gin.Context) {
	entry, acc, ok := subject(c)
	if !ok {
		return
	}
	n, err := entry.Ledger.MessageCount(c.Request.Context(), acc)
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) UserMessage(c *gin.Context) {
	entry, acc, ok := subject(c)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message index"})
		return
	}
	m, err := entry.Ledger.UserMessage(c.Request.Context(), acc, idx)
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) PredictionToday(c *gin.Context) {
	entry, acc, ok := subject(c)
	if !ok {
		return
	}
	p, found, err := entry.Ledger.PredictionToday(c.Request.Context(), acc)
	if err != nil {
		fail(c, entry, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"prediction": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prediction": p})
}

// Networks lists the networks this server serves.
func (h *Handler) Networks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"networks": h.Registry.Networks()})
}
