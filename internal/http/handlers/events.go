package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// AccountEvents lists the newest persisted notifications of an account.
func (h *Handler) AccountEvents(c *gin.Context) {
	entry, acc, ok := subject(c)
	if !ok {
		return
	}
	if h.Events == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event log requires a database"})
		return
	}

	limit := defaultEventLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.Events.GetByAccount(c.Request.Context(), entry.Adapter.Network(), acc, limit)
	if err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
