package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type transferRequest struct {
	NewOwner string `json:"new_owner" binding:"required"`
}

// Pause, Unpause and TransferOwnership leave the owner check to the ledger so
// that a non-owner gets the network's unauthorized encoding.
func (h *Handler) Pause(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	if err := entry.Ledger.Pause(c.Request.Context(), s.Account); err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (h *Handler) Unpause(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	if err := entry.Ledger.Unpause(c.Request.Context(), s.Account); err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

func (h *Handler) TransferOwnership(c *gin.Context) {
	entry, s, ok := caller(c)
	if !ok {
		return
	}
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new_owner is required"})
		return
	}
	owner, ok := accountParam(c, entry, req.NewOwner)
	if !ok {
		return
	}
	if err := entry.Ledger.TransferOwnership(c.Request.Context(), s.Account, owner); err != nil {
		fail(c, entry, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner})
}
