package handlers

import (
	"context"
	"errors"
	"net/http"

	"pulse_ledger/internal/chain"
	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/http/middleware"
	"pulse_ledger/internal/ledger"
	"pulse_ledger/internal/logger"
	"pulse_ledger/internal/repository"
	"pulse_ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// EventReader serves the persisted notification log.
type EventReader interface {
	GetByAccount(ctx context.Context, network domain.Network, account domain.Account, limit int) ([]domain.Event, error)
}

type Handler struct {
	Registry *chain.Registry
	// Events is nil when the ledger runs without a database.
	Events EventReader
}

func NewHandler(reg *chain.Registry, events EventReader) *Handler {
	return &Handler{Registry: reg, Events: events}
}

// caller returns the resolved network entry and the authenticated session.
func caller(c *gin.Context) (chain.Entry, service.Session, bool) {
	entry, ok := middleware.EntryFrom(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown network"})
		return chain.Entry{}, service.Session{}, false
	}
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return chain.Entry{}, service.Session{}, false
	}
	return entry, s, true
}

// accountParam parses a path or body account in the network's format.
func accountParam(c *gin.Context, entry chain.Entry, raw string) (domain.Account, bool) {
	acc, err := entry.Adapter.ParseAccount(raw)
	if err != nil {
		fail(c, entry, ledger.ErrInvalidAccount)
		return "", false
	}
	return acc, true
}

func statusFor(le *ledger.Error) int {
	switch {
	case le == ledger.ErrMessageNotFound:
		return http.StatusNotFound
	case le.Kind == ledger.KindAuthorization:
		return http.StatusForbidden
	case le.Kind == ledger.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

// fail writes a rejection in the network's encoding, or a 5xx for
// infrastructure errors.
func fail(c *gin.Context, entry chain.Entry, err error) {
	if le, ok := ledger.AsError(err); ok {
		middleware.Rejections.WithLabelValues(string(entry.Adapter.Network()), le.Reason).Inc()
		f := entry.Adapter.EncodeFailure(le)
		c.JSON(statusFor(le), gin.H{
			"error":   le.Reason,
			"kind":    le.Kind.String(),
			"code":    f.Code,
			"message": f.Message,
		})
		return
	}

	log := logger.FromContext(c.Request.Context())
	switch {
	case errors.Is(err, ledger.ErrNotInitialized):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ledger not initialized"})
	case errors.Is(err, repository.ErrTxConflict):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ledger busy, retry"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request cancelled"})
	default:
		log.Error("ledger call failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
