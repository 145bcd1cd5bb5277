package middleware

import (
	"net/http"
	"strings"

	"pulse_ledger/internal/chain"
	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey = "session"
	entryKey   = "ledger_entry"
)

// Network resolves the :network path parameter to its ledger entry.
func Network(reg *chain.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := reg.Lookup(domain.Network(strings.ToLower(c.Param("network"))))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown network"})
			return
		}
		c.Set(entryKey, entry)
		c.Next()
	}
}

func EntryFrom(c *gin.Context) (chain.Entry, bool) {
	v, ok := c.Get(entryKey)
	if !ok {
		return chain.Entry{}, false
	}
	e, ok := v.(chain.Entry)
	return e, ok
}

// Auth requires a bearer token issued for the network of the route.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		session, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if entry, ok := EntryFrom(c); ok && entry.Adapter.Network() != session.Network {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token issued for another network"})
			return
		}
		session.Account, err = chain.Canonical(session.Network, session.Account)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token account"})
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (service.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return service.Session{}, false
	}
	s, ok := v.(service.Session)
	return s, ok
}
