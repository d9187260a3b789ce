package handlers

import (
	"net/http"

	"github.com/go-authgate/dbrealm/internal/core"
	"github.com/go-authgate/dbrealm/internal/realm"
	"github.com/go-authgate/dbrealm/internal/store"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store *store.Store
	cache core.Cache[realm.Principal] // nil when caching is disabled
}

func NewHealthHandler(s *store.Store, c core.Cache[realm.Principal]) *HealthHandler {
	return &HealthHandler{store: s, cache: c}
}

// Healthz handles GET /healthz: database first, then the cache backend
// when one is configured.
func (h *HealthHandler) Healthz(c *gin.Context) {
	if err := h.store.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"reason": "database unreachable",
		})
		return
	}

	if h.cache != nil {
		if err := h.cache.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"reason": "cache unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
