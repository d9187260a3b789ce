package handlers

import (
	"errors"
	"net/http"

	"github.com/go-authgate/dbrealm/internal/realm"
	"github.com/go-authgate/dbrealm/internal/services"

	"github.com/gin-gonic/gin"
)

// Error codes returned to callers. The two lookup failures stay
// distinguishable so the boundary can render different messages.
const (
	errUserNotFound = "user_not_found"
	errNoAuthority  = "no_authority"
	errServerError  = "server_error"
)

type PrincipalHandler struct {
	principalService *services.PrincipalService
}

func NewPrincipalHandler(ps *services.PrincipalService) *PrincipalHandler {
	return &PrincipalHandler{principalService: ps}
}

// principalResponse is the outward view of a resolved principal. The
// stored credential is deliberately absent.
type principalResponse struct {
	Username    string            `json:"username"`
	Enabled     bool              `json:"enabled"`
	Authorities []realm.Authority `json:"authorities"`
}

// GetPrincipal handles GET /api/principals/:username. The response
// carries the canonical username, enabled flag and authority set; the
// stored credential never leaves the server.
func (h *PrincipalHandler) GetPrincipal(c *gin.Context) {
	username := c.Param("username")

	principal, err := h.principalService.Lookup(c.Request.Context(), username)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, principalResponse{
			Username:    principal.Username,
			Enabled:     principal.Enabled,
			Authorities: principal.Authorities,
		})
	case errors.Is(err, realm.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             errUserNotFound,
			"error_description": "unknown user: " + username,
		})
	case errors.Is(err, realm.ErrNoAuthority):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             errNoAuthority,
			"error_description": "no authorities assigned to user: " + username,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": errServerError,
		})
	}
}
