package middleware

import (
	"errors"
	"net/http"

	"github.com/go-authgate/dbrealm/internal/realm"
	"github.com/go-authgate/dbrealm/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderAuthUser carries the username asserted by the fronting
	// authenticator. The middleware trusts it; deploy behind a proxy
	// that strips the header from client requests.
	HeaderAuthUser = "X-Auth-User"

	contextPrincipal = "principal"
)

// RequireAuthority resolves the principal named by the X-Auth-User
// header and requires it to be enabled and, when authority is
// non-empty, to hold that authority. The resolved principal is stored
// in the gin context for downstream handlers.
func RequireAuthority(ps *services.PrincipalService, authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(HeaderAuthUser)
		if username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + HeaderAuthUser + " header",
			})
			return
		}

		principal, err := ps.Lookup(c.Request.Context(), username)
		switch {
		case err == nil:
		case errors.Is(err, realm.ErrUserNotFound), errors.Is(err, realm.ErrNoAuthority):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "access denied",
			})
			return
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "principal lookup failed",
			})
			return
		}

		if !principal.Enabled {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "account disabled",
			})
			return
		}

		if authority != "" && !principal.HasAuthority(authority) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "missing required authority",
			})
			return
		}

		c.Set(contextPrincipal, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the principal stored by RequireAuthority.
func PrincipalFromContext(c *gin.Context) (*realm.Principal, bool) {
	value, exists := c.Get(contextPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*realm.Principal)
	return principal, ok
}
