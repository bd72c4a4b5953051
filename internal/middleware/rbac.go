package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/response"
)

// ContextAdminKey is the gin context key storing the admin principal.
const ContextAdminKey = "adminPrincipal"

// AdminToken requires an "Authorization: Token <value>" header. The token is
// forwarded to the backend, which remains the authority on admin access.
func AdminToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		token := strings.TrimSpace(parts[1])
		c.Set(ContextAdminKey, &models.AdminPrincipal{Token: token, Actor: actorFor(token)})
		c.Next()
	}
}

// Admin returns the principal attached by AdminToken.
func Admin(c *gin.Context) (*models.AdminPrincipal, bool) {
	v, ok := c.Get(ContextAdminKey)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*models.AdminPrincipal)
	return principal, ok
}

// actorFor derives a stable, non-reversible actor id for audit logs.
func actorFor(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token:" + hex.EncodeToString(sum[:6])
}
