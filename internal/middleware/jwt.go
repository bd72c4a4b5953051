package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/service"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/response"
)

const (
	// WizardTokenHeader carries the session token issued when a wizard starts.
	WizardTokenHeader = "X-Wizard-Token"
	// ContextSessionKey is the gin context key storing the verified session id.
	ContextSessionKey = "wizardSession"
)

// WizardToken requires a valid session token bound to the :id route parameter.
func WizardToken(tokens *service.SessionTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(WizardTokenHeader))
		if raw == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing wizard token"))
			c.Abort()
			return
		}

		sessionID, err := tokens.Verify(raw)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if param := c.Param("id"); param != "" && param != sessionID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token does not match this session"))
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sessionID)
		c.Next()
	}
}

// SessionID returns the verified wizard session id.
func SessionID(c *gin.Context) string {
	if v, ok := c.Get(ContextSessionKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
