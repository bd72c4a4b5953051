package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/middleware/requestid"
)

// Audit records an audit entry after successful requests. An empty resource
// is read from the :resource route parameter.
func Audit(auditSvc *service.AuditService, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auditSvc.Enabled() {
			c.Next()
			return
		}
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var actor *string
		if principal, ok := Admin(c); ok {
			actor = &principal.Actor
		}
		name := resource
		if name == "" {
			name = c.Param("resource")
		}
		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"latency":    time.Since(start).Milliseconds(),
			"request_id": requestid.Value(c),
		})

		auditSvc.Record(models.AuditLog{
			Actor:      actor,
			Action:     action,
			Resource:   name,
			ResourceID: resourceID,
			Payload:    body,
			StatusCode: c.Writer.Status(),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
			CreatedAt:  start,
		})
	}
}
