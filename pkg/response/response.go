package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data         interface{}            `json:"data,omitempty"`
	Error        *appErrors.Error       `json:"error,omitempty"`
	Notification *models.Notification   `json:"notification,omitempty"`
	Pagination   *models.Pagination     `json:"pagination,omitempty"`
	Meta         map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Notify sends a success response carrying a user-facing notification.
func Notify(c *gin.Context, status int, data interface{}, notification *models.Notification) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Notification: notification})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends an error response converting the error to the common structure.
// The error message doubles as an error-level notification.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	notification := &models.Notification{Level: models.NotificationError, Message: appErr.Message}
	if len(appErr.Fields) == 1 {
		for field := range appErr.Fields {
			notification.Field = field
		}
	}
	c.JSON(appErr.Status, Envelope{Error: appErr, Notification: notification})
}

// ErrorWithData sends an error response that still carries the resource's
// current state, e.g. a wizard session left unchanged by a failed step.
func ErrorWithData(c *gin.Context, err error, data interface{}, notification *models.Notification) {
	appErr := appErrors.FromError(err)
	noStore(c)
	if notification == nil {
		notification = &models.Notification{Level: models.NotificationError, Message: appErr.Message}
	}
	c.JSON(appErr.Status, Envelope{Data: data, Error: appErr, Notification: notification})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
