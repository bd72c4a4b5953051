package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/middleware"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// adminToken returns the caller's token attached by middleware.AdminToken.
func adminToken(c *gin.Context) string {
	principal, ok := middleware.Admin(c)
	if !ok || principal == nil {
		return ""
	}
	return principal.Token
}

// bindJSON decodes the request body and runs struct validation.
func bindJSON(c *gin.Context, v *validation.Validator, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	return validate(v, dest)
}

// bindQuery decodes query parameters and runs struct validation.
func bindQuery(c *gin.Context, v *validation.Validator, dest interface{}) error {
	if err := c.ShouldBindQuery(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
	}
	return validate(v, dest)
}

func validate(v *validation.Validator, dest interface{}) error {
	if v == nil {
		return nil
	}
	err := v.Struct(dest)
	if err == nil {
		return nil
	}
	fields := v.FieldErrors(err)
	if len(fields) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	message := appErrors.ErrValidation.Message
	if len(fields) == 1 {
		for _, msg := range fields {
			message = msg
		}
	}
	return appErrors.WithFields(appErrors.ErrValidation, message, fields)
}
