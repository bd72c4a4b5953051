package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/response"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// AuditHandler lists the admin audit trail.
type AuditHandler struct {
	audit     *service.AuditService
	validator *validation.Validator
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(audit *service.AuditService, validator *validation.Validator) *AuditHandler {
	return &AuditHandler{audit: audit, validator: validator}
}

// List godoc
// @Summary List audit log entries
// @Tags Audit
// @Produce json
// @Param resource query string false "Resource key"
// @Param action query string false "Action (CREATE, UPDATE, DELETE, APPROVE, ...)"
// @Param actor query string false "Actor fingerprint"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /admin/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var query dto.AuditLogQuery
	if err := bindQuery(c, h.validator, &query); err != nil {
		response.Error(c, err)
		return
	}
	logs, pagination, err := h.audit.List(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}
