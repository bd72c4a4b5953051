package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/response"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// BackupHandler exposes backend database backups.
type BackupHandler struct {
	backups   *service.BackupService
	validator *validation.Validator
}

// NewBackupHandler constructs a BackupHandler.
func NewBackupHandler(backups *service.BackupService, validator *validation.Validator) *BackupHandler {
	return &BackupHandler{backups: backups, validator: validator}
}

// List godoc
// @Summary List backups
// @Tags Backups
// @Produce json
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /admin/backups [get]
func (h *BackupHandler) List(c *gin.Context) {
	backups, err := h.backups.List(c.Request.Context(), adminToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, backups, nil)
}

// Create godoc
// @Summary Take a backup
// @Tags Backups
// @Produce json
// @Success 201 {object} response.Envelope
// @Security AdminToken
// @Router /admin/backups [post]
func (h *BackupHandler) Create(c *gin.Context) {
	backup, err := h.backups.Create(c.Request.Context(), adminToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, backup)
}

// Restore godoc
// @Summary Restore a backup
// @Tags Backups
// @Accept json
// @Produce json
// @Param payload body dto.RestoreBackupRequest true "Backup name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security AdminToken
// @Router /admin/backups/restore [post]
func (h *BackupHandler) Restore(c *gin.Context) {
	var req dto.RestoreBackupRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.backups.Restore(c.Request.Context(), adminToken(c), req.Backup); err != nil {
		response.Error(c, err)
		return
	}
	response.Notify(c, http.StatusOK, gin.H{"backup": req.Backup}, models.Success("Backup "+req.Backup+" restored"))
}
