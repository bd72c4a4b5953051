package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/response"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// ExportHandler renders admin lists for download.
type ExportHandler struct {
	exports   *service.ExportService
	validator *validation.Validator
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports *service.ExportService, validator *validation.Validator) *ExportHandler {
	return &ExportHandler{exports: exports, validator: validator}
}

// Export godoc
// @Summary Export an admin list
// @Description csv and pdf stream a file download; datauri returns the CSV as a data URI in JSON.
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Produce json
// @Param resource path string true "Resource key (recruiters, interviews)"
// @Param format query string false "csv, pdf or datauri" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Security AdminToken
// @Router /admin/exports/{resource} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := bindQuery(c, h.validator, &query); err != nil {
		response.Error(c, err)
		return
	}
	resource, err := service.ParseResource(c.Param("resource"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Export(c.Request.Context(), adminToken(c), resource, query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	if query.Format == service.ExportFormatDataURI {
		response.JSON(c, http.StatusOK, gin.H{
			"filename": result.Filename,
			"data_uri": result.DataURI,
			"rows":     result.Rows,
		}, nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
