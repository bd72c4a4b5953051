package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/middleware"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/response"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// reservedListKeys are consumed by the handler and never forwarded as filters.
var reservedListKeys = map[string]struct{}{"page": {}, "page_size": {}, "limit": {}, "search": {}}

// AdminHandler proxies the admin resource CRUD surface to the backend.
type AdminHandler struct {
	admin     *service.AdminService
	teachers  *service.TeacherSearchService
	validator *validation.Validator
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(admin *service.AdminService, teachers *service.TeacherSearchService, validator *validation.Validator) *AdminHandler {
	return &AdminHandler{admin: admin, teachers: teachers, validator: validator}
}

// List godoc
// @Summary List admin records
// @Tags Admin
// @Produce json
// @Param resource path string true "Resource key (reports, examcenters, roles, questions, recruiters, interviews, passkeys, teachers)"
// @Param search query string false "Free text search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /admin/{resource} [get]
func (h *AdminHandler) List(c *gin.Context) {
	resource, err := service.ParseResource(c.Param("resource"))
	if err != nil {
		response.Error(c, err)
		return
	}
	params := service.ListParams{Search: strings.TrimSpace(c.Query("search")), Extra: url.Values{}}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		params.Page = page
	}
	size := c.Query("page_size")
	if size == "" {
		size = c.DefaultQuery("limit", "20")
	}
	if n, err := strconv.Atoi(size); err == nil {
		params.PageSize = n
	}
	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedListKeys[key]; reserved {
			continue
		}
		params.Extra[key] = values
	}

	records, pagination, err := h.admin.List(c.Request.Context(), adminToken(c), resource, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "resource", string(resource))
	response.JSON(c, http.StatusOK, records, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get an admin record
// @Tags Admin
// @Produce json
// @Param resource path string true "Resource key"
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security AdminToken
// @Router /admin/{resource}/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	resource, err := service.ParseResource(c.Param("resource"))
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.admin.Get(c.Request.Context(), adminToken(c), resource, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Create an admin record
// @Tags Admin
// @Accept json
// @Produce json
// @Param resource path string true "Resource key"
// @Param payload body object true "Record fields as the backend expects them"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security AdminToken
// @Router /admin/{resource} [post]
func (h *AdminHandler) Create(c *gin.Context) {
	resource, err := service.ParseResource(c.Param("resource"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var body models.Record
	if err := bindJSON(c, nil, &body); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.admin.Create(c.Request.Context(), adminToken(c), resource, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Partially update an admin record
// @Tags Admin
// @Accept json
// @Produce json
// @Param resource path string true "Resource key"
// @Param id path string true "Record ID"
// @Param payload body object true "Fields to change"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /admin/{resource}/{id} [patch]
func (h *AdminHandler) Update(c *gin.Context) {
	resource, err := service.ParseResource(c.Param("resource"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var body models.Record
	if err := bindJSON(c, nil, &body); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.admin.Update(c.Request.Context(), adminToken(c), resource, c.Param("id"), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete an admin record
// @Tags Admin
// @Param resource path string true "Resource key"
// @Param id path string true "Record ID"
// @Success 204
// @Security AdminToken
// @Router /admin/{resource}/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	resource, err := service.ParseResource(c.Param("resource"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.admin.Delete(c.Request.Context(), adminToken(c), resource, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ApprovePasskey godoc
// @Summary Approve a passkey request
// @Tags Admin
// @Produce json
// @Param id path string true "Passkey ID"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /admin/passkeys/{id}/approve [post]
func (h *AdminHandler) ApprovePasskey(c *gin.Context) {
	h.decidePasskey(c, models.PasskeyApproved)
}

// RejectPasskey godoc
// @Summary Reject a passkey request
// @Tags Admin
// @Produce json
// @Param id path string true "Passkey ID"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /admin/passkeys/{id}/reject [post]
func (h *AdminHandler) RejectPasskey(c *gin.Context) {
	h.decidePasskey(c, models.PasskeyRejected)
}

func (h *AdminHandler) decidePasskey(c *gin.Context, status models.PasskeyStatus) {
	record, err := h.admin.DecidePasskey(c.Request.Context(), adminToken(c), c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Notify(c, http.StatusOK, record, models.Success("Passkey "+string(status)))
}

// SearchTeachers godoc
// @Summary Search teachers with admin filters
// @Tags Admin
// @Produce json
// @Param subject query []string false "Subject names" collectionFormat(multi)
// @Param class_category query []string false "Class category names" collectionFormat(multi)
// @Param job_role query []string false "Job roles" collectionFormat(multi)
// @Param skill query []string false "Skills" collectionFormat(multi)
// @Param pincode query string false "Pincode"
// @Param score_min query number false "Minimum score"
// @Param score_max query number false "Maximum score"
// @Param experience_min query number false "Minimum experience in years"
// @Param experience_max query number false "Maximum experience in years"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /admin/teachers/search [get]
func (h *AdminHandler) SearchTeachers(c *gin.Context) {
	var req dto.TeacherSearchRequest
	if err := bindQuery(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	teachers, pagination, err := h.teachers.AdminSearch(c.Request.Context(), adminToken(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}
