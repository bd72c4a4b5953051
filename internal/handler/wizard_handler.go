package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/middleware"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/response"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// WizardHandler exposes the enquiry wizard. Every route except Start sits
// behind middleware.WizardToken.
type WizardHandler struct {
	wizard    *service.WizardService
	validator *validation.Validator
}

// NewWizardHandler constructs a WizardHandler.
func NewWizardHandler(wizard *service.WizardService, validator *validation.Validator) *WizardHandler {
	return &WizardHandler{wizard: wizard, validator: validator}
}

// Start godoc
// @Summary Start an enquiry wizard
// @Tags Wizard
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /wizard/sessions [post]
func (h *WizardHandler) Start(c *gin.Context) {
	session, token, expiresAt, err := h.wizard.Start(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.StartSessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   service.ProjectSession(session),
	})
}

// Get godoc
// @Summary Get wizard state
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /wizard/sessions/{id} [get]
func (h *WizardHandler) Get(c *gin.Context) {
	session, err := h.wizard.Get(c.Request.Context(), middleware.SessionID(c))
	h.respond(c, session, err)
}

// Close godoc
// @Summary Close the wizard
// @Tags Wizard
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Success 204
// @Router /wizard/sessions/{id} [delete]
func (h *WizardHandler) Close(c *gin.Context) {
	if err := h.wizard.Close(c.Request.Context(), middleware.SessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetTeacherType godoc
// @Summary Choose the teacher type
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Param payload body dto.TeacherTypeRequest true "Teacher type"
// @Success 200 {object} response.Envelope
// @Router /wizard/sessions/{id}/teacher-type [put]
func (h *WizardHandler) SetTeacherType(c *gin.Context) {
	var req dto.TeacherTypeRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.wizard.SetTeacherType(c.Request.Context(), middleware.SessionID(c), models.TeacherType(req.TeacherType))
	h.respond(c, session, err)
}

// SetSubjects godoc
// @Summary Choose the class category and subjects
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Param payload body dto.SubjectsRequest true "Category and subjects"
// @Success 200 {object} response.Envelope
// @Router /wizard/sessions/{id}/subjects [put]
func (h *WizardHandler) SetSubjects(c *gin.Context) {
	var req dto.SubjectsRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.wizard.SetSubjects(c.Request.Context(), middleware.SessionID(c), *req.ClassCategoryID, req.SubjectIDs)
	h.respond(c, session, err)
}

// SetLocation godoc
// @Summary Enter the pincode
// @Description Resolves the pincode through the postal directory. A lookup overtaken by a newer pincode is discarded.
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Param payload body dto.LocationRequest true "Pincode"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /wizard/sessions/{id}/location [put]
func (h *WizardHandler) SetLocation(c *gin.Context) {
	var req dto.LocationRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.wizard.SetLocation(c.Request.Context(), middleware.SessionID(c), req.Pincode, req.State)
	h.respond(c, session, err)
}

// SetArea godoc
// @Summary Pick an area of the resolved pincode
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Param payload body dto.AreaRequest true "Area"
// @Success 200 {object} response.Envelope
// @Router /wizard/sessions/{id}/area [put]
func (h *WizardHandler) SetArea(c *gin.Context) {
	var req dto.AreaRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.wizard.SetArea(c.Request.Context(), middleware.SessionID(c), req.Area)
	h.respond(c, session, err)
}

// SetContact godoc
// @Summary Save contact details
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Param payload body dto.ContactRequest true "Contact"
// @Success 200 {object} response.Envelope
// @Router /wizard/sessions/{id}/contact [put]
func (h *WizardHandler) SetContact(c *gin.Context) {
	var req dto.ContactRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.wizard.SetContact(c.Request.Context(), middleware.SessionID(c), req.Email, req.ContactNumber)
	h.respond(c, session, err)
}

// Next godoc
// @Summary Advance to the next step
// @Description Leaving the location step runs the teacher search. A failed search still lands on the results step.
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /wizard/sessions/{id}/next [post]
func (h *WizardHandler) Next(c *gin.Context) {
	session, err := h.wizard.Next(c.Request.Context(), middleware.SessionID(c))
	h.respond(c, session, err)
}

// Back godoc
// @Summary Return to the previous step
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /wizard/sessions/{id}/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	session, err := h.wizard.Back(c.Request.Context(), middleware.SessionID(c))
	h.respond(c, session, err)
}

// RetrySearch godoc
// @Summary Retry the teacher search
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Success 200 {object} response.Envelope
// @Router /wizard/sessions/{id}/search/retry [post]
func (h *WizardHandler) RetrySearch(c *gin.Context) {
	session, err := h.wizard.RetrySearch(c.Request.Context(), middleware.SessionID(c))
	h.respond(c, session, err)
}

// UpdateFilter godoc
// @Summary Narrow the search results
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Param payload body dto.FilterRequest true "Filter"
// @Success 200 {object} response.Envelope
// @Router /wizard/sessions/{id}/filter [put]
func (h *WizardHandler) UpdateFilter(c *gin.Context) {
	var req dto.FilterRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.wizard.UpdateFilter(c.Request.Context(), middleware.SessionID(c), req)
	h.respond(c, session, err)
}

// ResetFilter godoc
// @Summary Reset the results filter to the wizard selection
// @Tags Wizard
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Success 200 {object} response.Envelope
// @Router /wizard/sessions/{id}/filter/reset [post]
func (h *WizardHandler) ResetFilter(c *gin.Context) {
	session, err := h.wizard.ResetFilter(c.Request.Context(), middleware.SessionID(c))
	h.respond(c, session, err)
}

// Submit godoc
// @Summary Submit the enquiry
// @Description Body is optional; when present it overrides the stored contact details.
// @Tags Wizard
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param X-Wizard-Token header string true "Wizard token"
// @Param payload body dto.ContactRequest false "Contact"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /wizard/sessions/{id}/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	var contact *dto.ContactRequest
	if c.Request.ContentLength > 0 {
		var req dto.ContactRequest
		if err := bindJSON(c, h.validator, &req); err != nil {
			response.Error(c, err)
			return
		}
		contact = &req
	}
	session, err := h.wizard.Submit(c.Request.Context(), middleware.SessionID(c), contact)
	h.respond(c, session, err)
}

// respond writes the session view. Failed operations that still produced a
// session return it alongside the error so the client can re-render.
func (h *WizardHandler) respond(c *gin.Context, session *models.WizardSession, err error) {
	if err != nil {
		if session == nil {
			response.Error(c, err)
			return
		}
		response.ErrorWithData(c, err, service.ProjectSession(session), session.Notification)
		return
	}
	response.Notify(c, http.StatusOK, service.ProjectSession(session), session.Notification)
}
