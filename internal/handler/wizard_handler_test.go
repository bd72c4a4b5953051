package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/middleware"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/repository"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

type fakeCategories struct{}

func (fakeCategories) Category(_ context.Context, id int) (*models.ClassCategory, error) {
	if id != 2 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "unknown class category", map[string]string{"class_category_id": "unknown class category"})
	}
	return &models.ClassCategory{ID: 2, Name: "6 to 10", Subjects: []models.Subject{{ID: 7, Name: "Physics"}}}, nil
}

func (fakeCategories) Subject(_ context.Context, id int) (models.Subject, bool, error) {
	if id == 7 {
		return models.Subject{ID: 7, Name: "Physics"}, true, nil
	}
	return models.Subject{}, false, nil
}

type fakeLocations struct{}

func (fakeLocations) Resolve(_ context.Context, pincode, _ string) (*models.Location, error) {
	if pincode == "000000" {
		msg := "Could not find a location for this pincode"
		return nil, appErrors.WithFields(appErrors.ErrLookupFailed, msg, map[string]string{"pincode": msg})
	}
	return &models.Location{Pincode: pincode, State: "Bihar", City: "Patna", Areas: []string{"Kankarbagh"}, Resolved: true}, nil
}

type fakeFinder struct {
	err error
}

func (f fakeFinder) ForSelection(context.Context, models.Selection) ([]models.TeacherRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.TeacherRecord{{ID: 11, FullName: "Asha Rani"}}, nil
}

type fakeSubmitter struct{}

func (fakeSubmitter) Submit(context.Context, *models.WizardSession) (*models.EnquiryReceipt, error) {
	return &models.EnquiryReceipt{ID: 99}, nil
}

func newWizardRouter(finder service.TeacherFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := service.NewSessionTokenService("handler-test-secret", "teacherhub-test", time.Hour)
	wizard := service.NewWizardService(service.WizardDeps{
		Sessions:  repository.NewMemorySessionRepository(),
		Tokens:    tokens,
		Catalog:   fakeCategories{},
		Locations: fakeLocations{},
		Teachers:  finder,
		Enquiries: fakeSubmitter{},
	})
	h := NewWizardHandler(wizard, validation.New())

	r := gin.New()
	r.POST("/wizard/sessions", h.Start)
	sessions := r.Group("/wizard/sessions/:id", middleware.WizardToken(tokens))
	sessions.GET("", h.Get)
	sessions.DELETE("", h.Close)
	sessions.PUT("/teacher-type", h.SetTeacherType)
	sessions.PUT("/subjects", h.SetSubjects)
	sessions.PUT("/location", h.SetLocation)
	sessions.PUT("/area", h.SetArea)
	sessions.PUT("/contact", h.SetContact)
	sessions.POST("/next", h.Next)
	sessions.POST("/back", h.Back)
	sessions.POST("/search/retry", h.RetrySearch)
	sessions.PUT("/filter", h.UpdateFilter)
	sessions.POST("/filter/reset", h.ResetFilter)
	sessions.POST("/submit", h.Submit)
	return r
}

func startSession(t *testing.T, r *gin.Engine) (string, map[string]string) {
	t.Helper()
	w, env := perform(t, r, http.MethodPost, "/wizard/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var started dto.StartSessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &started))
	require.NotEmpty(t, started.Token)
	assert.Equal(t, models.StepTeacherType, started.Session.Step)
	return "/wizard/sessions/" + started.Session.ID, map[string]string{middleware.WizardTokenHeader: started.Token}
}

func sessionView(t *testing.T, env envelope) dto.SessionView {
	t.Helper()
	var view dto.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

func TestWizardHandlerRequiresToken(t *testing.T) {
	r := newWizardRouter(fakeFinder{})
	base, _ := startSession(t, r)

	w, env := perform(t, r, http.MethodGet, base, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)

	_, otherHeaders := startSession(t, r)
	w, _ = perform(t, r, http.MethodGet, base, nil, otherHeaders)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWizardHandlerValidationUsesFieldNames(t *testing.T) {
	r := newWizardRouter(fakeFinder{})
	base, headers := startSession(t, r)

	w, env := perform(t, r, http.MethodPut, base+"/teacher-type", gin.H{"teacher_type": "tutor"}, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "teacher_type")
	require.NotNil(t, env.Notification)
	assert.Equal(t, "teacher_type", env.Notification.Field)
}

func TestWizardHandlerIncompleteStepKeepsSession(t *testing.T) {
	r := newWizardRouter(fakeFinder{})
	base, headers := startSession(t, r)

	w, env := perform(t, r, http.MethodPost, base+"/next", nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrStepIncomplete.Code, env.Error.Code)
	view := sessionView(t, env)
	assert.Equal(t, models.StepTeacherType, view.Step)
	require.NotNil(t, env.Notification)
	assert.Equal(t, "error", env.Notification.Level)

	w, _ = perform(t, r, http.MethodPost, base+"/back", nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWizardHandlerFullFlow(t *testing.T) {
	r := newWizardRouter(fakeFinder{})
	base, headers := startSession(t, r)

	w, env := perform(t, r, http.MethodPut, base+"/teacher-type", gin.H{"teacher_type": "school"}, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, sessionView(t, env).CanAdvance)

	w, _ = perform(t, r, http.MethodPost, base+"/next", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = perform(t, r, http.MethodPut, base+"/subjects", gin.H{"class_category_id": 2, "subject_ids": []int{7}}, headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Physics"}, sessionView(t, env).Selection.SubjectNames)

	w, _ = perform(t, r, http.MethodPost, base+"/next", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = perform(t, r, http.MethodPut, base+"/location", gin.H{"pincode": "800020"}, headers)
	require.Equal(t, http.StatusOK, w.Code)
	view := sessionView(t, env)
	assert.Equal(t, "Patna", view.Location.City)
	assert.Equal(t, "Kankarbagh", view.Selection.Area)

	w, env = perform(t, r, http.MethodPost, base+"/next", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	view = sessionView(t, env)
	assert.Equal(t, models.StepResults, view.Step)
	require.NotNil(t, view.Search)
	assert.Equal(t, 1, view.Search.Visible)
	assert.False(t, view.Filter.Applied)

	w, env = perform(t, r, http.MethodPut, base+"/filter", gin.H{"subject_ids": []int{7}}, headers)
	require.Equal(t, http.StatusOK, w.Code)
	view = sessionView(t, env)
	assert.True(t, view.Filter.Applied)
	assert.Equal(t, 1, view.Search.Total)
	assert.Equal(t, 0, view.Search.Visible)

	w, env = perform(t, r, http.MethodPost, base+"/filter/reset", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	view = sessionView(t, env)
	assert.False(t, view.Filter.Applied)
	assert.Equal(t, 1, view.Search.Visible)

	w, _ = perform(t, r, http.MethodPost, base+"/next", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = perform(t, r, http.MethodPost, base+"/submit", gin.H{"email": "parent@example.com", "contact": "9876543210"}, headers)
	require.Equal(t, http.StatusOK, w.Code)
	view = sessionView(t, env)
	assert.Equal(t, models.StepSuccess, view.Step)
	assert.Equal(t, "99", view.EnquiryID)
	require.NotNil(t, env.Notification)
	assert.Equal(t, "success", env.Notification.Level)

	w, _ = perform(t, r, http.MethodPost, base+"/back", nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = perform(t, r, http.MethodDelete, base, nil, headers)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = perform(t, r, http.MethodGet, base, nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWizardHandlerFailedSearchOffersRetry(t *testing.T) {
	r := newWizardRouter(fakeFinder{err: appErrors.Clone(appErrors.ErrUpstreamUnavailable, "")})
	base, headers := startSession(t, r)

	perform(t, r, http.MethodPut, base+"/teacher-type", gin.H{"teacher_type": "personal"}, headers)
	perform(t, r, http.MethodPost, base+"/next", nil, headers)
	perform(t, r, http.MethodPut, base+"/subjects", gin.H{"class_category_id": 2, "subject_ids": []int{7}}, headers)
	perform(t, r, http.MethodPost, base+"/next", nil, headers)
	perform(t, r, http.MethodPut, base+"/location", gin.H{"pincode": "800020"}, headers)

	w, env := perform(t, r, http.MethodPost, base+"/next", nil, headers)
	require.Equal(t, http.StatusOK, w.Code)
	view := sessionView(t, env)
	assert.Equal(t, models.StepResults, view.Step)
	require.NotNil(t, view.Search)
	assert.Equal(t, models.SearchFailed, view.Search.Status)
	assert.True(t, view.Search.CanRetry)
}

func TestWizardHandlerLookupFailureReturnsSession(t *testing.T) {
	r := newWizardRouter(fakeFinder{})
	base, headers := startSession(t, r)
	perform(t, r, http.MethodPut, base+"/teacher-type", gin.H{"teacher_type": "coaching"}, headers)
	perform(t, r, http.MethodPost, base+"/next", nil, headers)
	perform(t, r, http.MethodPut, base+"/subjects", gin.H{"class_category_id": 2, "subject_ids": []int{7}}, headers)
	perform(t, r, http.MethodPost, base+"/next", nil, headers)

	w, env := perform(t, r, http.MethodPut, base+"/location", gin.H{"pincode": "000000"}, headers)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	view := sessionView(t, env)
	assert.False(t, view.Location.Resolved)
	assert.False(t, view.CanAdvance)
	require.NotNil(t, env.Notification)
	assert.Equal(t, "pincode", env.Notification.Field)
}
