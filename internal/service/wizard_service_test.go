package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/gateway"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/repository"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/postal"
)

type stubCatalog struct{}

var stubSubjects = []models.Subject{{ID: 3, Name: "Maths"}, {ID: 5, Name: "Science"}, {ID: 8, Name: "Chemistry"}}

func (stubCatalog) Category(_ context.Context, id int) (*models.ClassCategory, error) {
	switch id {
	case 1:
		return &models.ClassCategory{ID: 1, Name: "1 to 5", Subjects: stubSubjects[:2]}, nil
	case 2:
		return &models.ClassCategory{ID: 2, Name: "11 to 12"}, nil
	}
	return nil, appErrors.WithFields(appErrors.ErrValidation, "unknown class category", map[string]string{"class_category_id": "unknown class category"})
}

func (stubCatalog) Subject(_ context.Context, id int) (models.Subject, bool, error) {
	for _, subject := range stubSubjects {
		if subject.ID == id {
			return subject, true, nil
		}
	}
	return models.Subject{}, false, nil
}

type blockingLocations struct {
	slow    string
	started chan struct{}
	release chan struct{}
}

func (b *blockingLocations) Resolve(_ context.Context, pincode, _ string) (*models.Location, error) {
	if pincode == b.slow {
		close(b.started)
		<-b.release
	}
	return &models.Location{Pincode: pincode, State: "State " + pincode, City: "City", Areas: []string{"Area A", "Area B"}, Resolved: true}, nil
}

type failingLocations struct{}

func (failingLocations) Resolve(context.Context, string, string) (*models.Location, error) {
	return nil, appErrors.WithFields(appErrors.ErrLookupFailed, "Could not find a location for this pincode", map[string]string{"pincode": "Could not find a location for this pincode"})
}

type stubTeachers struct {
	calls   atomic.Int32
	fail    bool
	records []models.TeacherRecord
}

func (s *stubTeachers) ForSelection(context.Context, models.Selection) ([]models.TeacherRecord, error) {
	s.calls.Add(1)
	if s.fail {
		return nil, appErrors.Clone(appErrors.ErrUpstreamUnavailable, "")
	}
	return s.records, nil
}

type countingEnquiryGateway struct {
	calls atomic.Int32
}

func (c *countingEnquiryGateway) CreateEnquiry(context.Context, models.Enquiry) (*models.EnquiryReceipt, error) {
	c.calls.Add(1)
	return &models.EnquiryReceipt{ID: 42}, nil
}

func newWizardForTest(locations LocationResolver, teachers TeacherFinder, enquiries EnquirySubmitter) *WizardService {
	return NewWizardService(WizardDeps{
		Sessions:  repository.NewMemorySessionRepository(),
		Tokens:    NewSessionTokenService("secret", "test", time.Hour),
		Catalog:   stubCatalog{},
		Locations: locations,
		Teachers:  teachers,
		Enquiries: enquiries,
	})
}

// driveToLocation walks a new session to the location step.
func driveToLocation(t *testing.T, svc *WizardService) string {
	t.Helper()
	ctx := context.Background()
	session, _, _, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SetTeacherType(ctx, session.ID, models.TeacherTypeSchool)
	require.NoError(t, err)
	_, err = svc.Next(ctx, session.ID)
	require.NoError(t, err)
	_, err = svc.SetSubjects(ctx, session.ID, 1, []int{5, 3, 3})
	require.NoError(t, err)
	moved, err := svc.Next(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, models.StepLocation, moved.Step)
	return session.ID
}

func TestWizardSubjectsResolveNames(t *testing.T) {
	svc := newWizardForTest(&blockingLocations{}, &stubTeachers{}, nil)
	id := driveToLocation(t, svc)

	session, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, session.Selection.SubjectIDs)
	assert.Equal(t, []string{"Maths", "Science"}, session.Selection.SubjectNames)
	assert.Equal(t, "1 to 5", session.Selection.ClassCategoryName)
}

func TestWizardRejectsUnknownSubject(t *testing.T) {
	svc := newWizardForTest(&blockingLocations{}, &stubTeachers{}, nil)
	ctx := context.Background()
	session, _, _, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SetTeacherType(ctx, session.ID, models.TeacherTypeSchool)
	require.NoError(t, err)
	_, err = svc.Next(ctx, session.ID)
	require.NoError(t, err)

	updated, err := svc.SetSubjects(ctx, session.ID, 1, []int{99})
	require.Error(t, err)
	assert.True(t, appErrors.FromError(err).HasField("subject_ids"))
	require.NotNil(t, updated.Notification)
	assert.Equal(t, "subject_ids", updated.Notification.Field)
	assert.Empty(t, updated.Selection.SubjectIDs)
}

func TestWizardCategoryWithoutSubjectsResolvesFromCatalog(t *testing.T) {
	svc := newWizardForTest(&blockingLocations{}, &stubTeachers{}, nil)
	ctx := context.Background()
	session, _, _, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SetTeacherType(ctx, session.ID, models.TeacherTypeSchool)
	require.NoError(t, err)
	_, err = svc.Next(ctx, session.ID)
	require.NoError(t, err)

	updated, err := svc.SetSubjects(ctx, session.ID, 2, []int{8, 99})
	require.Error(t, err)
	assert.True(t, appErrors.FromError(err).HasField("subject_ids"))
	assert.Empty(t, updated.Selection.SubjectIDs)

	updated, err = svc.SetSubjects(ctx, session.ID, 2, []int{8, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 8}, updated.Selection.SubjectIDs)
	assert.Equal(t, []string{"Maths", "Chemistry"}, updated.Selection.SubjectNames)
}

func TestWizardResultsStayUnfilteredUntilFilterApplied(t *testing.T) {
	teachers := &stubTeachers{records: []models.TeacherRecord{
		teacherFixture(1, 1, []int{3}, "800001"),
		teacherFixture(2, 4, []int{9}, "800002"),
	}}
	svc := newWizardForTest(&blockingLocations{}, teachers, nil)
	id := driveToLocation(t, svc)
	ctx := context.Background()

	_, err := svc.SetLocation(ctx, id, "800001", "")
	require.NoError(t, err)
	session, err := svc.Next(ctx, id)
	require.NoError(t, err)
	view := ProjectSession(session)
	require.NotNil(t, view.Search)
	assert.Equal(t, 2, view.Search.Total)
	assert.Equal(t, view.Search.Total, view.Search.Visible)
	assert.False(t, view.Filter.Applied)
	assert.Equal(t, "800001", view.Filter.Pincode)

	session, err = svc.UpdateFilter(ctx, id, dto.FilterRequest{Pincode: "800001"})
	require.NoError(t, err)
	view = ProjectSession(session)
	assert.Equal(t, 1, view.Search.Visible)
	assert.Equal(t, 1, view.Search.Results[0].ID)

	session, err = svc.ResetFilter(ctx, id)
	require.NoError(t, err)
	view = ProjectSession(session)
	assert.Equal(t, 2, view.Search.Visible)
	assert.False(t, view.Filter.Applied)
	assert.Equal(t, []int{3, 5}, view.Filter.SubjectIDs)
}

func TestWizardDropsStaleLocationLookup(t *testing.T) {
	locations := &blockingLocations{slow: "800001", started: make(chan struct{}), release: make(chan struct{})}
	svc := newWizardForTest(locations, &stubTeachers{}, nil)
	id := driveToLocation(t, svc)
	ctx := context.Background()

	var wg sync.WaitGroup
	var slowResult *models.WizardSession
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowResult, _ = svc.SetLocation(ctx, id, "800001", "")
	}()

	<-locations.started
	fast, err := svc.SetLocation(ctx, id, "110001", "")
	require.NoError(t, err)
	assert.Equal(t, "110001", fast.Location.Pincode)

	close(locations.release)
	wg.Wait()

	require.NotNil(t, slowResult)
	assert.Equal(t, "110001", slowResult.Selection.Pincode)
	assert.Equal(t, "State 110001", slowResult.Location.State)
	assert.True(t, CanAdvance(slowResult))
	assert.Equal(t, 0, svc.locks.size())
}

func TestWizardLocationFailureClearsDerivedFields(t *testing.T) {
	svc := newWizardForTest(failingLocations{}, &stubTeachers{}, nil)
	id := driveToLocation(t, svc)

	session, err := svc.SetLocation(context.Background(), id, "999999", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrLookupFailed))
	assert.Equal(t, "999999", session.Selection.Pincode)
	assert.False(t, session.Location.Resolved)
	assert.Empty(t, session.Location.State)
	require.NotNil(t, session.Notification)
	assert.Equal(t, models.NotificationError, session.Notification.Level)
	assert.Equal(t, "pincode", session.Notification.Field)

	_, err = svc.Next(context.Background(), id)
	assert.True(t, errors.Is(err, appErrors.ErrStepIncomplete))
}

func TestWizardMalformedPincodeSkipsLookup(t *testing.T) {
	locations := &blockingLocations{slow: "12345", started: make(chan struct{}), release: make(chan struct{})}
	svc := newWizardForTest(locations, &stubTeachers{}, nil)
	id := driveToLocation(t, svc)

	_, err := svc.SetLocation(context.Background(), id, "12345", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	select {
	case <-locations.started:
		t.Fatal("lookup must not run for malformed pincodes")
	default:
	}
}

func TestWizardFailedSearchStillEntersResults(t *testing.T) {
	teachers := &stubTeachers{fail: true}
	svc := newWizardForTest(&blockingLocations{}, teachers, nil)
	id := driveToLocation(t, svc)
	ctx := context.Background()

	_, err := svc.SetLocation(ctx, id, "800001", "")
	require.NoError(t, err)
	session, err := svc.Next(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StepResults, session.Step)
	assert.Equal(t, models.SearchFailed, session.Search.Status)
	require.NotNil(t, session.Notification)
	assert.Equal(t, models.NotificationError, session.Notification.Level)
	assert.True(t, ProjectSession(session).Search.CanRetry)

	teachers.fail = false
	teachers.records = []models.TeacherRecord{teacherFixture(1, 1, []int{3}, "800001")}
	session, err = svc.RetrySearch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.SearchSucceeded, session.Search.Status)
	assert.Equal(t, int32(2), teachers.calls.Load())
	assert.Nil(t, session.Notification)
}

func TestWizardBackKeepsSelectionAndCloseResets(t *testing.T) {
	svc := newWizardForTest(&blockingLocations{}, &stubTeachers{}, nil)
	id := driveToLocation(t, svc)
	ctx := context.Background()

	session, err := svc.Back(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StepSubjectSelection, session.Step)
	assert.Equal(t, []int{3, 5}, session.Selection.SubjectIDs)

	require.NoError(t, svc.Close(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))

	fresh, _, _, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StepTeacherType, fresh.Step)
	assert.Equal(t, models.Selection{}, fresh.Selection)
}

func TestWizardInvalidEmailMakesNoNetworkCall(t *testing.T) {
	enquiryGateway := &countingEnquiryGateway{}
	enquiries := NewEnquiryService(enquiryGateway, nil, nil, nil, nil, "")
	svc := newWizardForTest(&blockingLocations{}, &stubTeachers{}, enquiries)
	id := driveToLocation(t, svc)
	ctx := context.Background()

	_, err := svc.SetLocation(ctx, id, "800001", "")
	require.NoError(t, err)
	_, err = svc.Next(ctx, id)
	require.NoError(t, err)
	_, err = svc.Next(ctx, id)
	require.NoError(t, err)

	session, err := svc.Submit(ctx, id, &dto.ContactRequest{Email: "not-an-email", ContactNumber: "9876543210"})
	require.Error(t, err)
	assert.True(t, appErrors.FromError(err).HasField("email"))
	assert.Equal(t, int32(0), enquiryGateway.calls.Load())
	assert.Equal(t, models.StepContactInfo, session.Step)
	assert.Equal(t, "email", session.Notification.Field)

	_, err = svc.Submit(ctx, id, &dto.ContactRequest{Email: "a@b.com", ContactNumber: "98765"})
	assert.True(t, appErrors.FromError(err).HasField("contact"))
	assert.Equal(t, int32(0), enquiryGateway.calls.Load())
}

func postalFixture(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/pincode/800001" {
		_, _ = io.WriteString(w, `[{"Status":"Error","Message":"No records found","PostOffice":null}]`)
		return
	}
	_, _ = io.WriteString(w, `[{"Status":"Success","Message":"Number of pincode(s) found:2","PostOffice":[
		{"Name":"Patna G.P.O.","District":"Patna","State":"Bihar"},
		{"Name":"Gardanibagh","District":"Patna","State":"Bihar"}]}]`)
}

type backendFixture struct {
	uniqueContact bool
	enquiries     []models.Enquiry
	mu            sync.Mutex
}

func (b *backendFixture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/public/classcategory/":
		_, _ = io.WriteString(w, `[{"id":1,"name":"1 to 5","subjects":[{"id":3,"subject_name":"Maths"},{"id":5,"subject_name":"Science"},{"id":7,"subject_name":"English"}]}]`)
	case "/api/new/teacher/":
		if r.URL.Query().Get("subject") != "Maths,Science" || r.URL.Query().Get("pincode") != "800001" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `[
			{"id":11,"full_name":"Asha","addresses":[{"pincode":"800001"}],"preferences":[{"class_category":[{"id":1}],"prefered_subject":[{"id":3}]}]},
			{"id":12,"full_name":"Ravi","addresses":[{"pincode":"800001"}],"preferences":[{"class_category":[{"id":1}],"prefered_subject":[{"id":5}]}]}]`)
	case "/api/enquiry/":
		var enquiry models.Enquiry
		_ = json.NewDecoder(r.Body).Decode(&enquiry)
		b.mu.Lock()
		b.enquiries = append(b.enquiries, enquiry)
		b.mu.Unlock()
		if b.uniqueContact {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"contact":["This field must be unique."]}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":501}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newIntegratedWizard(t *testing.T, backend *backendFixture) *WizardService {
	t.Helper()
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)
	postalSrv := httptest.NewServer(http.HandlerFunc(postalFixture))
	t.Cleanup(postalSrv.Close)

	metrics := NewMetricsService()
	client := gateway.New(gateway.Config{BaseURL: backendSrv.URL, Observer: metrics})
	catalog := NewCatalogService(client, nil, time.Minute, nil)
	return NewWizardService(WizardDeps{
		Sessions:  repository.NewMemorySessionRepository(),
		Tokens:    NewSessionTokenService("secret", "test", time.Hour),
		Catalog:   catalog,
		Locations: NewLocationService(postal.NewClient(postal.Config{BaseURL: postalSrv.URL}), metrics, nil),
		Teachers:  NewTeacherSearchService(client, nil),
		Enquiries: NewEnquiryService(client, nil, nil, metrics, nil, "TeacherHub"),
		Metrics:   metrics,
	})
}

func TestWizardEndToEnd(t *testing.T) {
	backend := &backendFixture{}
	svc := newIntegratedWizard(t, backend)
	ctx := context.Background()

	session, token, _, err := svc.Start(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	id := session.ID

	_, err = svc.SetTeacherType(ctx, id, models.TeacherTypeSchool)
	require.NoError(t, err)
	_, err = svc.Next(ctx, id)
	require.NoError(t, err)
	_, err = svc.SetSubjects(ctx, id, 1, []int{3, 5})
	require.NoError(t, err)
	_, err = svc.Next(ctx, id)
	require.NoError(t, err)

	session, err = svc.SetLocation(ctx, id, "800001", "")
	require.NoError(t, err)
	assert.Equal(t, "Bihar", session.Location.State)
	assert.Equal(t, "Patna", session.Location.City)
	assert.Equal(t, []string{"Patna G.P.O.", "Gardanibagh"}, session.Location.Areas)

	session, err = svc.Next(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StepResults, session.Step)
	view := ProjectSession(session)
	require.NotNil(t, view.Search)
	assert.Equal(t, 2, view.Search.Visible)

	session, err = svc.UpdateFilter(ctx, id, dto.FilterRequest{SubjectIDs: []int{3}})
	require.NoError(t, err)
	view = ProjectSession(session)
	assert.Equal(t, 1, view.Search.Visible)
	assert.Equal(t, 11, view.Search.Results[0].ID)
	assert.Equal(t, []int{3, 5}, session.Selection.SubjectIDs)

	session, err = svc.ResetFilter(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, ProjectSession(session).Search.Visible)

	_, err = svc.Next(ctx, id)
	require.NoError(t, err)
	session, err = svc.Submit(ctx, id, &dto.ContactRequest{Email: "a@b.com", ContactNumber: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, models.StepSuccess, session.Step)
	assert.Equal(t, "501", session.EnquiryID)
	require.NotNil(t, session.Notification)
	assert.Equal(t, models.NotificationSuccess, session.Notification.Level)
	assert.Equal(t, models.Selection{}, session.Selection)

	require.Len(t, backend.enquiries, 1)
	sent := backend.enquiries[0]
	assert.Equal(t, models.TeacherTypeSchool, sent.TeacherType)
	assert.Equal(t, 1, sent.ClassCategory)
	assert.Equal(t, []int{3, 5}, sent.Subjects)
	assert.Equal(t, "Bihar", sent.State)
	assert.Equal(t, "Patna", sent.City)
	assert.Equal(t, "9876543210", sent.Contact)

	_, err = svc.Back(ctx, id)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
}

func TestWizardUniqueContactBecomesFieldError(t *testing.T) {
	backend := &backendFixture{uniqueContact: true}
	svc := newIntegratedWizard(t, backend)
	ctx := context.Background()

	session, _, _, err := svc.Start(ctx)
	require.NoError(t, err)
	id := session.ID
	_, err = svc.SetTeacherType(ctx, id, models.TeacherTypePersonal)
	require.NoError(t, err)
	_, err = svc.Next(ctx, id)
	require.NoError(t, err)
	_, err = svc.SetSubjects(ctx, id, 1, []int{3, 5})
	require.NoError(t, err)
	_, err = svc.Next(ctx, id)
	require.NoError(t, err)
	_, err = svc.SetLocation(ctx, id, "800001", "")
	require.NoError(t, err)
	_, err = svc.Next(ctx, id)
	require.NoError(t, err)
	_, err = svc.Next(ctx, id)
	require.NoError(t, err)

	session, err = svc.Submit(ctx, id, &dto.ContactRequest{Email: "a@b.com", ContactNumber: "9876543210"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "This field must be unique.", appErr.Fields["contact"])
	assert.Equal(t, models.StepContactInfo, session.Step)
	require.NotNil(t, session.Notification)
	assert.Equal(t, "contact", session.Notification.Field)
	assert.Equal(t, "This field must be unique.", session.Notification.Message)
}
