package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/middleware/requestid"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, ServiceToken: "svc"})
}

func TestSearchTeachersSendsWizardQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, publicTeacherPath, r.URL.Path)
		assert.Equal(t, "1 to 5", r.URL.Query().Get("class_category"))
		assert.Equal(t, "Maths,Science", r.URL.Query().Get("subject"))
		assert.Equal(t, "800001", r.URL.Query().Get("pincode"))
		assert.Empty(t, r.URL.Query().Get("area"))
		assert.Equal(t, "Token svc", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get(requestid.HeaderKey))
		_, _ = io.WriteString(w, `[{"id":1,"full_name":"Asha"},{"id":2,"full_name":"Ravi"}]`)
	})

	ctx := requestid.WithValue(context.Background(), "req-1")
	teachers, err := client.SearchTeachers(ctx, WizardQuery("1 to 5", []string{"Maths", "Science"}, "800001", ""))
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "Ravi", teachers[1].FullName)
}

func TestTeacherQueryArraysAndRanges(t *testing.T) {
	min, max := 3.5, 10.0
	q := NewTeacherQuery().Add("subject", "Math", "Physics", " ").Range("score", &min, nil).Range("experience", nil, &max)

	values := q.Values()
	assert.Equal(t, []string{"Math", "Physics"}, values["subject"])
	assert.Equal(t, "3.5", values.Get("score_min"))
	assert.Equal(t, "10", values.Get("experience_max"))
	assert.NotContains(t, values, "score_max")
	assert.Contains(t, q.Encode(), "subject=Math&subject=Physics")
}

func TestSearchAdminTeachersForwardsCallerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, adminTeacherPath, r.URL.Path)
		assert.Equal(t, "Token admin", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"count":7,"results":[{"id":9}]}`)
	})

	teachers, total, err := client.SearchAdminTeachers(context.Background(), "admin", NewTeacherQuery())
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, teachers, 1)
	assert.Equal(t, 9, teachers[0].ID)
}

func TestCreateEnquiryFieldError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/enquiry/", r.URL.Path)
		var body models.Enquiry
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "9876543210", body.Contact)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"contact":["This field must be unique."]}`)
	})

	_, err := client.CreateEnquiry(context.Background(), models.Enquiry{Contact: "9876543210"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "This field must be unique.", appErr.Fields["contact"])
	assert.Equal(t, "This field must be unique.", appErr.Message)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestErrorNormalisation(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		want    *appErrors.Error
		message string
	}{
		{"detail wins", http.StatusForbidden, `{"detail":"Not allowed","name":["bad"]}`, appErrors.ErrForbidden, "Not allowed"},
		{"non field errors", http.StatusBadRequest, `{"non_field_errors":["Mismatch"]}`, appErrors.ErrValidation, "Mismatch"},
		{"server error", http.StatusInternalServerError, `oops`, appErrors.ErrUpstream, appErrors.ErrUpstream.Message},
		{"not found", http.StatusNotFound, ``, appErrors.ErrNotFound, appErrors.ErrNotFound.Message},
		{"conflict", http.StatusConflict, `{"detail":"exists"}`, appErrors.ErrConflict, "exists"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := normalise(tc.status, []byte(tc.body))
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.want.Code, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := New(Config{BaseURL: srv.URL})
	srv.Close()

	_, err := client.ClassCategories(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUpstreamUnavailable))
}

type recordingObserver struct {
	operations []string
	statuses   []int
}

func (r *recordingObserver) ObserveUpstream(_ string, operation string, status int, _ time.Duration) {
	r.operations = append(r.operations, operation)
	r.statuses = append(r.statuses, status)
}

func TestObserverReceivesCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"1 to 5","subjects":[{"id":3,"subject_name":"Maths"}]}]`)
	}))
	defer srv.Close()
	obs := &recordingObserver{}
	client := New(Config{BaseURL: srv.URL, Observer: obs})

	cats, err := client.ClassCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	subject, ok := cats[0].SubjectByID(3)
	assert.True(t, ok)
	assert.Equal(t, "Maths", subject.Name)
	assert.Equal(t, []string{"class_categories"}, obs.operations)
	assert.Equal(t, []int{http.StatusOK}, obs.statuses)
}
