package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/notify"
)

type scriptedEnquiryGateway struct {
	err     error
	receipt *models.EnquiryReceipt
	last    models.Enquiry
}

func (s *scriptedEnquiryGateway) CreateEnquiry(_ context.Context, e models.Enquiry) (*models.EnquiryReceipt, error) {
	s.last = e
	return s.receipt, s.err
}

type capturingSender struct {
	messages []notify.Message
	err      error
}

func (c *capturingSender) Send(_ context.Context, msg notify.Message) error {
	c.messages = append(c.messages, msg)
	return c.err
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
}

func readySession() *models.WizardSession {
	s := models.NewWizardSession("s1", fixedNow())
	s.Step = models.StepContactInfo
	s.Selection = models.Selection{
		TeacherType:     models.TeacherTypeSchool,
		ClassCategoryID: models.IntPtr(1),
		SubjectIDs:      []int{3, 5},
		SubjectNames:    []string{"Maths", "Science"},
		Pincode:         "800001",
		Email:           "a@b.com",
		ContactNumber:   "9876543210",
	}
	s.Location = models.Location{Pincode: "800001", State: "Bihar", City: "Patna", Resolved: true}
	return s
}

func TestEnquiryValidateContact(t *testing.T) {
	svc := NewEnquiryService(&scriptedEnquiryGateway{}, nil, nil, nil, nil, "")

	assert.NoError(t, svc.ValidateContact("a@b.com", "9876543210"))

	err := svc.ValidateContact("not-an-email", "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "email must be a valid email address", appErr.Fields["email"])
	assert.Equal(t, "contact is required", appErr.Fields["contact"])

	err = svc.ValidateContact("a@b.com", "12345678901")
	assert.True(t, appErrors.FromError(err).HasField("contact"))
}

func TestEnquirySubmitSendsConfirmation(t *testing.T) {
	gw := &scriptedEnquiryGateway{receipt: &models.EnquiryReceipt{ID: 9}}
	sender := &capturingSender{err: errors.New("smtp down")}
	svc := NewEnquiryService(gw, nil, sender, NewMetricsService(), nil, "TeacherHub")

	receipt, err := svc.Submit(context.Background(), readySession())
	require.NoError(t, err, "confirmation failures must not fail the submission")
	assert.Equal(t, 9, receipt.ID)
	assert.Equal(t, "Bihar", gw.last.State)
	assert.Equal(t, "Patna", gw.last.City)
	require.Len(t, sender.messages, 1)
	assert.Equal(t, "a@b.com", sender.messages[0].ToEmail)
	assert.Contains(t, sender.messages[0].Text, "Maths, Science")
	assert.Contains(t, sender.messages[0].Text, "#9")
}

func TestEnquirySubmitGenericFailure(t *testing.T) {
	gw := &scriptedEnquiryGateway{err: appErrors.Clone(appErrors.ErrUpstream, "boom")}
	svc := NewEnquiryService(gw, nil, nil, nil, nil, "")

	_, err := svc.Submit(context.Background(), readySession())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Empty(t, appErr.Fields)
	assert.Equal(t, "We could not submit your enquiry, please try again", appErr.Message)
}

func TestEnquirySubmitIgnoresNonFormFields(t *testing.T) {
	gw := &scriptedEnquiryGateway{err: appErrors.WithFields(appErrors.ErrValidation, "bad", map[string]string{"subjects": "invalid"})}
	svc := NewEnquiryService(gw, nil, nil, nil, nil, "")

	_, err := svc.Submit(context.Background(), readySession())
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}

func TestBuildEnquiryRequiresEarlierSteps(t *testing.T) {
	s := readySession()
	s.Location.Resolved = false
	_, err := BuildEnquiry(s)
	assert.True(t, errors.Is(err, appErrors.ErrStepIncomplete))
}
