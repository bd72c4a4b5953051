package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

func TestStepGates(t *testing.T) {
	s := models.NewWizardSession("s", time.Now())

	_, err := Advance(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStepIncomplete))
	assert.True(t, appErrors.FromError(err).HasField("teacher_type"))
	assert.Equal(t, models.StepTeacherType, s.Step)

	s.Selection.TeacherType = models.TeacherTypeSchool
	step, err := Advance(s)
	require.NoError(t, err)
	assert.Equal(t, models.StepSubjectSelection, step)

	s.Selection.ClassCategoryID = models.IntPtr(1)
	_, err = Advance(s)
	assert.True(t, appErrors.FromError(err).HasField("subject_ids"))

	s.Selection.SubjectIDs = []int{3, 5}
	_, err = Advance(s)
	require.NoError(t, err)

	s.Selection.Pincode = "800001"
	s.Location = models.Location{Pincode: "800002", Resolved: true}
	_, err = Advance(s)
	assert.True(t, appErrors.FromError(err).HasField("pincode"), "location resolved for another pincode")

	s.Location.Pincode = "800001"
	_, err = Advance(s)
	require.NoError(t, err)
	assert.Equal(t, models.StepResults, s.Step)

	_, err = Advance(s)
	require.NoError(t, err)
	assert.Equal(t, models.StepContactInfo, s.Step)

	_, err = Advance(s)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Equal(t, models.StepContactInfo, s.Step)
}

func TestRetreatKeepsData(t *testing.T) {
	s := models.NewWizardSession("s", time.Now())
	_, err := Retreat(s)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	s.Step = models.StepLocation
	s.Selection.Pincode = "800001"
	step, err := Retreat(s)
	require.NoError(t, err)
	assert.Equal(t, models.StepSubjectSelection, step)
	assert.Equal(t, "800001", s.Selection.Pincode)

	s.Step = models.StepSuccess
	_, err = Retreat(s)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Equal(t, models.StepSuccess, s.Step)
}

func TestCompleteClearsSelection(t *testing.T) {
	s := models.NewWizardSession("s", time.Now())
	s.Step = models.StepContactInfo
	s.Selection = models.Selection{TeacherType: models.TeacherTypeCoaching, Email: "a@b.com"}
	Complete(s)

	assert.Equal(t, models.StepSuccess, s.Step)
	assert.Equal(t, models.Selection{}, s.Selection)
	assert.False(t, CanAdvance(s))
	assert.False(t, CanGoBack(s))
}
