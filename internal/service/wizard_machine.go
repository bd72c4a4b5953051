package service

import (
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

// StepGate returns nil when the session may leave its current step through
// forward navigation. Step 4 is left only by submitting, step 5 is terminal.
func StepGate(session *models.WizardSession) error {
	sel := session.Selection
	switch session.Step {
	case models.StepTeacherType:
		if !sel.TeacherType.Valid() {
			return incomplete("Select the type of teacher you are looking for", "teacher_type")
		}
	case models.StepSubjectSelection:
		if sel.ClassCategoryID == nil {
			return incomplete("Select a class category", "class_category_id")
		}
		if len(sel.SubjectIDs) == 0 {
			return incomplete("Select at least one subject", "subject_ids")
		}
	case models.StepLocation:
		if !session.Location.Resolved || session.Location.Pincode != sel.Pincode {
			return incomplete("Enter a valid pincode", "pincode")
		}
	case models.StepResults:
	case models.StepContactInfo:
		return appErrors.Clone(appErrors.ErrInvalidTransition, "Submit your contact details to continue")
	default:
		return appErrors.Clone(appErrors.ErrInvalidTransition, "The enquiry is already complete")
	}
	return nil
}

// CanAdvance reports whether StepGate passes.
func CanAdvance(session *models.WizardSession) bool {
	return StepGate(session) == nil
}

// CanGoBack reports whether Back is allowed from the current step.
func CanGoBack(session *models.WizardSession) bool {
	return session.Step > models.StepTeacherType && !session.Step.Terminal()
}

// Advance moves one step forward when the gate allows it.
func Advance(session *models.WizardSession) (models.Step, error) {
	if err := StepGate(session); err != nil {
		return session.Step, err
	}
	session.Step++
	return session.Step, nil
}

// Retreat moves one step back without discarding any entered data.
func Retreat(session *models.WizardSession) (models.Step, error) {
	if !CanGoBack(session) {
		if session.Step.Terminal() {
			return session.Step, appErrors.Clone(appErrors.ErrInvalidTransition, "The enquiry is already complete")
		}
		return session.Step, appErrors.Clone(appErrors.ErrInvalidTransition, "Already at the first step")
	}
	session.Step--
	return session.Step, nil
}

// Complete moves a contact-step session to the terminal state and clears
// everything the visitor entered.
func Complete(session *models.WizardSession) {
	session.Step = models.StepSuccess
	session.Selection = models.Selection{}
	session.Location = models.Location{}
	session.Filter = models.FilterState{}
	session.Search = models.SearchState{Status: models.SearchIdle}
}

func incomplete(message, field string) error {
	return appErrors.WithFields(appErrors.ErrStepIncomplete, message, map[string]string{field: message})
}
