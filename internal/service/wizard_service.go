package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// SessionRepository persists wizard sessions.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.WizardSession, error)
	Save(ctx context.Context, session *models.WizardSession, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// CategoryResolver looks up a class category with its subjects.
type CategoryResolver interface {
	Category(ctx context.Context, id int) (*models.ClassCategory, error)
	Subject(ctx context.Context, id int) (models.Subject, bool, error)
}

// LocationResolver resolves a pincode into a location.
type LocationResolver interface {
	Resolve(ctx context.Context, pincode, state string) (*models.Location, error)
}

// TeacherFinder searches teachers for a selection.
type TeacherFinder interface {
	ForSelection(ctx context.Context, sel models.Selection) ([]models.TeacherRecord, error)
}

// EnquirySubmitter submits the final step.
type EnquirySubmitter interface {
	Submit(ctx context.Context, session *models.WizardSession) (*models.EnquiryReceipt, error)
}

// WizardDeps groups the collaborators of WizardService.
type WizardDeps struct {
	Sessions  SessionRepository
	Tokens    *SessionTokenService
	Catalog   CategoryResolver
	Locations LocationResolver
	Teachers  TeacherFinder
	Enquiries EnquirySubmitter
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// WizardService drives one enquiry wizard per visitor. Every mutation runs
// under the session's lock.
type WizardService struct {
	sessions  SessionRepository
	tokens    *SessionTokenService
	catalog   CategoryResolver
	locations LocationResolver
	teachers  TeacherFinder
	enquiries EnquirySubmitter
	metrics   *MetricsService
	logger    *zap.Logger
	locks     *sessionLocks
	now       func() time.Time
	newID     func() string
}

// NewWizardService constructs a WizardService.
func NewWizardService(deps WizardDeps) *WizardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardService{
		sessions:  deps.Sessions,
		tokens:    deps.Tokens,
		catalog:   deps.Catalog,
		locations: deps.Locations,
		teachers:  deps.Teachers,
		enquiries: deps.Enquiries,
		metrics:   deps.Metrics,
		logger:    logger,
		locks:     newSessionLocks(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Start creates a session at the first step and issues its token.
func (s *WizardService) Start(ctx context.Context) (*models.WizardSession, string, time.Time, error) {
	session := models.NewWizardSession(s.newID(), s.now().UTC())
	token, expiresAt, err := s.tokens.Issue(session.ID)
	if err != nil {
		return nil, "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue wizard token")
	}
	if err := s.sessions.Save(ctx, session, s.tokens.TTL()); err != nil {
		return nil, "", time.Time{}, err
	}
	s.logger.Debug("wizard session started", zap.String("session_id", session.ID))
	return session, token, expiresAt, nil
}

// Get loads a session.
func (s *WizardService) Get(ctx context.Context, id string) (*models.WizardSession, error) {
	return s.sessions.Get(ctx, id)
}

// Close discards a session. The visitor starts again at the first step.
func (s *WizardService) Close(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.sessions.Delete(ctx, id)
}

// SetTeacherType records the teacher type on the first step.
func (s *WizardService) SetTeacherType(ctx context.Context, id string, teacherType models.TeacherType) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepTeacherType); err != nil {
			return err
		}
		if !teacherType.Valid() {
			msg := "teacher_type must be one of school, coaching, personal"
			return appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"teacher_type": msg})
		}
		session.Selection.TeacherType = teacherType
		return nil
	})
}

// SetSubjects records the class category and subjects. Changing the category
// drops subjects that do not belong to it.
func (s *WizardService) SetSubjects(ctx context.Context, id string, categoryID int, subjectIDs []int) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepSubjectSelection); err != nil {
			return err
		}
		category, err := s.catalog.Category(ctx, categoryID)
		if err != nil {
			return err
		}

		sel := &session.Selection
		ids := NormalizeSubjectSelection(sel, categoryID, subjectIDs)
		names := make([]string, 0, len(ids))
		for _, sid := range ids {
			subject, ok := category.SubjectByID(sid)
			if !ok && len(category.Subjects) == 0 {
				if subject, ok, err = s.catalog.Subject(ctx, sid); err != nil {
					return err
				}
			}
			if !ok {
				msg := "subject " + strconv.Itoa(sid) + " is not offered for " + category.Name
				return appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"subject_ids": msg})
			}
			names = append(names, subject.Name)
		}

		sel.ClassCategoryID = models.IntPtr(category.ID)
		sel.ClassCategoryName = category.Name
		sel.SubjectIDs = ids
		sel.SubjectNames = names
		return nil
	})
}

// NormalizeSubjectSelection returns the subject ids to store. A nil request
// keeps the current subjects unless the category changes.
func NormalizeSubjectSelection(sel *models.Selection, categoryID int, requested []int) []int {
	if requested != nil {
		return models.NormalizeIDs(requested)
	}
	if sel.ClassCategoryID != nil && *sel.ClassCategoryID == categoryID {
		return sel.SubjectIDs
	}
	return nil
}

// SetLocation records a pincode and resolves it. The lookup runs without the
// session lock; its result is applied only if the session still carries the
// same pincode afterwards, so a newer pincode is never overwritten.
func (s *WizardService) SetLocation(ctx context.Context, id, pincode, state string) (*models.WizardSession, error) {
	pincode = strings.TrimSpace(pincode)
	if session, err := s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepLocation); err != nil {
			return err
		}
		if !validation.IsPincode(pincode) {
			msg := "pincode must be a 6 digit pincode"
			return appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"pincode": msg})
		}
		session.Selection.Pincode = pincode
		session.Selection.Area = ""
		session.Location = models.Location{Pincode: pincode}
		return nil
	}); err != nil {
		return session, err
	}

	location, lookupErr := s.locations.Resolve(ctx, pincode, state)

	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if session.Selection.Pincode != pincode || session.Step != models.StepLocation {
			s.logger.Debug("dropping stale pincode lookup", zap.String("session_id", id), zap.String("pincode", pincode))
			return nil
		}
		if lookupErr != nil {
			session.Location = models.Location{Pincode: pincode}
			return lookupErr
		}
		session.Location = *location
		if len(location.Areas) == 1 {
			session.Selection.Area = location.Areas[0]
		}
		return nil
	})
}

// SetArea picks one of the resolved areas.
func (s *WizardService) SetArea(ctx context.Context, id, area string) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepLocation); err != nil {
			return err
		}
		if !session.Location.Resolved {
			return incomplete("Enter a valid pincode first", "pincode")
		}
		area = strings.TrimSpace(area)
		for _, candidate := range session.Location.Areas {
			if strings.EqualFold(candidate, area) {
				session.Selection.Area = candidate
				return nil
			}
		}
		msg := "area must be one of the areas for " + session.Location.Pincode
		return appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"area": msg})
	})
}

// SetContact stores contact details. They are validated on submit.
func (s *WizardService) SetContact(ctx context.Context, id, email, contact string) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepContactInfo); err != nil {
			return err
		}
		session.Selection.Email = strings.TrimSpace(email)
		session.Selection.ContactNumber = strings.TrimSpace(contact)
		return nil
	})
}

// Next moves forward. Leaving the location step runs the teacher search;
// the session enters the results step even when the search fails.
func (s *WizardService) Next(ctx context.Context, id string) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		from := session.Step
		if _, err := Advance(session); err != nil {
			return err
		}
		if from == models.StepLocation {
			s.search(ctx, session)
		}
		return nil
	})
}

// Back moves one step back.
func (s *WizardService) Back(ctx context.Context, id string) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		_, err := Retreat(session)
		return err
	})
}

// RetrySearch repeats the teacher search on the results step.
func (s *WizardService) RetrySearch(ctx context.Context, id string) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepResults); err != nil {
			return err
		}
		s.search(ctx, session)
		return nil
	})
}

// UpdateFilter replaces the results filter. The selection is not touched.
func (s *WizardService) UpdateFilter(ctx context.Context, id string, req dto.FilterRequest) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepResults); err != nil {
			return err
		}
		f := models.FilterState{SubjectIDs: models.NormalizeIDs(req.SubjectIDs), Pincode: strings.TrimSpace(req.Pincode), Applied: true}
		if req.ClassCategoryID != nil && *req.ClassCategoryID > 0 {
			f.ClassCategoryID = models.IntPtr(*req.ClassCategoryID)
		}
		session.Filter = f
		return nil
	})
}

// ResetFilter restores the filter values from the selection and shows the
// whole fetched list again.
func (s *WizardService) ResetFilter(ctx context.Context, id string) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepResults); err != nil {
			return err
		}
		session.Filter = FilterFromSelection(session.Selection)
		return nil
	})
}

// Submit posts the enquiry. Optional contact details are stored first. On
// success the session moves to the terminal step with its selection cleared.
func (s *WizardService) Submit(ctx context.Context, id string, contact *dto.ContactRequest) (*models.WizardSession, error) {
	return s.mutate(ctx, id, func(session *models.WizardSession) error {
		if err := requireStep(session, models.StepContactInfo); err != nil {
			return err
		}
		if contact != nil {
			session.Selection.Email = strings.TrimSpace(contact.Email)
			session.Selection.ContactNumber = strings.TrimSpace(contact.ContactNumber)
		}
		receipt, err := s.enquiries.Submit(ctx, session)
		if err != nil {
			return err
		}
		Complete(session)
		if receipt != nil && receipt.ID > 0 {
			session.EnquiryID = strconv.Itoa(receipt.ID)
		}
		session.Notification = models.Success("Your enquiry has been submitted. We will contact you shortly.")
		return nil
	})
}

func (s *WizardService) search(ctx context.Context, session *models.WizardSession) {
	now := s.now().UTC()
	teachers, err := s.teachers.ForSelection(ctx, session.Selection)
	if err != nil {
		msg := "Could not load teachers. Please retry."
		session.Search = models.SearchState{Status: models.SearchFailed, Error: appErrors.FromError(err).Message, SearchedAt: &now}
		session.Notification = models.Failure(msg, "")
		return
	}
	session.Search = models.SearchState{Status: models.SearchSucceeded, Results: teachers, SearchedAt: &now}
	session.Filter = FilterFromSelection(session.Selection)
	if len(teachers) == 0 {
		session.Notification = &models.Notification{Level: models.NotificationInfo, Message: "No teachers match your selection yet"}
	}
}

// mutate loads the session under its lock, applies fn and saves the result.
// The session is saved even when fn fails so the error notification sticks.
func (s *WizardService) mutate(ctx context.Context, id string, fn func(*models.WizardSession) error) (*models.WizardSession, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Notification = nil
	from := session.Step

	fnErr := fn(session)
	if fnErr != nil && session.Notification == nil {
		session.Notification = notificationFor(fnErr)
	}
	session.UpdatedAt = s.now().UTC()

	if err := s.sessions.Save(ctx, session, s.tokens.TTL()); err != nil {
		return nil, err
	}
	if session.Step != from {
		s.metrics.RecordWizardTransition(from, session.Step)
		s.logger.Debug("wizard transition", zap.String("session_id", id), zap.String("from", from.String()), zap.String("to", session.Step.String()))
	}
	return session, fnErr
}

func notificationFor(err error) *models.Notification {
	appErr := appErrors.FromError(err)
	n := models.Failure(appErr.Message, "")
	if len(appErr.Fields) == 1 {
		for field := range appErr.Fields {
			n.Field = field
		}
	}
	return n
}

func requireStep(session *models.WizardSession, step models.Step) error {
	if session.Step != step {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "this action is only available on the "+step.String()+" step")
	}
	return nil
}

// ProjectSession builds the client view of a session. Results are narrowed
// only by a filter the user applied.
func ProjectSession(session *models.WizardSession) dto.SessionView {
	view := dto.SessionView{
		ID:         session.ID,
		Step:       session.Step,
		StepName:   session.Step.String(),
		Selection:  session.Selection,
		Location:   session.Location,
		Filter:     session.Filter,
		CanAdvance: CanAdvance(session),
		CanGoBack:  CanGoBack(session),
		EnquiryID:  session.EnquiryID,
		UpdatedAt:  session.UpdatedAt,
	}
	if session.Search.Status != "" && session.Search.Status != models.SearchIdle {
		visible := session.Search.Results
		if session.Filter.Applied {
			visible = ApplyFilter(visible, session.Filter)
		}
		view.Search = &dto.SearchView{
			Status:   session.Search.Status,
			Error:    session.Search.Error,
			Total:    len(session.Search.Results),
			Visible:  len(visible),
			Results:  visible,
			CanRetry: session.Step == models.StepResults && session.Search.Status == models.SearchFailed,
		}
	}
	return view
}
