package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/notify"
	"github.com/noah-isme/teacherhub-gateway/pkg/validation"
)

// Enquiry outcomes reported to metrics.
const (
	EnquiryAccepted = "accepted"
	EnquiryRejected = "rejected"
	EnquiryFailed   = "failed"
)

// contactFields are the form fields a backend 400 may be pinned to.
var contactFields = []string{"contact", "email"}

// EnquiryGateway posts enquiries to the backend.
type EnquiryGateway interface {
	CreateEnquiry(ctx context.Context, enquiry models.Enquiry) (*models.EnquiryReceipt, error)
}

// EnquiryService validates and submits the final wizard step.
type EnquiryService struct {
	gateway   EnquiryGateway
	validator *validation.Validator
	sender    notify.Sender
	metrics   *MetricsService
	logger    *zap.Logger
	appName   string
}

type contactForm struct {
	Email   string `json:"email" validate:"required,simple_email"`
	Contact string `json:"contact" validate:"required,mobile"`
}

// NewEnquiryService constructs an EnquiryService. sender may be nil.
func NewEnquiryService(gateway EnquiryGateway, validator *validation.Validator, sender notify.Sender, metrics *MetricsService, logger *zap.Logger, appName string) *EnquiryService {
	if validator == nil {
		validator = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if appName == "" {
		appName = "TeacherHub"
	}
	return &EnquiryService{gateway: gateway, validator: validator, sender: sender, metrics: metrics, logger: logger, appName: appName}
}

// ValidateContact checks the contact form locally.
func (s *EnquiryService) ValidateContact(email, contact string) error {
	form := contactForm{Email: strings.TrimSpace(email), Contact: strings.TrimSpace(contact)}
	if err := s.validator.Struct(form); err != nil {
		fields := s.validator.FieldErrors(err)
		if len(fields) == 0 {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
		}
		return appErrors.WithFields(appErrors.ErrValidation, "Please correct the highlighted fields", fields)
	}
	return nil
}

// BuildEnquiry assembles the backend payload from a session.
func BuildEnquiry(session *models.WizardSession) (models.Enquiry, error) {
	sel := session.Selection
	if sel.ClassCategoryID == nil || len(sel.SubjectIDs) == 0 || !session.Location.Resolved {
		return models.Enquiry{}, appErrors.Clone(appErrors.ErrStepIncomplete, "earlier steps are incomplete")
	}
	return models.Enquiry{
		TeacherType:       sel.TeacherType,
		ClassCategory:     *sel.ClassCategoryID,
		ClassCategoryName: sel.ClassCategoryName,
		Subjects:          append([]int(nil), sel.SubjectIDs...),
		SubjectNames:      append([]string(nil), sel.SubjectNames...),
		Pincode:           sel.Pincode,
		Area:              sel.Area,
		State:             session.Location.State,
		City:              session.Location.City,
		Email:             strings.TrimSpace(sel.Email),
		Contact:           strings.TrimSpace(sel.ContactNumber),
	}, nil
}

// Submit validates the contact details and posts the enquiry. Field-level
// backend rejections come back as validation errors naming the field; any
// other failure becomes a generic upstream error.
func (s *EnquiryService) Submit(ctx context.Context, session *models.WizardSession) (*models.EnquiryReceipt, error) {
	if err := s.ValidateContact(session.Selection.Email, session.Selection.ContactNumber); err != nil {
		return nil, err
	}
	enquiry, err := BuildEnquiry(session)
	if err != nil {
		return nil, err
	}

	receipt, err := s.gateway.CreateEnquiry(ctx, enquiry)
	if err != nil {
		appErr := appErrors.FromError(err)
		if fields := formFieldErrors(appErr); len(fields) > 0 {
			s.metrics.RecordEnquiry(EnquiryRejected)
			message := appErr.Message
			if len(fields) == 1 {
				for _, m := range fields {
					message = m
				}
			}
			out := appErrors.WithFields(appErrors.ErrValidation, message, fields)
			out.Err = err
			return nil, out
		}
		s.metrics.RecordEnquiry(EnquiryFailed)
		s.logger.Warn("enquiry submission failed", zap.String("session_id", session.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "We could not submit your enquiry, please try again")
	}

	s.metrics.RecordEnquiry(EnquiryAccepted)
	s.confirm(ctx, enquiry, receipt)
	return receipt, nil
}

func (s *EnquiryService) confirm(ctx context.Context, enquiry models.Enquiry, receipt *models.EnquiryReceipt) {
	if s.sender == nil {
		return
	}
	subjects := strings.Join(enquiry.SubjectNames, ", ")
	if subjects == "" {
		subjects = "your selected subjects"
	}
	text := fmt.Sprintf("Thank you for your enquiry with %s. We are matching %s teachers for %s near %s, %s and will contact you on %s.",
		s.appName, enquiry.TeacherType, subjects, enquiry.City, enquiry.Pincode, enquiry.Contact)
	if receipt != nil && receipt.ID > 0 {
		text += " Reference: #" + strconv.Itoa(receipt.ID) + "."
	}
	msg := notify.Message{
		ToEmail: enquiry.Email,
		Subject: "We received your enquiry",
		Text:    text,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn("enquiry confirmation not sent", zap.String("email", enquiry.Email), zap.Error(err))
	}
}

func formFieldErrors(err *appErrors.Error) map[string]string {
	if err == nil || err.Status != appErrors.ErrValidation.Status || len(err.Fields) == 0 {
		return nil
	}
	out := make(map[string]string)
	for _, field := range contactFields {
		if msg, ok := err.Fields[field]; ok {
			out[field] = msg
		}
	}
	return out
}
