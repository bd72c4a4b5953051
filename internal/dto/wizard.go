package dto

import (
	"time"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
)

// TeacherTypeRequest selects the kind of teacher.
type TeacherTypeRequest struct {
	TeacherType string `json:"teacher_type" validate:"required,oneof=school coaching personal"`
}

// SubjectsRequest sets the class category and subjects. Omitting subject_ids
// keeps the current subjects when the category is unchanged.
type SubjectsRequest struct {
	ClassCategoryID *int  `json:"class_category_id" validate:"required,min=1"`
	SubjectIDs      []int `json:"subject_ids" validate:"omitempty,dive,min=1"`
}

// LocationRequest sets the pincode and triggers a lookup. State is an
// optional hint routing the lookup through the state-specific endpoint.
type LocationRequest struct {
	Pincode string `json:"pincode" validate:"required,pincode"`
	State   string `json:"state"`
}

// AreaRequest picks one of the resolved areas.
type AreaRequest struct {
	Area string `json:"area" validate:"required"`
}

// ContactRequest carries the contact details entered on the final form.
type ContactRequest struct {
	Email         string `json:"email"`
	ContactNumber string `json:"contact"`
}

// FilterRequest edits the results filter.
type FilterRequest struct {
	ClassCategoryID *int   `json:"class_category_id"`
	SubjectIDs      []int  `json:"subject_ids"`
	Pincode         string `json:"pincode" validate:"omitempty,pincode"`
}

// SearchView summarises the teacher search for the client.
type SearchView struct {
	Status   models.SearchStatus    `json:"status"`
	Error    string                 `json:"error,omitempty"`
	Total    int                    `json:"total"`
	Visible  int                    `json:"visible"`
	Results  []models.TeacherRecord `json:"results"`
	CanRetry bool                   `json:"can_retry"`
}

// SessionView is the client-facing projection of a wizard session.
type SessionView struct {
	ID         string             `json:"id"`
	Step       models.Step        `json:"step"`
	StepName   string             `json:"step_name"`
	Selection  models.Selection   `json:"selection"`
	Location   models.Location    `json:"location"`
	Filter     models.FilterState `json:"filter"`
	Search     *SearchView        `json:"search,omitempty"`
	CanAdvance bool               `json:"can_advance"`
	CanGoBack  bool               `json:"can_go_back"`
	EnquiryID  string             `json:"enquiry_id,omitempty"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// StartSessionResponse is returned when a wizard session begins.
type StartSessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Session   SessionView `json:"session"`
}
