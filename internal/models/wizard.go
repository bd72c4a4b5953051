package models

import (
	"sort"
	"time"
)

// Step identifies the wizard screen a visitor is on.
type Step int

const (
	StepTeacherType Step = iota
	StepSubjectSelection
	StepLocation
	StepResults
	StepContactInfo
	StepSuccess
)

var stepNames = map[Step]string{
	StepTeacherType:      "teacher_type",
	StepSubjectSelection: "subject_selection",
	StepLocation:         "location",
	StepResults:          "results",
	StepContactInfo:      "contact_info",
	StepSuccess:          "success",
}

// String returns the wire name of the step.
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible.
func (s Step) Terminal() bool {
	return s == StepSuccess
}

// TeacherType is the kind of teacher a visitor is looking for.
type TeacherType string

const (
	TeacherTypeSchool   TeacherType = "school"
	TeacherTypeCoaching TeacherType = "coaching"
	TeacherTypePersonal TeacherType = "personal"
)

// Valid reports whether t is one of the supported teacher types.
func (t TeacherType) Valid() bool {
	switch t {
	case TeacherTypeSchool, TeacherTypeCoaching, TeacherTypePersonal:
		return true
	}
	return false
}

// Selection accumulates the visitor's answers across steps.
type Selection struct {
	TeacherType       TeacherType `json:"teacher_type,omitempty"`
	ClassCategoryID   *int        `json:"class_category_id,omitempty"`
	ClassCategoryName string      `json:"class_category_name,omitempty"`
	SubjectIDs        []int       `json:"subject_ids,omitempty"`
	SubjectNames      []string    `json:"subject_names,omitempty"`
	Pincode           string      `json:"pincode,omitempty"`
	Area              string      `json:"area,omitempty"`
	Email             string      `json:"email,omitempty"`
	ContactNumber     string      `json:"contact_number,omitempty"`
}

// Location holds fields derived from a pincode lookup.
type Location struct {
	Pincode  string   `json:"pincode,omitempty"`
	State    string   `json:"state,omitempty"`
	City     string   `json:"city,omitempty"`
	Areas    []string `json:"areas,omitempty"`
	Resolved bool     `json:"resolved"`
}

// FilterState is the results-step copy of the selection. Editing it never
// touches the original selection. The fetched list is narrowed only while
// Applied is set.
type FilterState struct {
	ClassCategoryID *int   `json:"class_category_id,omitempty"`
	SubjectIDs      []int  `json:"subject_ids,omitempty"`
	Pincode         string `json:"pincode,omitempty"`
	Applied         bool   `json:"applied"`
}

// SearchStatus tracks the teacher search triggered when leaving the location step.
type SearchStatus string

const (
	SearchIdle      SearchStatus = "idle"
	SearchSucceeded SearchStatus = "succeeded"
	SearchFailed    SearchStatus = "failed"
)

// SearchState holds the fetched teacher list.
type SearchState struct {
	Status     SearchStatus    `json:"status"`
	Error      string          `json:"error,omitempty"`
	Results    []TeacherRecord `json:"results,omitempty"`
	SearchedAt *time.Time      `json:"searched_at,omitempty"`
}

// WizardSession is one visitor's pass through the enquiry wizard.
type WizardSession struct {
	ID           string        `json:"id"`
	Step         Step          `json:"step"`
	Selection    Selection     `json:"selection"`
	Location     Location      `json:"location"`
	Search       SearchState   `json:"search"`
	Filter       FilterState   `json:"filter"`
	Notification *Notification `json:"notification,omitempty"`
	EnquiryID    string        `json:"enquiry_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewWizardSession returns a session at the initial step with empty fields.
func NewWizardSession(id string, now time.Time) *WizardSession {
	return &WizardSession{
		ID:        id,
		Step:      StepTeacherType,
		Search:    SearchState{Status: SearchIdle},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeIDs returns the distinct positive ids in ascending order.
func NormalizeIDs(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
