package models

import "time"

// Resource is an admin-managed backend collection.
type Resource string

const (
	ResourceReports     Resource = "reports"
	ResourceExamCenters Resource = "examcenters"
	ResourceRoles       Resource = "roles"
	ResourceQuestions   Resource = "questions"
	ResourceRecruiters  Resource = "recruiters"
	ResourceInterviews  Resource = "interviews"
	ResourcePasskeys    Resource = "passkeys"
	ResourceTeachers    Resource = "teachers"
)

// ResourcePaths maps each admin resource to its backend collection path.
var ResourcePaths = map[Resource]string{
	ResourceReports:     "/api/admin/report/",
	ResourceExamCenters: "/api/admin/examcenter/",
	ResourceRoles:       "/api/admin/role/",
	ResourceQuestions:   "/api/admin/question/",
	ResourceRecruiters:  "/api/all/recruiter/basicProfile/",
	ResourceInterviews:  "/api/admin/interview/",
	ResourcePasskeys:    "/api/admin/passkey/",
	ResourceTeachers:    "/api/admin/allTeacher/",
}

// Path returns the backend collection path and whether the resource is known.
func (r Resource) Path() (string, bool) {
	p, ok := ResourcePaths[r]
	return p, ok
}

// Record is an opaque backend object passed through unchanged.
type Record map[string]interface{}

// PasskeyStatus is the decision applied to a pending passkey.
type PasskeyStatus string

const (
	PasskeyApproved PasskeyStatus = "approved"
	PasskeyRejected PasskeyStatus = "rejected"
)

// Backup is a database snapshot held by the backend.
type Backup struct {
	Name      string     `json:"name"`
	Size      int64      `json:"size,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
