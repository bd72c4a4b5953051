package dto

import "github.com/noah-isme/teacherhub-gateway/internal/models"

// TeacherSearchRequest holds admin teacher search parameters. Slice fields
// are sent as repeated keys and numeric bounds as _min/_max pairs.
type TeacherSearchRequest struct {
	Subjects        []string `form:"subject"`
	ClassCategories []string `form:"class_category"`
	JobRoles        []string `form:"job_role"`
	Skills          []string `form:"skill"`
	Pincode         string   `form:"pincode" validate:"omitempty,pincode"`
	Area            string   `form:"area"`
	City            string   `form:"city"`
	State           string   `form:"state"`
	ScoreMin        *float64 `form:"score_min" validate:"omitempty,min=0"`
	ScoreMax        *float64 `form:"score_max" validate:"omitempty,min=0"`
	ExperienceMin   *float64 `form:"experience_min" validate:"omitempty,min=0"`
	ExperienceMax   *float64 `form:"experience_max" validate:"omitempty,min=0"`
	Page            int      `form:"page" validate:"omitempty,min=1"`
	PageSize        int      `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// PasskeyDecisionRequest is the optional body of approve/reject calls.
type PasskeyDecisionRequest struct {
	Reason string `json:"reason"`
}

// RestoreBackupRequest names the snapshot to restore.
type RestoreBackupRequest struct {
	Backup string `json:"backup" validate:"required"`
}

// AuditLogQuery filters the audit trail listing.
type AuditLogQuery struct {
	Resource string `form:"resource"`
	Action   string `form:"action"`
	Actor    string `form:"actor"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// Filter converts the query into a repository filter.
func (q AuditLogQuery) Filter() models.AuditLogFilter {
	return models.AuditLogFilter{Resource: q.Resource, Action: q.Action, Actor: q.Actor, Page: q.Page, PageSize: q.PageSize}
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf datauri"`
}
