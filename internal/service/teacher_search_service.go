package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/gateway"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

// TeacherDirectory runs teacher searches against the backend.
type TeacherDirectory interface {
	SearchTeachers(ctx context.Context, q *gateway.TeacherQuery) ([]models.TeacherRecord, error)
	SearchAdminTeachers(ctx context.Context, token string, q *gateway.TeacherQuery) ([]models.TeacherRecord, int, error)
}

// TeacherSearchService builds backend teacher queries.
type TeacherSearchService struct {
	directory TeacherDirectory
	logger    *zap.Logger
}

// NewTeacherSearchService constructs a TeacherSearchService.
func NewTeacherSearchService(directory TeacherDirectory, logger *zap.Logger) *TeacherSearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherSearchService{directory: directory, logger: logger}
}

// ForSelection searches teachers matching the wizard selection.
func (s *TeacherSearchService) ForSelection(ctx context.Context, sel models.Selection) ([]models.TeacherRecord, error) {
	q := gateway.WizardQuery(sel.ClassCategoryName, sel.SubjectNames, sel.Pincode, sel.Area)
	teachers, err := s.directory.SearchTeachers(ctx, q)
	if err != nil {
		s.logger.Warn("teacher search failed", zap.String("pincode", sel.Pincode), zap.Error(err))
		return nil, err
	}
	return teachers, nil
}

// AdminSearch runs the admin search forwarding the caller's token.
func (s *TeacherSearchService) AdminSearch(ctx context.Context, token string, req dto.TeacherSearchRequest) ([]models.TeacherRecord, *models.Pagination, error) {
	if err := checkRange("score", req.ScoreMin, req.ScoreMax); err != nil {
		return nil, nil, err
	}
	if err := checkRange("experience", req.ExperienceMin, req.ExperienceMax); err != nil {
		return nil, nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 20
	}

	q := gateway.NewTeacherQuery().
		Add("subject", req.Subjects...).
		Add("class_category", req.ClassCategories...).
		Add("job_role", req.JobRoles...).
		Add("skill", req.Skills...).
		Set("pincode", req.Pincode).
		Set("area", req.Area).
		Set("city", req.City).
		Set("state", req.State).
		Range("score", req.ScoreMin, req.ScoreMax).
		Range("experience", req.ExperienceMin, req.ExperienceMax).
		Set("page", strconv.Itoa(page)).
		Set("page_size", strconv.Itoa(size))

	teachers, total, err := s.directory.SearchAdminTeachers(ctx, token, q)
	if err != nil {
		return nil, nil, err
	}
	return teachers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func checkRange(name string, min, max *float64) error {
	if min != nil && max != nil && *min > *max {
		msg := name + "_min must not exceed " + name + "_max"
		return appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{name + "_min": msg})
	}
	return nil
}
