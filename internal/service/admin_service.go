package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

// ResourceGateway performs CRUD on backend admin resources.
type ResourceGateway interface {
	List(ctx context.Context, token string, resource models.Resource, query url.Values) ([]models.Record, int, error)
	Get(ctx context.Context, token string, resource models.Resource, id string) (models.Record, error)
	Create(ctx context.Context, token string, resource models.Resource, body models.Record) (models.Record, error)
	Update(ctx context.Context, token string, resource models.Resource, id string, body models.Record) (models.Record, error)
	Delete(ctx context.Context, token string, resource models.Resource, id string) error
	SetPasskeyStatus(ctx context.Context, token, id string, status models.PasskeyStatus) (models.Record, error)
}

// ListParams holds admin list parameters. Extra keys pass through as filters.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Extra    url.Values
}

// AdminService is the thin admin layer over backend resources.
type AdminService struct {
	gateway ResourceGateway
	logger  *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(gateway ResourceGateway, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{gateway: gateway, logger: logger}
}

// ParseResource validates a resource key from the URL.
func ParseResource(raw string) (models.Resource, error) {
	resource := models.Resource(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := resource.Path(); !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "unknown admin resource "+raw)
	}
	return resource, nil
}

// List returns a page of records.
func (s *AdminService) List(ctx context.Context, token string, resource models.Resource, params ListParams) ([]models.Record, *models.Pagination, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	size := params.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	query := url.Values{}
	for k, v := range params.Extra {
		query[k] = append([]string(nil), v...)
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(size))
	if search := strings.TrimSpace(params.Search); search != "" {
		query.Set("search", search)
	}

	records, total, err := s.gateway.List(ctx, token, resource, query)
	if err != nil {
		return nil, nil, err
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one record.
func (s *AdminService) Get(ctx context.Context, token string, resource models.Resource, id string) (models.Record, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.gateway.Get(ctx, token, resource, id)
}

// Create adds a record.
func (s *AdminService) Create(ctx context.Context, token string, resource models.Resource, body models.Record) (models.Record, error) {
	if len(body) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request body must not be empty")
	}
	return s.gateway.Create(ctx, token, resource, body)
}

// Update patches a record.
func (s *AdminService) Update(ctx context.Context, token string, resource models.Resource, id string, body models.Record) (models.Record, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request body must not be empty")
	}
	return s.gateway.Update(ctx, token, resource, id, body)
}

// Delete removes a record.
func (s *AdminService) Delete(ctx context.Context, token string, resource models.Resource, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.gateway.Delete(ctx, token, resource, id); err != nil {
		return err
	}
	s.logger.Info("admin record deleted", zap.String("resource", string(resource)), zap.String("id", id))
	return nil
}

// DecidePasskey approves or rejects a passkey request.
func (s *AdminService) DecidePasskey(ctx context.Context, token, id string, status models.PasskeyStatus) (models.Record, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if status != models.PasskeyApproved && status != models.PasskeyRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}
	return s.gateway.SetPasskeyStatus(ctx, token, id, status)
}

func requireID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/?#") {
		msg := "id is invalid"
		return appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"id": msg})
	}
	return nil
}
