package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
	"github.com/noah-isme/teacherhub-gateway/pkg/jobs"
)

// AuditStore persists audit entries.
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
}

// AuditConfig tunes the audit writer pool.
type AuditConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// AuditService writes audit entries through a background queue so requests
// never wait on the database.
type AuditService struct {
	store  AuditStore
	queue  *jobs.Queue[models.AuditLog]
	logger *zap.Logger
}

// NewAuditService constructs an AuditService. A nil store disables persistence.
func NewAuditService(store AuditStore, cfg AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{store: store, logger: logger}
	if store != nil {
		s.queue = jobs.NewQueue[models.AuditLog]("audit", s.write, jobs.QueueConfig{
			Workers:    cfg.Workers,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Logger:     logger,
		})
	}
	return s
}

// Enabled reports whether entries are persisted.
func (s *AuditService) Enabled() bool {
	return s != nil && s.store != nil
}

// Start launches the writer pool.
func (s *AuditService) Start(ctx context.Context) {
	if s.Enabled() {
		s.queue.Start(ctx)
	}
}

// Stop drains the writer pool.
func (s *AuditService) Stop() {
	if s.Enabled() {
		s.queue.Stop()
	}
}

// Record queues an entry. Entries are dropped with a warning when the queue is full.
func (s *AuditService) Record(entry models.AuditLog) {
	if !s.Enabled() {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := s.queue.Enqueue(entry); err != nil {
		s.logger.Warn("audit entry dropped", zap.String("action", entry.Action), zap.String("resource", entry.Resource), zap.Error(err))
	}
}

// List returns stored entries.
func (s *AuditService) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, *models.Pagination, error) {
	if !s.Enabled() {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "audit logging is disabled")
	}
	logs, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return logs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Failures returns the number of entries dropped after retries.
func (s *AuditService) Failures() int64 {
	if !s.Enabled() {
		return 0
	}
	return s.queue.Failures()
}

func (s *AuditService) write(ctx context.Context, job jobs.Job[models.AuditLog]) error {
	entry := job.Payload
	return s.store.Create(ctx, &entry)
}
