package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

// BackupGateway manages backend database snapshots.
type BackupGateway interface {
	ListBackups(ctx context.Context, token string) ([]models.Backup, error)
	CreateBackup(ctx context.Context, token string) (*models.Backup, error)
	RestoreBackup(ctx context.Context, token, name string) error
}

// BackupService lists, creates and restores database backups.
type BackupService struct {
	gateway BackupGateway
	catalog *CatalogService
	logger  *zap.Logger
}

// NewBackupService constructs a BackupService. catalog may be nil.
func NewBackupService(gateway BackupGateway, catalog *CatalogService, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{gateway: gateway, catalog: catalog, logger: logger}
}

// List returns available backups.
func (s *BackupService) List(ctx context.Context, token string) ([]models.Backup, error) {
	return s.gateway.ListBackups(ctx, token)
}

// Create takes a new backup.
func (s *BackupService) Create(ctx context.Context, token string) (*models.Backup, error) {
	backup, err := s.gateway.CreateBackup(ctx, token)
	if err != nil {
		return nil, err
	}
	s.logger.Info("backup created", zap.String("name", backup.Name))
	return backup, nil
}

// Restore restores a backup that the backend currently lists. Cached
// catalogue data is dropped afterwards.
func (s *BackupService) Restore(ctx context.Context, token, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		msg := "backup name is invalid"
		return appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"backup": msg})
	}

	backups, err := s.gateway.ListBackups(ctx, token)
	if err != nil {
		return err
	}
	found := false
	for _, b := range backups {
		if b.Name == name {
			found = true
			break
		}
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "backup "+name+" not found")
	}

	if err := s.gateway.RestoreBackup(ctx, token, name); err != nil {
		return err
	}
	s.logger.Warn("database restored from backup", zap.String("name", name))
	if s.catalog != nil {
		if err := s.catalog.Invalidate(ctx); err != nil {
			s.logger.Warn("catalog cache not invalidated after restore", zap.Error(err))
		}
	}
	return nil
}
