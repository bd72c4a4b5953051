package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

type recordingAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditLog
	failN   int
}

func (r *recordingAuditStore) Create(_ context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failN > 0 {
		r.failN--
		return errors.New("db down")
	}
	r.entries = append(r.entries, *log)
	return nil
}

func (r *recordingAuditStore) List(context.Context, models.AuditLogFilter) ([]models.AuditLog, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditLog(nil), r.entries...), len(r.entries), nil
}

func (r *recordingAuditStore) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func TestAuditServiceWritesThroughQueue(t *testing.T) {
	store := &recordingAuditStore{failN: 1}
	svc := NewAuditService(store, AuditConfig{Workers: 1, MaxRetries: 2, RetryDelay: 10 * time.Millisecond}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Record(models.AuditLog{Action: models.AuditActionDelete, Resource: "questions"})

	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)
	logs, page, err := svc.List(context.Background(), models.AuditLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, "questions", logs[0].Resource)
	assert.False(t, logs[0].CreatedAt.IsZero())
	assert.Equal(t, 1, page.TotalCount)
	assert.Zero(t, svc.Failures())
}

func TestAuditServiceDisabled(t *testing.T) {
	svc := NewAuditService(nil, AuditConfig{}, nil)
	svc.Start(context.Background())
	svc.Record(models.AuditLog{Action: "X"})
	svc.Stop()

	_, _, err := svc.List(context.Background(), models.AuditLogFilter{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.False(t, svc.Enabled())
}
