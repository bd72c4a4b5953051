package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
)

func newAuditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	actor := "admin"
	resourceID := "12"
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), &actor, models.AuditActionApprove, "passkeys", &resourceID, []byte(`{"status":"approved"}`), 200, "10.0.0.1", "curl", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLog{
		Actor:      &actor,
		Action:     models.AuditActionApprove,
		Resource:   "passkeys",
		ResourceID: &resourceID,
		Payload:    []byte(`{"status":"approved"}`),
		StatusCode: 200,
		IPAddress:  "10.0.0.1",
		UserAgent:  "curl",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	rows := sqlmock.NewRows([]string{"id", "actor", "action", "resource", "resource_id", "payload", "status_code", "ip_address", "user_agent", "created_at"}).
		AddRow("a1", "admin", "DELETE", "questions", "4", nil, 204, "127.0.0.1", "test", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, actor, action, resource, resource_id, payload, status_code, ip_address, user_agent, created_at FROM audit_logs WHERE 1=1 AND resource = $1 AND action = $2 ORDER BY created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("questions", "DELETE").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE 1=1 AND resource = $1 AND action = $2")).
		WithArgs("questions", "DELETE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	logs, total, err := repo.List(context.Background(), models.AuditLogFilter{Resource: "questions", Action: "delete", Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 11, total)
	assert.Equal(t, "admin", *logs[0].Actor)
	assert.NoError(t, mock.ExpectationsWereMet())
}
