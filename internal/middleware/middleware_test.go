package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWizardTokenBindsSession(t *testing.T) {
	tokens := service.NewSessionTokenService("secret", "test", time.Hour)
	token, _, err := tokens.Issue("sess-1")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/wizard/sessions/:id", WizardToken(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})

	cases := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"missing", "/wizard/sessions/sess-1", "", http.StatusUnauthorized},
		{"garbage", "/wizard/sessions/sess-1", "nope", http.StatusUnauthorized},
		{"other session", "/wizard/sessions/sess-2", token, http.StatusForbidden},
		{"ok", "/wizard/sessions/sess-1", token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set(WizardTokenHeader, tc.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAdminToken(t *testing.T) {
	router := gin.New()
	router.GET("/admin", AdminToken(), func(c *gin.Context) {
		p, ok := Admin(c)
		require.True(t, ok)
		c.String(http.StatusOK, p.Token+"|"+p.Actor)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abc|token:")
	assert.NotContains(t, w.Body.String(), "token:abc")
}

type auditSink struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (a *auditSink) Create(_ context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, *log)
	return nil
}

func (a *auditSink) List(context.Context, models.AuditLogFilter) ([]models.AuditLog, int, error) {
	return nil, 0, nil
}

func (a *auditSink) snapshot() []models.AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.AuditLog(nil), a.logs...)
}

func TestAuditRecordsSuccessfulMutations(t *testing.T) {
	sink := &auditSink{}
	auditSvc := service.NewAuditService(sink, service.AuditConfig{Workers: 1}, nil)
	auditSvc.Start(context.Background())
	defer auditSvc.Stop()

	router := gin.New()
	router.DELETE("/admin/:resource/:id", AdminToken(), Audit(auditSvc, models.AuditActionDelete, ""), func(c *gin.Context) {
		if c.Param("id") == "bad" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	})

	for _, id := range []string{"bad", "4"} {
		req := httptest.NewRequest(http.MethodDelete, "/admin/questions/"+id, nil)
		req.Header.Set("Authorization", "Token abc")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	entry := sink.snapshot()[0]
	assert.Equal(t, "questions", entry.Resource)
	assert.Equal(t, "4", *entry.ResourceID)
	assert.Equal(t, http.StatusNoContent, entry.StatusCode)
	require.NotNil(t, entry.Actor)
}

func TestResponseMetaCollectsValues(t *testing.T) {
	var meta map[string]interface{}
	router := gin.New()
	router.GET("/meta", WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		SetMeta(c, "resource", "teachers")
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, "teachers", meta["resource"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestExtractMetaWithoutValues(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))

	SetMeta(c, "resource", "subjects")
	assert.Equal(t, map[string]interface{}{"resource": "subjects"}, ExtractMeta(c))
}

func TestMetricsSkipsScrapeEndpoint(t *testing.T) {
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/metrics", "/health", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}
