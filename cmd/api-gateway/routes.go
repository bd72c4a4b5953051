package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/teacherhub-gateway/api/swagger"
	"github.com/noah-isme/teacherhub-gateway/internal/handler"
	"github.com/noah-isme/teacherhub-gateway/internal/middleware"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	"github.com/noah-isme/teacherhub-gateway/pkg/config"
	"github.com/noah-isme/teacherhub-gateway/pkg/logger"
	corsmiddleware "github.com/noah-isme/teacherhub-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teacherhub-gateway/pkg/middleware/requestid"
)

type routeDeps struct {
	tokens   *service.SessionTokenService
	metrics  *service.MetricsService
	audit    *service.AuditService
	wizard   *handler.WizardHandler
	location *handler.LocationHandler
	admin    *handler.AdminHandler
	backups  *handler.BackupHandler
	exports  *handler.ExportHandler
	audits   *handler.AuditHandler
	health   *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", d.health.Health)
	r.GET("/ready", d.health.Ready)
	r.GET("/metrics", d.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	wizard := api.Group("/wizard/sessions")
	wizard.POST("", d.wizard.Start)
	session := wizard.Group("/:id", middleware.WizardToken(d.tokens))
	session.GET("", d.wizard.Get)
	session.DELETE("", d.wizard.Close)
	session.PUT("/teacher-type", d.wizard.SetTeacherType)
	session.PUT("/subjects", d.wizard.SetSubjects)
	session.PUT("/location", d.wizard.SetLocation)
	session.PUT("/area", d.wizard.SetArea)
	session.PUT("/contact", d.wizard.SetContact)
	session.POST("/next", d.wizard.Next)
	session.POST("/back", d.wizard.Back)
	session.POST("/search/retry", d.wizard.RetrySearch)
	session.PUT("/filter", d.wizard.UpdateFilter)
	session.POST("/filter/reset", d.wizard.ResetFilter)
	session.POST("/submit", d.wizard.Submit)

	api.GET("/locations/pincodes/:code", d.location.Pincode)
	api.GET("/locations/postoffices/:name", d.location.PostOffices)
	api.GET("/catalog/class-categories", d.location.ClassCategories)

	admin := api.Group("/admin", middleware.AdminToken())
	admin.GET("/metrics/summary", d.health.Summary)
	admin.GET("/audit-logs", d.audits.List)
	admin.GET("/teachers/search", d.admin.SearchTeachers)
	admin.GET("/exports/:resource", d.exports.Export)
	admin.GET("/backups", d.backups.List)
	admin.POST("/backups", middleware.Audit(d.audit, models.AuditActionBackup, "backups"), d.backups.Create)
	admin.POST("/backups/restore", middleware.Audit(d.audit, models.AuditActionRestore, "backups"), d.backups.Restore)
	admin.POST("/passkeys/:id/approve", middleware.Audit(d.audit, models.AuditActionApprove, string(models.ResourcePasskeys)), d.admin.ApprovePasskey)
	admin.POST("/passkeys/:id/reject", middleware.Audit(d.audit, models.AuditActionReject, string(models.ResourcePasskeys)), d.admin.RejectPasskey)
	admin.GET("/:resource", d.admin.List)
	admin.POST("/:resource", middleware.Audit(d.audit, models.AuditActionCreate, ""), d.admin.Create)
	admin.GET("/:resource/:id", d.admin.Get)
	admin.PATCH("/:resource/:id", middleware.Audit(d.audit, models.AuditActionUpdate, ""), d.admin.Update)
	admin.DELETE("/:resource/:id", middleware.Audit(d.audit, models.AuditActionDelete, ""), d.admin.Delete)

	return r
}
