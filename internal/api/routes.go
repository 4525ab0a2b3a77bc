// Package api contains the API routes for the Portfolio API
package api

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/aldianriski/portfolioapi/internal/api/handlers"
	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/pkg/utils/logger"
	"gorm.io/gorm"
)

// Rate limiter namespaces
const (
	AdminLimiterNamespace   = "admin"
	LoginLimiterNamespace   = "login"
	ContactLimiterNamespace = "contact"
)

// Dependencies are the long-lived services the routes are built from
type Dependencies struct {
	Config         *config.Config
	DB             *gorm.DB
	Sessions       *service.SessionStore
	Csrf           *service.CsrfGuard
	Auth           *service.AuthService
	AdminLimiter   *service.RateLimiter
	LoginLimiter   *service.RateLimiter
	ContactLimiter *service.RateLimiter
	Contact        *service.ContactService
	Uploads        *service.UploadService
	Resume         *service.ResumeService
	Audit          *logger.Logger
}

// NewDependencies wires the services. newStore is called once per limiter;
// objects may be nil when no object storage is configured.
func NewDependencies(cfg *config.Config, db *gorm.DB, newStore func() service.RateLimitStore, objects service.ObjectStore, notifier service.Notifier, audit *logger.Logger) (*Dependencies, error) {
	sessions := service.NewSessionStore(cfg)
	csrf := service.NewCsrfGuard(cfg)
	auth, err := service.NewAuthService(cfg, sessions, csrf)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	adminLimiter := service.NewRateLimiter(newStore(), AdminLimiterNamespace, service.RateLimitConfig{
		MaxRequests: cfg.AdminRateLimit,
		Window:      cfg.AdminRateWindow,
	})
	loginLimiter := service.NewRateLimiter(newStore(), LoginLimiterNamespace, service.RateLimitConfig{
		MaxRequests: cfg.LoginRateLimit,
		Window:      cfg.LoginRateWindow,
	})
	contactLimiter := service.NewRateLimiter(newStore(), ContactLimiterNamespace, service.RateLimitConfig{
		MaxRequests: cfg.ContactRateLimit,
		Window:      cfg.ContactRateWindow,
	})

	return &Dependencies{
		Config:         cfg,
		DB:             db,
		Sessions:       sessions,
		Csrf:           csrf,
		Auth:           auth,
		AdminLimiter:   adminLimiter,
		LoginLimiter:   loginLimiter,
		ContactLimiter: contactLimiter,
		Contact:        service.NewContactService(repository.NewMessageRepository(db), contactLimiter, notifier),
		Uploads:        service.NewUploadService(objects),
		Resume:         service.NewResumeService(db),
		Audit:          audit,
	}, nil
}

// SetupRoutes configures the routes for the API
func SetupRoutes(e *echo.Echo, deps *Dependencies) {

	// Sitemap
	sitemapHandler := handlers.NewSitemapHandler(deps.Config.SiteURL, deps.DB)
	e.GET("/sitemap.xml", sitemapHandler.Sitemap)

	// Create a group for all API routes
	api := e.Group("/api")

	// Index route
	indexHandler := handlers.NewIndexHandler(deps.Config)
	api.GET("/", indexHandler.Index)

	// Public content routes
	publicHandler := handlers.NewPublicHandler(deps.DB)
	api.GET("/projects", publicHandler.GetProjects)
	api.GET("/projects/:slug", publicHandler.GetProjectBySlug)
	api.GET("/experience", publicHandler.GetExperience)
	api.GET("/education", publicHandler.GetEducation)
	api.GET("/skills", publicHandler.GetSkills)
	api.GET("/testimonials", publicHandler.GetTestimonials)
	api.GET("/certifications", publicHandler.GetCertifications)
	api.GET("/settings/hero", publicHandler.GetHeroSettings)
	api.GET("/settings/contact", publicHandler.GetContactSettings)
	api.GET("/settings/social", publicHandler.GetSocialSettings)

	// Contact form (rate limited by the contact service)
	contactHandler := handlers.NewContactHandler(deps.Contact, deps.ContactLimiter)
	api.POST("/contact", contactHandler.Submit)

	// Admin routes (unprotected)
	csrfHandler := handlers.NewCsrfHandler(deps.Csrf)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Sessions, deps.LoginLimiter, deps.Audit)
	api.GET("/admin/csrf", csrfHandler.GetToken)
	api.POST("/admin/login", authHandler.Login)

	// Admin routes (protected)
	guard := middleware.NewAdminGuard(deps.Sessions, deps.Csrf, deps.AdminLimiter)
	protect := guard.Protect(middleware.AdminRouteOptions{})
	admin := api.Group("/admin", protect)
	admin.POST("/logout", authHandler.Logout)
	admin.GET("/session", authHandler.Session)

	registerContent[models.Project](api, admin, models.ProjectsTableName, deps, protect)
	registerContent[models.Experience](api, admin, models.ExperienceTableName, deps, protect)
	registerContent[models.Education](api, admin, models.EducationTableName, deps, protect)
	registerContent[models.Skill](api, admin, models.SkillsTableName, deps, protect)
	registerContent[models.Testimonial](api, admin, models.TestimonialsTableName, deps, protect)
	registerContent[models.Certification](api, admin, models.CertificationsTableName, deps, protect)
	registerContent[models.Organization](api, admin, models.OrganizationsTableName, deps, protect)

	messageHandler := handlers.NewMessageHandler(repository.NewMessageRepository(deps.DB), deps.Audit)
	messageGroup := admin.Group("/messages")
	messageGroup.GET("", messageHandler.List)
	messageGroup.GET("/export", messageHandler.Export)
	messageGroup.POST("/bulk-delete", messageHandler.BulkDelete)
	messageGroup.PATCH("/:id", messageHandler.MarkRead)
	messageGroup.DELETE("/:id", messageHandler.Delete)

	settingsHandler := handlers.NewSettingsHandler(repository.NewSettingsRepository(deps.DB), deps.Audit)
	admin.GET("/settings", settingsHandler.List)
	admin.PUT("/settings", settingsHandler.Update)

	statsHandler := handlers.NewStatsHandler(deps.DB)
	admin.GET("/stats", statsHandler.Get)

	uploadHandler := handlers.NewUploadHandler(deps.Uploads, deps.Audit)
	admin.POST("/upload", uploadHandler.Upload)
	admin.DELETE("/upload", uploadHandler.Delete)

	resumeHandler := handlers.NewResumeHandler(deps.Resume)
	admin.GET("/resume", resumeHandler.Download)

	auditHandler := handlers.NewAuditHandler(deps.Audit)
	admin.GET("/audit", auditHandler.Recent)
}

// registerContent adds the admin CRUD routes of one entity under
// /api/admin/{entity} and its reorder route at /api/{entity}/reorder
func registerContent[T any, PT handlers.ContentEntity[T]](api, admin *echo.Group, entity string, deps *Dependencies, protect echo.MiddlewareFunc) {
	h := handlers.NewContentHandler[T, PT](entity, repository.NewContentRepository[T](deps.DB), deps.Audit)

	group := admin.Group("/" + entity)
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/export", h.Export)
	group.POST("/bulk-delete", h.BulkDelete)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)

	api.POST("/"+entity+"/reorder", h.Reorder, protect)
}
