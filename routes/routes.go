package routes

import (
	"time"

	"github.com/Chasekung/Finance-Club/domain/auth"
	"github.com/Chasekung/Finance-Club/domain/content"
	"github.com/Chasekung/Finance-Club/domain/health"
	"github.com/Chasekung/Finance-Club/domain/user"
	"github.com/Chasekung/Finance-Club/middleware"
	"github.com/Chasekung/Finance-Club/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

// Deps carries the explicitly constructed dependencies the routes need.
type Deps struct {
	DB       *sqlx.DB
	Log      logger.Logger
	PagesDir string
}

// RegisterRoutes wires every handler. Content reads and generated pages
// are public; mutations and the user listing require an admin session.
func RegisterRoutes(e *echo.Echo, d Deps) {
	authHandler := auth.NewHandler(d.DB)
	userHandler := user.NewHandler(d.DB)
	healthHandler := health.NewHandler(d.DB)

	corporate := content.NewHandler(content.NewService(d.DB, content.CorporateFinance, d.PagesDir, d.Log))
	personal := content.NewHandler(content.NewService(d.DB, content.PersonalFinance, d.PagesDir, d.Log))

	loginLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		MaxRequests:   20,
		Window:        time.Minute,
		BlockDuration: 15 * time.Minute,
		DB:            d.DB,
	})

	api := e.Group("/api")

	// Auth routes
	api.POST("/login", authHandler.LoginHandler, loginLimiter)
	api.POST("/register", authHandler.RegisterHandler, loginLimiter)
	api.POST("/logout", authHandler.LogoutHandler)
	api.GET("/auth/check", authHandler.CheckHandler)

	// Admin routes
	api.GET("/admin/users", userHandler.ListUsersHandler,
		middleware.SessionMiddleware, middleware.AdminMiddleware)

	registerVertical(api.Group("/corporate-finance"), corporate)
	registerVertical(api.Group("/personal-finance"), personal)

	// Generated pages, addressed by slug
	e.GET("/corporate-finance/:slug", corporate.RenderPageHandler)
	e.GET("/personal-finance/:slug", personal.RenderPageHandler)

	// Health probes
	e.GET("/health", healthHandler.HealthHandler)
	e.GET("/health/live", healthHandler.LivenessHandler)
	e.GET("/health/ready", healthHandler.ReadinessHandler)
	e.GET("/health/stats", healthHandler.StatsHandler)
}

func registerVertical(g *echo.Group, h *content.Handler) {
	g.GET("", h.ListHandler)
	g.GET("/:id", h.GetHandler)
	g.POST("/create", h.CreateHandler,
		middleware.SessionMiddleware, middleware.AdminMiddleware)
	g.PUT("/:id", h.UpdateHandler,
		middleware.SessionMiddleware, middleware.AdminMiddleware)
	g.DELETE("/:id", h.DeleteHandler,
		middleware.SessionMiddleware, middleware.AdminMiddleware)
	g.POST("/update-templates", h.UpdateTemplatesHandler,
		middleware.SessionMiddleware, middleware.AdminMiddleware)
}
