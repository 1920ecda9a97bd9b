package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/ringbuz/ringbuz-api/internal/handler"
	"github.com/ringbuz/ringbuz-api/internal/middleware"
	"github.com/ringbuz/ringbuz-api/internal/models"
	"github.com/ringbuz/ringbuz-api/internal/repository"
	"github.com/ringbuz/ringbuz-api/internal/service"
	"github.com/ringbuz/ringbuz-api/pkg/config"
	"github.com/ringbuz/ringbuz-api/pkg/logger"
	corsmiddleware "github.com/ringbuz/ringbuz-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ringbuz/ringbuz-api/pkg/middleware/requestid"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Content  *handler.ContentHandler
	Likes    *handler.LikeHandler
	Category *handler.CategoryHandler
	Profile  *handler.ProfileHandler
	Pages    *handler.PageHandler
	SEO      *handler.SEOHandler
	Settings *handler.SettingsHandler
	Exports  *handler.ExportHandler
	Stats    *handler.StatsHandler
	Metrics  *handler.MetricsHandler
}

// Deps carries the cross-cutting services the middleware chain needs.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	AuthService *service.AuthService
	Metrics     *service.MetricsService
	Profiles    *repository.ProfileRepository
}

// New assembles the gin engine with the full middleware chain and route tree.
func New(h Handlers, deps Deps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	// Crawler artifacts live at the site root, not under the API prefix.
	r.GET("/sitemap.xml", h.SEO.Sitemap)
	r.GET("/robots.txt", h.SEO.Robots)
	r.GET("/ads.txt", h.SEO.AdsTxt)

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", middleware.JWT(deps.AuthService), h.Auth.Logout)
		auth.POST("/change-password", middleware.JWT(deps.AuthService), h.Auth.ChangePassword)
		auth.GET("/me", middleware.JWT(deps.AuthService), h.Auth.Me)
	}

	// Catalog routes use optional auth: anonymous visitors browse approved
	// content, authenticated owners and admins also see pending items.
	content := api.Group("/content", middleware.OptionalJWT(deps.AuthService))
	{
		content.GET("", h.Content.List)
		content.GET("/:slug", h.Content.Get)
		content.GET("/:slug/download", h.Content.Download)
	}

	authed := api.Group("/content", middleware.JWT(deps.AuthService))
	{
		authed.POST("", h.Content.Upload)
		authed.PATCH("/:slug", h.Content.Update)
		authed.DELETE("/:slug", h.Content.Delete)
		authed.POST("/:slug/like", h.Likes.Like)
		authed.DELETE("/:slug/like", h.Likes.Unlike)
	}

	api.GET("/seo/defaults", h.Settings.SEODefaults)

	categories := api.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.GET("/:type/:slug", h.Category.Get)
	}

	pages := api.Group("/pages", middleware.OptionalJWT(deps.AuthService))
	{
		pages.GET("", h.Pages.List)
		pages.GET("/:slug", h.Pages.Get)
	}

	profiles := api.Group("/profiles", middleware.JWT(deps.AuthService))
	{
		profiles.GET("/me", h.Profile.Me)
		profiles.PATCH("/me", h.Profile.UpdateMe)
	}

	admin := api.Group("/admin", middleware.JWT(deps.AuthService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/categories", h.Category.Create)
		admin.PATCH("/categories/:id", h.Category.Update)
		admin.DELETE("/categories/:id", h.Category.Delete)

		admin.GET("/profiles", h.Profile.List)
		admin.GET("/profiles/:id", h.Profile.Get)
		admin.PATCH("/profiles/:id", h.Profile.AdminUpdate)

		admin.GET("/pages", h.Pages.List)
		admin.POST("/pages", h.Pages.Create)
		admin.PATCH("/pages/:slug", h.Pages.Update)
		admin.DELETE("/pages/:slug", h.Pages.Delete)

		admin.GET("/settings", h.Settings.List)
		admin.GET("/settings/:key", h.Settings.Get)
		admin.PUT("/settings/:key", middleware.Audit(deps.Profiles, "settings.update", "site_settings"), h.Settings.Update)

		admin.POST("/exports", h.Exports.Request)
		admin.GET("/exports", h.Exports.List)
		admin.GET("/exports/:id", h.Exports.Get)

		admin.GET("/stats", h.Stats.Dashboard)
	}

	// Export downloads authenticate through the signed token itself so the
	// link works outside an API client.
	api.GET("/admin/exports/download/:token", h.Exports.Download)

	return r
}
