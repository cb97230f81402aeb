package router

import (
	"time"

	"navtools/internal/assets"
	"navtools/internal/audit"
	"navtools/internal/config"
	"navtools/internal/handler"
	"navtools/internal/middleware"
	"navtools/internal/token"
	"navtools/pkg/extract"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything the HTTP layer needs, constructed once in main.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Tokens    *token.Service
	Audit     *audit.Recorder
	Assets    *assets.Index
	Extractor *extract.Extractor
}

// Setup builds the gin engine and mounts every route group.
func Setup(d Deps) *gin.Engine {
	if d.Config.Server.Mode != "" {
		gin.SetMode(d.Config.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// uploaded branding assets
	r.Static("/static", d.Assets.Dir())

	authHandler := handler.NewAuthHandler(d.DB, d.Tokens, d.Audit)
	adminHandler := handler.NewAdminHandler(d.DB, d.Audit)
	toolHandler := handler.NewToolHandler(d.DB, d.Audit)
	categoryHandler := handler.NewCategoryHandler(d.DB, d.Audit)
	iconHandler := handler.NewIconHandler(d.DB, d.Audit)
	siteConfigHandler := handler.NewSiteConfigHandler(d.DB, d.Audit, d.Assets)
	auditLogHandler := handler.NewAuditLogHandler(d.DB)
	publicHandler := handler.NewPublicHandler(d.DB)
	devtoolsHandler := handler.NewDevtoolsHandler(d.Extractor)

	requireAdmin := middleware.RequireAdmin(d.DB, d.Tokens)
	requireSuperuser := middleware.RequireSuperuser()

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/me", requireAdmin, authHandler.Me)
		auth.POST("/logout", requireAdmin, authHandler.Logout)
		auth.POST("/change-password", requireAdmin, authHandler.ChangePassword)
	}

	admin := r.Group("/admin", requireAdmin)
	{
		tools := admin.Group("/tools")
		{
			tools.GET("", toolHandler.List)
			tools.POST("", toolHandler.Create)
			tools.GET("/:id", toolHandler.Get)
			tools.PUT("/:id", toolHandler.Update)
			tools.DELETE("/:id", toolHandler.Delete)
			tools.POST("/:id/toggle-featured", toolHandler.ToggleFeatured)
			tools.POST("/reorder-featured", toolHandler.ReorderFeatured)
			tools.POST("/batch-delete", toolHandler.BatchDelete)
			tools.POST("/batch-toggle", toolHandler.BatchToggle)
		}

		categories := admin.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.GET("/:id", categoryHandler.Get)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		icons := admin.Group("/icons")
		{
			icons.GET("", iconHandler.List)
			icons.GET("/categories", iconHandler.Categories)
			icons.POST("", iconHandler.Create)
			icons.PUT("/:id", iconHandler.Update)
			icons.DELETE("/:id", iconHandler.Delete)
		}

		siteConfig := admin.Group("/site-config")
		{
			siteConfig.GET("", siteConfigHandler.Get)
			siteConfig.PUT("", siteConfigHandler.Update)
			siteConfig.POST("/branding", siteConfigHandler.UploadBranding)
			siteConfig.GET("/assets", siteConfigHandler.ListAssets)
		}

		// superuser-only surfaces: account management and the audit trail
		users := admin.Group("/users", requireSuperuser)
		{
			users.GET("", adminHandler.List)
			users.POST("", adminHandler.Create)
			users.GET("/:id", adminHandler.Get)
			users.PUT("/:id", adminHandler.Update)
			users.DELETE("/:id", adminHandler.Delete)
			users.POST("/:id/reset-password", adminHandler.ResetPassword)
		}

		auditLogs := admin.Group("/audit-logs", requireSuperuser)
		{
			auditLogs.GET("", auditLogHandler.List)
			auditLogs.GET("/actions", auditLogHandler.Actions)
			auditLogs.GET("/target-types", auditLogHandler.TargetTypes)
		}
	}

	api := r.Group("/api")
	{
		api.GET("/site-config", publicHandler.SiteConfig)
		api.GET("/categories", publicHandler.Categories)
		api.GET("/tools", publicHandler.Tools)
		api.GET("/tools/:slug", publicHandler.ToolDetail)
		api.POST("/tools/:id/view", publicHandler.RecordView)
		api.GET("/home", publicHandler.Home)
	}

	devtools := r.Group("/devtools")
	{
		devtools.POST("/wechat-extract", devtoolsHandler.WeChatExtract)
		devtools.POST("/json-format", devtoolsHandler.JSONFormat)
	}

	return r
}
