package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/PrincipieCyupe/tyi/api/swagger"
	"github.com/PrincipieCyupe/tyi/internal/middleware"
	"github.com/PrincipieCyupe/tyi/internal/service"
	"github.com/PrincipieCyupe/tyi/pkg/config"
	"github.com/PrincipieCyupe/tyi/pkg/logger"
	corsmiddleware "github.com/PrincipieCyupe/tyi/pkg/middleware/cors"
	"github.com/PrincipieCyupe/tyi/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/PrincipieCyupe/tyi/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, h handlerSet, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.Audit())

	r.GET("/health", h.metrics.Health)
	if metrics != nil {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	throttle := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window).Middleware()
	api.POST("/auth/register", throttle, h.auth.Register)
	api.POST("/auth/login", throttle, h.auth.Login)
	api.POST("/auth/forgot-password", throttle, h.auth.ForgotPassword)
	api.GET("/auth/reset-password/:token", h.auth.ValidateReset)
	api.POST("/auth/reset-password/:token", throttle, h.auth.ResetPassword)
	api.POST("/admin/login", throttle, h.auth.AdminLogin)
	api.POST("/contact", throttle, h.contact.Submit)
	api.GET("/content", h.content.Feed)
	api.GET("/courses", h.courses.List)
	api.GET("/courses/:id", h.courses.Get)
	api.GET("/opportunities/:id", h.applications.Get)

	member := api.Group("")
	member.Use(middleware.JWT(h.tokens), middleware.RequireMember())
	member.GET("/auth/me", h.auth.Me)
	member.GET("/dashboard", h.dashboard.Home)
	member.GET("/me/profile", h.dashboard.Profile)
	member.GET("/me/education", h.courses.Education)
	member.GET("/me/applications", h.applications.Mine)
	member.POST("/courses/:id/enroll", h.courses.Enroll)
	member.GET("/courses/:id/progress", h.courses.Detail)
	member.GET("/modules/:id", h.courses.AdvanceModule)
	member.GET("/opportunities", h.applications.Board)
	member.POST("/opportunities/:id/apply", h.applications.Apply)
	member.GET("/leaderboard", h.leaderboard.View)
	member.GET("/messages", h.messages.Inbox)
	member.GET("/messages/unread-count", h.messages.Unread)
	member.POST("/messages/read-all", h.messages.MarkAllRead)
	member.POST("/messages/:id/read", h.messages.MarkRead)
	member.DELETE("/messages/:id", h.messages.Delete)

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(h.tokens), middleware.RequireAdmin())
	admin.GET("/dashboard", h.dashboard.Admin)
	admin.GET("/metrics", h.metrics.Snapshot)
	admin.POST("/courses", h.courses.Create)
	admin.DELETE("/courses/:id", h.courses.Delete)
	admin.POST("/courses/:id/modules", h.courses.AddModule)
	admin.DELETE("/modules/:id", h.courses.DeleteModule)
	admin.PUT("/progress/:id", h.courses.SetModuleStatus)
	admin.GET("/users/:id/progress", h.courses.UserProgress)
	admin.GET("/opportunities", h.applications.ListOpportunities)
	admin.POST("/opportunities", h.applications.CreateOpportunity)
	admin.PUT("/opportunities/:id/cover", h.applications.SetCoverImage)
	admin.DELETE("/opportunities/:id", h.applications.DeleteOpportunity)
	admin.GET("/applications", h.applications.ListApplications)
	admin.PUT("/applications/:id", h.applications.UpdateStatus)
	admin.POST("/messages", h.messages.Send)
	admin.POST("/leaderboard/import", h.leaderboard.Import)
	admin.DELETE("/leaderboard", h.leaderboard.Clear)
	admin.GET("/leaderboard/export", h.leaderboard.Export)
	admin.GET("/content", h.content.All)
	admin.POST("/content/events", h.content.CreateEvent)
	admin.POST("/content/posts", h.content.CreatePost)
	admin.POST("/content/activities", h.content.CreateActivity)
	admin.DELETE("/content/:kind/:id", h.content.Delete)

	return r
}
