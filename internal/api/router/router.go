package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"custify/backend/config"
	"custify/backend/internal/api/handler"
	"custify/backend/internal/api/middleware"
	"custify/backend/internal/entity"
	"custify/backend/internal/service"
	"custify/backend/pkg/jwt"
	"custify/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与限流降级关闭
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	errorLogs service.ErrorLogService,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))
	r.Use(middleware.ErrorCapture(errorLogs, logger))

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	admin := middleware.RoleAuth(entity.RoleAdmin)
	staff := middleware.RoleAuth(entity.RoleAdmin, entity.RoleHumanResources)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，按 IP 限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, cfg.RateLimit.AuthRequests, cfg.RateLimit.Window, logger))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.PUT("/me/password", h.User.ChangePassword)
				users.GET("", staff, h.User.ListUsers)
				users.GET("/:id", staff, h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser) // admin 或本人（Service 层鉴权）
				users.PUT("/:id/role", admin, h.User.ChangeRole)
				users.PUT("/:id/status", admin, h.User.ChangeStatus)
				users.GET("/:id/profile-image", h.User.GetProfileImage)
				users.PUT("/:id/profile-image", h.User.UpsertProfileImage)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.Inbox)
				notifications.POST("", h.Notification.CreateNotification)
				notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
				notifications.GET("/:id", h.Notification.GetNotification)
				notifications.PUT("/:id/read", h.Notification.MarkAsRead)
			}

			// 错误日志模块
			logs := authorized.Group("/error-logs", admin)
			{
				logs.GET("", h.ErrorLog.ListErrorLogs)
				logs.GET("/export", h.Export.ExportErrorLogs)
				logs.DELETE("/resolved", h.ErrorLog.PurgeResolved)
				logs.GET("/:id", h.ErrorLog.GetErrorLog)
				logs.PUT("/:id", h.ErrorLog.UpdateErrorLog)
			}
		}
	}

	return r
}
