package handler

import (
	"gorm.io/gorm"

	"custify/backend/config"
	"custify/backend/internal/service"
	"custify/backend/pkg/redis"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Notification *NotificationHandler
	ErrorLog     *ErrorLogHandler
	Export       *ExportHandler
	Health       *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, db *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User, svc.ProfileImage),
		Notification: NewNotificationHandler(svc.Notification),
		ErrorLog:     NewErrorLogHandler(svc.ErrorLog, cfg.ErrorLog.RetentionDays),
		Export:       NewExportHandler(svc.Export),
		Health:       NewHealthHandler(db, rdb),
	}
}
