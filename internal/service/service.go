package service

import (
	"go.uber.org/zap"

	"custify/backend/config"
	"custify/backend/internal/repository"
	"custify/backend/pkg/jwt"
	"custify/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	ProfileImage ProfileImageService
	Notification NotificationService
	ErrorLog     ErrorLogService
	Export       ExportService
}

// NewService 创建 Service 聚合，rdb 可为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	images := NewProfileImageService(repo, logger)
	errorLogs := NewErrorLogService(cfg, repo, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(cfg, repo, images, logger),
		ProfileImage: images,
		Notification: NewNotificationService(repo, logger),
		ErrorLog:     errorLogs,
		Export:       NewExportService(errorLogs, logger),
	}
}
