package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
// 仓储只返回原始 gorm 错误（ErrRecordNotFound / ErrDuplicatedKey 等），由服务层分类
type Repository struct {
	User         UserRepository
	ProfileImage ProfileImageRepository
	Notification NotificationRepository
	ErrorLog     ErrorLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		ProfileImage: NewProfileImageRepo(db),
		Notification: NewNotificationRepo(db),
		ErrorLog:     NewErrorLogRepo(db),
	}
}
