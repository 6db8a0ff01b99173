package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"custify/backend/internal/model"
)

// ErrorLogRepository 错误日志数据访问接口
type ErrorLogRepository interface {
	Create(ctx context.Context, log *model.ErrorLog) error
	GetByID(ctx context.Context, id int64) (*model.ErrorLog, error)
	ListByStatus(ctx context.Context, status string) ([]model.ErrorLog, error)
	Update(ctx context.Context, log *model.ErrorLog) error
	// DeleteResolvedBefore 删除 resolved_date 早于 cutoff 的已解决记录，返回删除行数
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type errorLogRepo struct {
	db *gorm.DB
}

// NewErrorLogRepo 创建 ErrorLogRepository 实例
func NewErrorLogRepo(db *gorm.DB) ErrorLogRepository {
	return &errorLogRepo{db: db}
}

func (r *errorLogRepo) Create(ctx context.Context, log *model.ErrorLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *errorLogRepo) GetByID(ctx context.Context, id int64) (*model.ErrorLog, error) {
	var log model.ErrorLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *errorLogRepo) ListByStatus(ctx context.Context, status string) ([]model.ErrorLog, error) {
	var logs []model.ErrorLog
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_date DESC").
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *errorLogRepo) Update(ctx context.Context, log *model.ErrorLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

func (r *errorLogRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND resolved_date < ?", "Resolved", cutoff).
		Delete(&model.ErrorLog{})
	return result.RowsAffected, result.Error
}
