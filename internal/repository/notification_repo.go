package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custify/backend/internal/model"
)

// NotificationRepository 通知数据访问接口
// 读取时预加载 Sender / Recipient（及其头像），供实体重建
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id int64) (*model.Notification, error)
	// ListUnreadByRecipient 未读（read_date 为空）通知，按发送时间倒序
	ListUnreadByRecipient(ctx context.Context, recipientID int64) ([]model.Notification, error)
	Update(ctx context.Context, n *model.Notification) error
	// UpdateBatch 在一个事务内保存多条通知
	UpdateBatch(ctx context.Context, ns []*model.Notification) error
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) withUsers(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Sender.ProfileImage").
		Preload("Recipient.ProfileImage")
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(n).Error
}

func (r *notificationRepo) GetByID(ctx context.Context, id int64) (*model.Notification, error) {
	var n model.Notification
	if err := r.withUsers(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListUnreadByRecipient(ctx context.Context, recipientID int64) ([]model.Notification, error) {
	var list []model.Notification
	err := r.withUsers(ctx).
		Where("recipient_id = ? AND read_date IS NULL", recipientID).
		Order("sent_date DESC NULLS LAST").
		Order("id DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepo) Update(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(n).Error
}

func (r *notificationRepo) UpdateBatch(ctx context.Context, ns []*model.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, n := range ns {
			if err := tx.Omit(clause.Associations).Save(n).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
