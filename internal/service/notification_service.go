package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"custify/backend/internal/dto"
	"custify/backend/internal/entity"
	"custify/backend/internal/model"
	"custify/backend/internal/repository"
	apperrors "custify/backend/pkg/errors"
)

// NotificationService 站内通知业务接口
type NotificationService interface {
	// Inbox 当前用户未读通知，按发送时间倒序
	Inbox(ctx context.Context, actorID int64) ([]*entity.Notification, error)
	GetByID(ctx context.Context, actorID, id int64) (*entity.Notification, error)
	Create(ctx context.Context, actorID int64, req *dto.CreateNotificationRequest) (*entity.Notification, error)
	MarkAsRead(ctx context.Context, actorID, id int64) (*entity.Notification, error)
	MarkAllAsRead(ctx context.Context, actorID int64) (int, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

// ────────────────────── 查询 ──────────────────────

func (s *notificationService) Inbox(ctx context.Context, actorID int64) ([]*entity.Notification, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}
	return s.unread(ctx, actor)
}

func (s *notificationService) GetByID(ctx context.Context, actorID, id int64) (*entity.Notification, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}

	n, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.IsRecipient(actor) {
		return nil, apperrors.NewValidationError("You are not the recipient of this notification.")
	}
	return n, nil
}

// ────────────────────── 发送 ──────────────────────

func (s *notificationService) Create(ctx context.Context, actorID int64, req *dto.CreateNotificationRequest) (*entity.Notification, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}
	var sender *entity.User
	if req.SenderID != nil {
		if sender, err = loadUser(ctx, s.repo.User, s.logger, *req.SenderID); err != nil {
			return nil, err
		}
	}
	recipient, err := loadUser(ctx, s.repo.User, s.logger, req.RecipientID)
	if err != nil {
		return nil, err
	}

	data := entity.NotificationData{
		Title:     req.Title,
		Body:      req.Body,
		Status:    entity.NotificationSent,
		Category:  entity.NotificationCategory(req.Category),
		Priority:  entity.NotificationPriority(req.Priority),
		Sender:    sender,
		Recipient: recipient,
	}
	if req.Status != nil {
		data.Status = entity.NotificationStatus(*req.Status)
	}
	if data.Status != entity.NotificationPending {
		now := time.Now().UTC()
		data.SentDate = &now
	}

	// 审计字段记录实际操作人，发件人可为空
	n, err := entity.CreateNotification(actor, data)
	if err != nil {
		return nil, err
	}

	row := n.ToModel()
	if err := s.repo.Notification.Create(ctx, row); err != nil {
		return nil, storageErr(s.logger, "创建通知失败", err)
	}

	s.logger.Info("通知已发送",
		zap.Int64("notification_id", row.ID),
		zap.Int64("created_by", actor.ID()),
		zap.Int64("recipient_id", recipient.ID()),
	)
	return s.load(ctx, row.ID)
}

// ────────────────────── 已读 ──────────────────────

func (s *notificationService) MarkAsRead(ctx context.Context, actorID, id int64) (*entity.Notification, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}
	n, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	read, err := n.MarkRead(actor, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Notification.Update(ctx, read.ToModel()); err != nil {
		return nil, storageErr(s.logger, "更新通知失败", err, zap.Int64("notification_id", id))
	}
	return read, nil
}

// MarkAllAsRead 返回本次标记的条数；没有未读时返回 NotFoundError
func (s *notificationService) MarkAllAsRead(ctx context.Context, actorID int64) (int, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return 0, err
	}
	unread, err := s.unread(ctx, actor)
	if err != nil {
		return 0, err
	}
	if len(unread) == 0 {
		return 0, apperrors.NewNotFoundError("You have no unread messages.")
	}

	now := time.Now().UTC()
	rows := make([]*model.Notification, 0, len(unread))
	for _, n := range unread {
		read, err := n.MarkRead(actor, now)
		if err != nil {
			return 0, err
		}
		rows = append(rows, read.ToModel())
	}

	// 同一事务内提交，全部成功或全部失败
	if err := s.repo.Notification.UpdateBatch(ctx, rows); err != nil {
		return 0, storageErr(s.logger, "批量标记已读失败", err, zap.Int64("user_id", actor.ID()))
	}
	return len(rows), nil
}

// ── 内部方法 ──

func (s *notificationService) load(ctx context.Context, id int64) (*entity.Notification, error) {
	row, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFoundError("Notification with id <%d> does not exist.", id)
		}
		return nil, storageErr(s.logger, "查询通知失败", err, zap.Int64("notification_id", id))
	}
	return s.rebuild(row)
}

func (s *notificationService) unread(ctx context.Context, actor *entity.User) ([]*entity.Notification, error) {
	rows, err := s.repo.Notification.ListUnreadByRecipient(ctx, actor.ID())
	if err != nil {
		return nil, storageErr(s.logger, "查询未读通知失败", err, zap.Int64("user_id", actor.ID()))
	}
	list := make([]*entity.Notification, 0, len(rows))
	for i := range rows {
		n, err := s.rebuild(&rows[i])
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, nil
}

func (s *notificationService) rebuild(row *model.Notification) (*entity.Notification, error) {
	n, err := entity.NotificationFromModel(row)
	if err != nil {
		s.logger.Warn("通知记录校验失败", zap.Int64("notification_id", row.ID), zap.Error(err))
		return nil, err
	}
	return n, nil
}
