package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"custify/backend/internal/entity"
	"custify/backend/internal/model"
	"custify/backend/internal/repository"
	apperrors "custify/backend/pkg/errors"
)

// storageErr 原始错误只写服务端日志，对外统一为 ErrStorage
func storageErr(logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	logger.Error(msg, append(fields, zap.Error(err))...)
	return apperrors.ErrStorage
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// loadUser 按 id 解析用户实体
func loadUser(ctx context.Context, repo repository.UserRepository, logger *zap.Logger, id int64) (*entity.User, error) {
	row, err := repo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFoundError("User with id <%d> does not exist.", id)
		}
		return nil, storageErr(logger, "查询用户失败", err, zap.Int64("user_id", id))
	}
	return rebuildUser(row, logger)
}

// rebuildUser 持久化行重建失败说明存储数据已损坏，保留校验错误并记录
func rebuildUser(row *model.User, logger *zap.Logger) (*entity.User, error) {
	user, err := entity.UserFromModel(row)
	if err != nil {
		logger.Warn("用户记录校验失败", zap.Int64("user_id", row.ID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// hashPassWord 校验明文后按配置的 cost 哈希
func hashPassWord(raw string, cost int) (string, error) {
	if err := entity.ValidatePassWord(raw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewValidationError("User validation: Password must not exceed 72 bytes")
		}
		return "", err
	}
	return string(hash), nil
}

// canManageUser 非管理员只能操作自己
func canManageUser(actor *entity.User, targetID int64) error {
	if actor.IsAdmin() || actor.ID() == targetID {
		return nil
	}
	return apperrors.NewValidationError("You are not allowed to modify user with id <%d>.", targetID)
}
