package service

import (
	"context"

	"go.uber.org/zap"

	"custify/backend/internal/dto"
	"custify/backend/internal/entity"
	"custify/backend/internal/repository"
	apperrors "custify/backend/pkg/errors"
)

// ProfileImageService 用户头像（每个用户至多一张）
type ProfileImageService interface {
	Get(ctx context.Context, userID int64) (*entity.ProfileImage, error)
	// Upsert 新建或整体替换头像
	Upsert(ctx context.Context, actorID, userID int64, req *dto.ProfileImageRequest) (*entity.ProfileImage, error)
}

type profileImageService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProfileImageService 创建 ProfileImageService 实例
func NewProfileImageService(repo *repository.Repository, logger *zap.Logger) ProfileImageService {
	return &profileImageService{repo: repo, logger: logger}
}

func (s *profileImageService) Get(ctx context.Context, userID int64) (*entity.ProfileImage, error) {
	row, err := s.repo.ProfileImage.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFoundError("ProfileImage for user with id <%d> does not exist.", userID)
		}
		return nil, storageErr(s.logger, "查询头像失败", err, zap.Int64("user_id", userID))
	}
	return entity.ProfileImageFromModel(row)
}

func (s *profileImageService) Upsert(ctx context.Context, actorID, userID int64, req *dto.ProfileImageRequest) (*entity.ProfileImage, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}
	if err := canManageUser(actor, userID); err != nil {
		return nil, err
	}
	if actorID != userID {
		if _, err := loadUser(ctx, s.repo.User, s.logger, userID); err != nil {
			return nil, err
		}
	}

	data := imageData(req)

	var image *entity.ProfileImage
	existing, err := s.Get(ctx, userID)
	switch {
	case err == nil:
		image, err = entity.UpdateProfileImage(actor, existing, entity.ProfileImageChanges{
			URL:      &data.URL,
			AltText:  &data.AltText,
			FileName: &data.FileName,
			MimeType: &data.MimeType,
			FileSize: &data.FileSize,
		})
	case apperrors.IsNotFound(err):
		image, err = entity.CreateProfileImage(actor, data)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.ProfileImage.Upsert(ctx, image.ToModel(userID)); err != nil {
		return nil, storageErr(s.logger, "保存头像失败", err, zap.Int64("user_id", userID))
	}

	s.logger.Info("头像已更新", zap.Int64("user_id", userID), zap.Int64("by", actor.ID()))
	return s.Get(ctx, userID)
}
