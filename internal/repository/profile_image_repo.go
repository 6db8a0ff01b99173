package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custify/backend/internal/model"
)

// ProfileImageRepository 用户头像数据访问接口
type ProfileImageRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.UserImage, error)
	// Upsert 以 user_id 为键整体替换，保留原行的 id 与创建信息
	Upsert(ctx context.Context, image *model.UserImage) error
}

type profileImageRepo struct {
	db *gorm.DB
}

// NewProfileImageRepo 创建 ProfileImageRepository 实例
func NewProfileImageRepo(db *gorm.DB) ProfileImageRepository {
	return &profileImageRepo{db: db}
}

func (r *profileImageRepo) GetByUserID(ctx context.Context, userID int64) (*model.UserImage, error) {
	var image model.UserImage
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *profileImageRepo) Upsert(ctx context.Context, image *model.UserImage) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"url", "alt_text", "file_name", "mime_type", "file_size",
			"modified_date", "modified_by_id",
		}),
	}).Create(image).Error
}
