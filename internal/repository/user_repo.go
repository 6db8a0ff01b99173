package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custify/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUserName(ctx context.Context, userName string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ExistsByUserName / ExistsByEmail 唯一性预检；excludeID 为 0 时不排除任何行
	ExistsByUserName(ctx context.Context, userName string, excludeID int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

// Create 仅写 users 表，头像由 ProfileImageRepository 维护
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	return r.first(ctx, "user_name = ?", userName)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) first(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("ProfileImage").
		Where(query, arg).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ExistsByUserName(ctx context.Context, userName string, excludeID int64) (bool, error) {
	return r.exists(ctx, "user_name = ?", userName, excludeID)
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *userRepo) exists(ctx context.Context, query string, arg interface{}, excludeID int64) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.User{}).Where(query, arg)
	if excludeID != 0 {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("ProfileImage").
		Offset(offset).Limit(limit).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
