package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"custify/backend/config"
	"custify/backend/internal/dto"
	"custify/backend/internal/entity"
	"custify/backend/internal/model"
	"custify/backend/internal/repository"
	apperrors "custify/backend/pkg/errors"
)

// UserService 用户业务接口
// actorID 来自已验证 Token 的 userId
type UserService interface {
	Current(ctx context.Context, actorID int64) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]*entity.User, int64, error)
	Update(ctx context.Context, actorID, id int64, req *dto.UpdateUserRequest) (*entity.User, error)
	ChangePassword(ctx context.Context, actorID int64, req *dto.ChangePasswordRequest) (*entity.User, error)
	ChangeRole(ctx context.Context, actorID, id int64, role string) (*entity.User, error)
	ChangeStatus(ctx context.Context, actorID, id int64, status string) (*entity.User, error)
	// EnsureAdmin 按 seed 配置创建初始管理员；已存在同名用户时原样返回，created 为 false
	EnsureAdmin(ctx context.Context) (user *entity.User, created bool, err error)
}

type userService struct {
	cfg    *config.Config
	repo   *repository.Repository
	images ProfileImageService
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(cfg *config.Config, repo *repository.Repository, images ProfileImageService, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, images: images, logger: logger}
}

// ────────────────────── 查询 ──────────────────────

func (s *userService) Current(ctx context.Context, actorID int64) (*entity.User, error) {
	return loadUser(ctx, s.repo.User, s.logger, actorID)
}

func (s *userService) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return loadUser(ctx, s.repo.User, s.logger, id)
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]*entity.User, int64, error) {
	rows, total, err := s.repo.User.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, storageErr(s.logger, "列出用户失败", err)
	}

	users := make([]*entity.User, 0, len(rows))
	for i := range rows {
		u, err := rebuildUser(&rows[i], s.logger)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, actorID, id int64, req *dto.UpdateUserRequest) (*entity.User, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}

	// 非管理员只能修改自己，且不能修改角色/状态
	if err := canManageUser(actor, id); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (req.Role != nil || req.Status != nil) {
		return nil, apperrors.NewValidationError("Only an administrator can change role or status.")
	}

	existing := actor
	if id != actor.ID() {
		if existing, err = loadUser(ctx, s.repo.User, s.logger, id); err != nil {
			return nil, err
		}
	}

	// 唯一性预检：排除自身；未改动时不查询
	if req.UserName != nil && *req.UserName != existing.UserName() {
		taken, err := s.repo.User.ExistsByUserName(ctx, *req.UserName, existing.ID())
		if err != nil {
			return nil, storageErr(s.logger, "检查用户名失败", err)
		}
		if taken {
			return nil, apperrors.NewValidationError("User with username <%s> already exists.", *req.UserName)
		}
	}
	if req.Email != nil && *req.Email != existing.Email() {
		taken, err := s.repo.User.ExistsByEmail(ctx, *req.Email, existing.ID())
		if err != nil {
			return nil, storageErr(s.logger, "检查邮箱失败", err)
		}
		if taken {
			return nil, apperrors.NewValidationError("User with email <%s> already exists.", *req.Email)
		}
	}

	changes := entity.UserChanges{
		UserName:    req.UserName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		changes.Role = &role
	}
	if req.Status != nil {
		status := entity.UserStatus(*req.Status)
		changes.Status = &status
	}

	// 全部校验在写入前完成；头像先写，失败时用户行保持不变
	if req.ProfileImage != nil {
		if _, err := entity.CreateProfileImage(actor, imageData(req.ProfileImage)); err != nil {
			return nil, err
		}
	}
	updated, err := entity.UpdateUser(actor, existing, changes)
	if err != nil {
		return nil, err
	}

	if req.ProfileImage != nil {
		if _, err := s.images.Upsert(ctx, actor.ID(), existing.ID(), req.ProfileImage); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, updated); err != nil {
		return nil, err
	}

	return loadUser(ctx, s.repo.User, s.logger, existing.ID())
}

// ────────────────────── ChangePassword ──────────────────────

func (s *userService) ChangePassword(ctx context.Context, actorID int64, req *dto.ChangePasswordRequest) (*entity.User, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}

	if req.NewPassWord != req.ConfirmPassWord {
		return nil, apperrors.NewValidationError("New password and confirmation do not match")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.PassWord()), []byte(req.CurrentPassWord)); err != nil {
		return nil, apperrors.NewAuthenticationError(msgInvalidCredentials)
	}

	hash, err := hashPassWord(req.NewPassWord, s.cfg.Auth.BcryptCost)
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			s.logger.Error("密码哈希失败", zap.Error(err))
		}
		return nil, err
	}

	updated, err := entity.UpdateUser(actor, actor, entity.UserChanges{PassWord: &hash})
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("用户修改密码", zap.Int64("user_id", actor.ID()))
	return updated, nil
}

// ────────────────────── 角色 / 状态迁移 ──────────────────────

func (s *userService) ChangeRole(ctx context.Context, actorID, id int64, role string) (*entity.User, error) {
	return s.transition(ctx, actorID, id, func(u *entity.User) (*entity.User, error) {
		return u.WithRole(entity.Role(role))
	})
}

func (s *userService) ChangeStatus(ctx context.Context, actorID, id int64, status string) (*entity.User, error) {
	return s.transition(ctx, actorID, id, func(u *entity.User) (*entity.User, error) {
		return u.WithStatus(entity.UserStatus(status))
	})
}

// transition 仅管理员可执行；不限制迁移方向
func (s *userService) transition(ctx context.Context, actorID, id int64, apply func(*entity.User) (*entity.User, error)) (*entity.User, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, apperrors.NewValidationError("Only an administrator can change role or status.")
	}

	target, err := loadUser(ctx, s.repo.User, s.logger, id)
	if err != nil {
		return nil, err
	}

	next, err := apply(target)
	if err != nil {
		return nil, err
	}
	// 记录修改人
	updated, err := entity.UpdateUser(actor, next, entity.UserChanges{})
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("用户角色/状态变更",
		zap.Int64("user_id", updated.ID()),
		zap.String("role", string(updated.Role())),
		zap.String("status", string(updated.Status())),
		zap.Int64("by", actor.ID()),
	)
	return updated, nil
}

// ────────────────────── 初始管理员 ──────────────────────

func (s *userService) EnsureAdmin(ctx context.Context) (*entity.User, bool, error) {
	seed := s.cfg.Seed
	if seed.AdminUserName == "" || seed.AdminEmail == "" {
		return nil, false, apperrors.NewValidationError("Seed validation: admin username and email are required.")
	}

	row, err := s.repo.User.GetByUserName(ctx, seed.AdminUserName)
	if err == nil {
		return s.elevateSeedUser(ctx, row)
	}
	if !isNotFound(err) {
		return nil, false, storageErr(s.logger, "查询初始管理员失败", err)
	}

	hash, err := hashPassWord(seed.AdminPassword, s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, false, err
	}

	// 新建用户固定为最低角色，再显式提升
	created, err := entity.CreateUser(nil, entity.UserData{
		UserName:  seed.AdminUserName,
		FirstName: seed.AdminFirstName,
		LastName:  seed.AdminLastName,
		Email:     seed.AdminEmail,
		PassWord:  hash,
	})
	if err != nil {
		return nil, false, err
	}
	admin := created.AsAdmin()

	m := admin.ToModel()
	if err := s.repo.User.Create(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, apperrors.NewValidationError("User with username <%s> or email <%s> already exists.", seed.AdminUserName, seed.AdminEmail)
		}
		return nil, false, storageErr(s.logger, "创建初始管理员失败", err)
	}

	u, err := loadUser(ctx, s.repo.User, s.logger, m.ID)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("初始管理员已创建", zap.Int64("user_id", u.ID()), zap.String("user_name", u.UserName()))
	return u, true, nil
}

// elevateSeedUser 同名账号已存在但不是管理员时提升为 Admin
func (s *userService) elevateSeedUser(ctx context.Context, row *model.User) (*entity.User, bool, error) {
	u, err := rebuildUser(row, s.logger)
	if err != nil || u.IsAdmin() {
		return u, false, err
	}

	s.logger.Warn("初始管理员账号角色不是 Admin，执行提升",
		zap.Int64("user_id", u.ID()),
		zap.String("role", string(u.Role())),
	)
	admin := u.AsAdmin()
	if err := s.save(ctx, admin); err != nil {
		return nil, false, err
	}
	return admin, false, nil
}

func (s *userService) save(ctx context.Context, u *entity.User) error {
	if err := s.repo.User.Update(ctx, u.ToModel()); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewValidationError("User with username <%s> or email <%s> already exists.", u.UserName(), u.Email())
		}
		return storageErr(s.logger, "更新用户失败", err, zap.Int64("user_id", u.ID()))
	}
	return nil
}

func imageData(req *dto.ProfileImageRequest) entity.ProfileImageData {
	return entity.ProfileImageData{
		URL:      req.URL,
		AltText:  req.AltText,
		FileName: req.FileName,
		MimeType: req.MimeType,
		FileSize: req.FileSize,
	}
}
