package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"custify/backend/config"
	"custify/backend/internal/dto"
	"custify/backend/internal/entity"
	"custify/backend/internal/repository"
	apperrors "custify/backend/pkg/errors"
	"custify/backend/pkg/jwt"
	"custify/backend/pkg/redis"
)

// 登录失败统一返回该消息，不区分用户名不存在与密码错误
const msgInvalidCredentials = "Invalid credentials."

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Logout 将 Token 的 jti 加入黑名单直至其过期；未启用 Redis 时为空操作
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例，rdb 可为 nil
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	// 1. 唯一性预检（快速失败；并发下以数据库唯一约束为准）
	taken, err := s.repo.User.ExistsByUserName(ctx, req.UserName, 0)
	if err != nil {
		return nil, storageErr(s.logger, "检查用户名失败", err)
	}
	if taken {
		return nil, apperrors.NewAuthenticationError("User with username <%s> already exists.", req.UserName)
	}

	taken, err = s.repo.User.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, storageErr(s.logger, "检查邮箱失败", err)
	}
	if taken {
		return nil, apperrors.NewAuthenticationError("User with email <%s> already exists.", req.Email)
	}

	// 2. 哈希密码
	hash, err := hashPassWord(req.PassWord, s.cfg.Auth.BcryptCost)
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			s.logger.Error("密码哈希失败", zap.Error(err))
		}
		return nil, err
	}

	// 3. 构造实体：角色固定为最低级、状态 Active
	user, err := entity.CreateUser(nil, entity.UserData{
		UserName:    req.UserName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PassWord:    hash,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	// 4. 持久化
	row := user.ToModel()
	if err := s.repo.User.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewAuthenticationError("User with username <%s> or email <%s> already exists.", req.UserName, req.Email)
		}
		return nil, storageErr(s.logger, "创建用户失败", err, zap.String("user_name", req.UserName))
	}

	created, err := rebuildUser(row, s.logger)
	if err != nil {
		return nil, err
	}

	s.logger.Info("用户注册成功", zap.Int64("user_id", created.ID()), zap.String("user_name", created.UserName()))

	return s.issue(created)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	// 1. 查询用户
	row, err := s.repo.User.GetByUserName(ctx, req.UserName)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewAuthenticationError(msgInvalidCredentials)
		}
		return nil, storageErr(s.logger, "查询用户失败", err, zap.String("user_name", req.UserName))
	}
	user, err := rebuildUser(row, s.logger)
	if err != nil {
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassWord()), []byte(req.PassWord)); err != nil {
		return nil, apperrors.NewAuthenticationError(msgInvalidCredentials)
	}

	// 3. 账号状态
	if !user.IsActive() {
		return nil, apperrors.NewAuthenticationError("Account is inactive. Contact management.")
	}

	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	if err := s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

// issue 签发 Token 并构造响应
func (s *authService) issue(user *entity.User) (*dto.AuthResponse, error) {
	token, err := s.jwtMgr.GenerateToken(user.ID(), string(user.Role()))
	if err != nil {
		s.logger.Error("生成 Token 失败", zap.Error(err))
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresIn: int(s.jwtMgr.TTL().Seconds()),
		User:      user,
	}, nil
}
