package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"custify/backend/config"
	"custify/backend/internal/entity"
	"custify/backend/internal/repository"
	apperrors "custify/backend/pkg/errors"
)

const noStackTrace = "No StackTrace Available"

// CaptureInput 请求边界捕获到的错误及请求上下文
type CaptureInput struct {
	Err     *apperrors.AppError
	Method  string
	Path    string
	ActorID *int64 // 未认证请求为 nil
}

// ErrorLogService 错误日志业务接口
type ErrorLogService interface {
	// Capture 记录一条错误日志；调用方不应因其失败而改变原响应
	Capture(ctx context.Context, in CaptureInput) (*entity.ErrorLog, error)
	List(ctx context.Context, status string) ([]*entity.ErrorLog, error)
	GetByID(ctx context.Context, id int64) (*entity.ErrorLog, error)
	UpdateStatus(ctx context.Context, actorID, id int64, status string) (*entity.ErrorLog, error)
	// PurgeResolved 删除超过保留期的 Resolved 记录，返回删除条数与截止时间
	PurgeResolved(ctx context.Context) (int64, time.Time, error)
	// RunRetention 按固定间隔执行 PurgeResolved，直到 ctx 取消
	RunRetention(ctx context.Context, interval time.Duration)
}

type errorLogService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewErrorLogService 创建 ErrorLogService 实例
func NewErrorLogService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ErrorLogService {
	return &errorLogService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── 捕获 ──────────────────────

func (s *errorLogService) Capture(ctx context.Context, in CaptureInput) (*entity.ErrorLog, error) {
	var actor *entity.User
	if in.ActorID != nil {
		u, err := loadUser(ctx, s.repo.User, s.logger, *in.ActorID)
		if err != nil {
			s.logger.Warn("错误日志关联用户失败，按匿名记录", zap.Int64("user_id", *in.ActorID), zap.Error(err))
		} else {
			actor = u
		}
	}

	stack := in.Err.Stack
	if stack == "" {
		stack = noStackTrace
	}
	path := in.Path
	if path == "" {
		path = "/"
	}

	log, err := entity.CreateErrorLog(actor, entity.ErrorLogData{
		Type:         in.Err.Type,
		Severity:     in.Err.Severity,
		HTTPMethod:   entity.NormalizeHTTPMethod(in.Method),
		ErrorMessage: in.Err.Message,
		StackTrace:   stack,
		RequestPath:  path,
		Status:       entity.ErrorStatusNew,
	})
	if err != nil {
		s.logger.Warn("错误日志校验失败", zap.Error(err))
		return nil, err
	}

	row := log.ToModel()
	if err := s.repo.ErrorLog.Create(ctx, row); err != nil {
		return nil, storageErr(s.logger, "写入错误日志失败", err, zap.String("path", path))
	}
	return entity.ErrorLogFromModel(row)
}

// ────────────────────── 查询 ──────────────────────

func (s *errorLogService) List(ctx context.Context, status string) ([]*entity.ErrorLog, error) {
	st := entity.ErrorStatus(status)
	if !st.IsValid() {
		return nil, apperrors.NewValidationError("ErrorLog validation: Status is invalid or missing.")
	}

	rows, err := s.repo.ErrorLog.ListByStatus(ctx, status)
	if err != nil {
		return nil, storageErr(s.logger, "查询错误日志失败", err, zap.String("status", status))
	}

	logs := make([]*entity.ErrorLog, 0, len(rows))
	for i := range rows {
		l, err := entity.ErrorLogFromModel(&rows[i])
		if err != nil {
			s.logger.Warn("错误日志记录校验失败", zap.Int64("error_log_id", rows[i].ID), zap.Error(err))
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (s *errorLogService) GetByID(ctx context.Context, id int64) (*entity.ErrorLog, error) {
	row, err := s.repo.ErrorLog.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFoundError("ErrorLog with id <%d> does not exist.", id)
		}
		return nil, storageErr(s.logger, "查询错误日志失败", err, zap.Int64("error_log_id", id))
	}
	return entity.ErrorLogFromModel(row)
}

// ────────────────────── 处理 ──────────────────────

func (s *errorLogService) UpdateStatus(ctx context.Context, actorID, id int64, status string) (*entity.ErrorLog, error) {
	actor, err := loadUser(ctx, s.repo.User, s.logger, actorID)
	if err != nil {
		return nil, err
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := existing.Transition(actor, entity.ErrorStatus(status), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.ErrorLog.Update(ctx, next.ToModel()); err != nil {
		return nil, storageErr(s.logger, "更新错误日志失败", err, zap.Int64("error_log_id", id))
	}

	s.logger.Info("错误日志状态变更",
		zap.Int64("error_log_id", id),
		zap.String("status", status),
		zap.Int64("by", actor.ID()),
	)
	return next, nil
}

// ────────────────────── 保留期清理 ──────────────────────

func (s *errorLogService) PurgeResolved(ctx context.Context) (int64, time.Time, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.ErrorLog.RetentionDays)

	deleted, err := s.repo.ErrorLog.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		return 0, cutoff, storageErr(s.logger, "清理错误日志失败", err)
	}
	if deleted > 0 {
		s.logger.Info("已清理过期错误日志", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, cutoff, nil
}

func (s *errorLogService) RunRetention(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _, _ = s.PurgeResolved(ctx)
		}
	}
}
