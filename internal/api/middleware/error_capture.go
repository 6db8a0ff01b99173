package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"custify/backend/internal/service"
	apperrors "custify/backend/pkg/errors"
)

// ErrorCapture 请求结束后把 Handler 记录在上下文中的 AppError 写入错误日志
// 写入在后台进行，失败只记日志，不影响已写出的响应
func ErrorCapture(errorLogs service.ErrorLogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		var actorID *int64
		if v, ok := c.Get(CtxUserID); ok {
			if id, ok := v.(int64); ok {
				actorID = &id
			}
		}
		method := c.Request.Method
		path := c.Request.URL.Path
		// 请求结束后原 ctx 会被取消
		ctx := context.WithoutCancel(c.Request.Context())

		for _, ge := range c.Errors {
			appErr, ok := apperrors.As(ge.Err)
			if !ok {
				continue
			}
			in := service.CaptureInput{Err: appErr, Method: method, Path: path, ActorID: actorID}
			go func() {
				if _, err := errorLogs.Capture(ctx, in); err != nil {
					logger.Warn("写入错误日志失败",
						zap.String("path", path),
						zap.String("error_message", appErr.Message),
						zap.Error(err),
					)
				}
			}()
		}
	}
}
