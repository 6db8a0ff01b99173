package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "custify/backend/pkg/errors"
	"custify/backend/pkg/response"
)

// respondError 统一错误出口
// 先记录到 gin 上下文（ErrorCapture 据此写错误日志），再按分类写出响应
// 非 AppError 一律视为存储/内部错误，细节只在服务端日志
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	if appErr, ok := apperrors.As(err); ok {
		response.AppError(c, appErr)
		return
	}
	response.InternalError(c, apperrors.ErrStorage.Error())
}

// bindJSON 绑定请求体；失败时已写出响应，调用方直接 return
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Request body too large.")
			return false
		}
		respondError(c, apperrors.NewValidationError("Invalid request body: %s", err.Error()))
		return false
	}
	return true
}

// bindQuery 绑定查询参数
func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		respondError(c, apperrors.NewValidationError("Invalid query parameters: %s", err.Error()))
		return false
	}
	return true
}

// pathID 解析路径中的正整数 id
func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperrors.NewValidationError("Invalid id <%s>.", raw))
		return 0, false
	}
	return id, true
}
