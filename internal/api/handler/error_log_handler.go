package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"custify/backend/internal/dto"
	"custify/backend/internal/service"
	"custify/backend/pkg/response"
)

// ErrorLogHandler 错误日志模块 HTTP 处理器（管理员）
type ErrorLogHandler struct {
	errorLogSvc   service.ErrorLogService
	retentionDays int
}

// NewErrorLogHandler 创建 ErrorLogHandler
func NewErrorLogHandler(errorLogSvc service.ErrorLogService, retentionDays int) *ErrorLogHandler {
	return &ErrorLogHandler{errorLogSvc: errorLogSvc, retentionDays: retentionDays}
}

// ListErrorLogs 按状态查询，缺省 New
// GET /api/v1/error-logs?status=New|Reviewed|Resolved
func (h *ErrorLogHandler) ListErrorLogs(c *gin.Context) {
	var req dto.ErrorLogListRequest
	if !bindQuery(c, &req) {
		return
	}

	logs, err := h.errorLogSvc.List(c.Request.Context(), req.GetStatus())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, logs)
}

// GetErrorLog 错误日志详情
// GET /api/v1/error-logs/:id
func (h *ErrorLogHandler) GetErrorLog(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	log, err := h.errorLogSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, log)
}

// UpdateErrorLog 切换处理状态
// PUT /api/v1/error-logs/:id
func (h *ErrorLogHandler) UpdateErrorLog(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateErrorLogRequest
	if !bindJSON(c, &req) {
		return
	}

	log, err := h.errorLogSvc.UpdateStatus(c.Request.Context(), actorID, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, log)
}

// PurgeResolved 立即执行保留期清理
// DELETE /api/v1/error-logs/resolved
func (h *ErrorLogHandler) PurgeResolved(c *gin.Context) {
	deleted, cutoff, err := h.errorLogSvc.PurgeResolved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, dto.PurgeResponse{
		Deleted:   deleted,
		Cutoff:    cutoff.Format(time.RFC3339),
		Retention: h.retentionDays,
	})
}
