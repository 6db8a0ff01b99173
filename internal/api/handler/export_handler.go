package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"custify/backend/internal/dto"
	"custify/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportErrorLogs 导出错误日志
// GET /api/v1/error-logs/export?status=New
func (h *ExportHandler) ExportErrorLogs(c *gin.Context) {
	var req dto.ErrorLogListRequest
	if !bindQuery(c, &req) {
		return
	}

	buf, filename, err := h.exportSvc.ExportErrorLogs(c.Request.Context(), req.GetStatus())
	if err != nil {
		respondError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
