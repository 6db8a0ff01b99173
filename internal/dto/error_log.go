package dto

// ── 错误日志模块 DTO ──

// ErrorLogListRequest 按状态查询，缺省为 New
type ErrorLogListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=New Reviewed Resolved"`
}

// GetStatus 获取状态（含默认值）
func (r *ErrorLogListRequest) GetStatus() string {
	if r.Status == "" {
		return "New"
	}
	return r.Status
}

// UpdateErrorLogRequest 更新处理状态
type UpdateErrorLogRequest struct {
	Status string `json:"status" binding:"required"`
}

// PurgeResponse 保留期清理结果
type PurgeResponse struct {
	Deleted   int64  `json:"deleted"`
	Cutoff    string `json:"cutoff"`
	Retention int    `json:"retentionDays"`
}
