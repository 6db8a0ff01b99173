package dto

// ── 通知模块 DTO ──

// CreateNotificationRequest 发送通知
// Status 缺省为 Sent 并记录发送时间；SenderID 缺省表示系统通知
type CreateNotificationRequest struct {
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Status      *string `json:"status"`
	SenderID    *int64  `json:"senderId"    binding:"omitempty,min=1"`
	RecipientID int64   `json:"recipientId" binding:"required,min=1"`
}

// MarkAllReadResponse 批量已读结果
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
