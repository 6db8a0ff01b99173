package handler

import (
	"github.com/gin-gonic/gin"

	"custify/backend/internal/dto"
	"custify/backend/internal/service"
	"custify/backend/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// Inbox 当前用户未读通知
// GET /api/v1/notifications
func (h *NotificationHandler) Inbox(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.notificationSvc.Inbox(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, list)
}

// GetNotification 通知详情（仅收件人）
// GET /api/v1/notifications/:id
func (h *NotificationHandler) GetNotification(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	n, err := h.notificationSvc.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, n)
}

// CreateNotification 发送通知，发送人为当前用户
// POST /api/v1/notifications
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.notificationSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, n)
}

// MarkAsRead 标记单条已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	n, err := h.notificationSvc.MarkAsRead(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, n)
}

// MarkAllAsRead 标记全部已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	updated, err := h.notificationSvc.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, dto.MarkAllReadResponse{Updated: updated})
}
