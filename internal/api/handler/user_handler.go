package handler

import (
	"github.com/gin-gonic/gin"

	"custify/backend/internal/dto"
	"custify/backend/internal/service"
	"custify/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc  service.UserService
	imageSvc service.ProfileImageService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, imageSvc service.ProfileImageService) *UserHandler {
	return &UserHandler{userSvc: userSvc, imageSvc: imageSvc}
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Current(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// ListUsers 用户列表（管理员 / 人事）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if !bindQuery(c, &req) {
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情（管理员 / 人事）
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser 更新用户资料（本人或管理员；角色/状态仅管理员）
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), actorID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangePassword 修改本人密码
// PUT /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.ChangePassword(c.Request.Context(), actorID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangeRole 调整角色（管理员）
// PUT /api/v1/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.ChangeRole(c.Request.Context(), actorID, id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// ChangeStatus 调整账号状态（管理员）
// PUT /api/v1/users/:id/status
func (h *UserHandler) ChangeStatus(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userSvc.ChangeStatus(c.Request.Context(), actorID, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, user)
}

// GetProfileImage 查看头像
// GET /api/v1/users/:id/profile-image
func (h *UserHandler) GetProfileImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	image, err := h.imageSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, image)
}

// UpsertProfileImage 新建或整体替换头像（本人或管理员）
// PUT /api/v1/users/:id/profile-image
func (h *UserHandler) UpsertProfileImage(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ProfileImageRequest
	if !bindJSON(c, &req) {
		return
	}

	image, err := h.imageSvc.Upsert(c.Request.Context(), actorID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, image)
}
