package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
}

// UpdateUserRequest 更新用户信息；缺省字段保持原值
// Role / Status 仅管理员可改
type UpdateUserRequest struct {
	UserName     *string              `json:"userName"`
	FirstName    *string              `json:"firstName"`
	LastName     *string              `json:"lastName"`
	Email        *string              `json:"email"       binding:"omitempty,email"`
	PhoneNumber  *string              `json:"phoneNumber" binding:"omitempty,max=30"`
	Role         *string              `json:"role"`
	Status       *string              `json:"status"`
	ProfileImage *ProfileImageRequest `json:"profileImage"`
}

// ProfileImageRequest 头像内容，整体替换
type ProfileImageRequest struct {
	URL      string `json:"url"`
	AltText  string `json:"altText"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// UpdateRoleRequest 修改角色
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateStatusRequest 修改账号状态
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
