package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	UserName string `json:"userName" binding:"required"`
	PassWord string `json:"passWord" binding:"required"`
}

// RegisterRequest 注册请求
// 必填项由实体校验给出统一的 ValidationError 消息，这里只校验格式
type RegisterRequest struct {
	UserName    string  `json:"userName"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"       binding:"omitempty,email"`
	PassWord    string  `json:"passWord"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,max=30"`
}

// ChangePasswordRequest 修改密码请求；新密码须与确认值逐字节一致
type ChangePasswordRequest struct {
	CurrentPassWord string `json:"currentPassWord" binding:"required"`
	NewPassWord     string `json:"newPassWord"     binding:"required"`
	ConfirmPassWord string `json:"confirmPassWord" binding:"required"`
}
