package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
// created_by_id / modified_by_id 为弱引用，系统事件（注册、启动期日志）时为空
type BaseModel struct {
	CreatedDate  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdDate"`
	CreatedByID  *int64    `gorm:"index"                              json:"createdById,omitempty"`
	ModifiedDate time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"modifiedDate"`
	ModifiedByID *int64    `                                          json:"modifiedById,omitempty"`
}
