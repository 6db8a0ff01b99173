package model

import "time"

// ErrorLog 错误日志表，对应 error_logs
type ErrorLog struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"                json:"id"`
	Type         string     `gorm:"type:varchar(50);not null"               json:"type"`
	Severity     string     `gorm:"type:varchar(30);not null"               json:"severity"`
	HTTPMethod   string     `gorm:"column:http_method;type:varchar(10);not null" json:"httpMethod"`
	ErrorMessage string     `gorm:"type:text;not null"                      json:"errorMessage"`
	StackTrace   string     `gorm:"type:text;not null"                      json:"stackTrace"`
	RequestPath  string     `gorm:"type:text;not null"                      json:"requestPath"`
	Status       string     `gorm:"type:varchar(20);not null;default:'New'" json:"status"`
	ResolvedByID *int64     `                                               json:"resolvedById,omitempty"`
	ResolvedDate *time.Time `                                               json:"resolvedDate,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ErrorLog) TableName() string { return "error_logs" }
