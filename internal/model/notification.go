package model

import "time"

// Notification 通知消息表，对应 notifications
// read_date 为空即未读
type Notification struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"   json:"id"`
	Title       string     `gorm:"type:varchar(200);not null" json:"title"`
	Body        string     `gorm:"type:text;not null"         json:"body"`
	Status      string     `gorm:"type:varchar(20);not null"  json:"status"`
	Category    string     `gorm:"type:varchar(20);not null"  json:"category"`
	Priority    string     `gorm:"type:varchar(20);not null"  json:"priority"`
	SentDate    *time.Time `                                  json:"sentDate,omitempty"`
	ReadDate    *time.Time `                                  json:"readDate,omitempty"`
	SenderID    *int64     `gorm:"index"                      json:"senderId,omitempty"`
	RecipientID int64      `gorm:"not null;index"             json:"recipientId"`
	BaseModel

	// 关联
	Sender    *User `gorm:"foreignKey:SenderID;references:ID"    json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID;references:ID" json:"recipient,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
