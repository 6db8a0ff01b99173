package model

// UserImage 用户头像表，对应 user_images（与 users 1:1，按 user_id 整体替换）
type UserImage struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID   int64  `gorm:"not null;uniqueIndex"       json:"userId"`
	URL      string `gorm:"column:url;type:text;not null" json:"url"`
	AltText  string `gorm:"type:varchar(255);not null" json:"altText"`
	FileName string `gorm:"type:varchar(255);not null" json:"fileName"`
	MimeType string `gorm:"type:varchar(100);not null" json:"mimeType"`
	FileSize int64  `gorm:"not null"                   json:"fileSize"`
	BaseModel
}

// TableName 指定表名
func (UserImage) TableName() string { return "user_images" }
