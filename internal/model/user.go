package model

// User 用户表，对应 users
type User struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserName    string  `gorm:"type:varchar(100);not null;uniqueIndex"     json:"userName"`
	FirstName   string  `gorm:"type:varchar(100);not null"                 json:"firstName"`
	LastName    string  `gorm:"type:varchar(100);not null"                 json:"lastName"`
	Email       string  `gorm:"type:varchar(255);not null;uniqueIndex"     json:"email"`
	PassWord    string  `gorm:"type:varchar(255);not null"                 json:"-"`
	Role        string  `gorm:"type:varchar(30);not null;default:'Guest'"  json:"role"`
	Status      string  `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	PhoneNumber *string `gorm:"type:varchar(30)"                           json:"phoneNumber,omitempty"`
	BaseModel

	// 关联
	ProfileImage *UserImage `gorm:"foreignKey:UserID;references:ID" json:"profileImage,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
