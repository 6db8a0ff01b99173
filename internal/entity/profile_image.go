package entity

import (
	"encoding/json"
	"time"

	"custify/backend/internal/model"
	apperrors "custify/backend/pkg/errors"
)

// MaxProfileImageSize 头像文件大小上限（字节）
const MaxProfileImageSize int64 = 5 * 1024 * 1024

const profileImageEntity = "ProfileImage"

// ProfileImageData 头像内容；每次更新整体替换
type ProfileImageData struct {
	URL      string
	AltText  string
	FileName string
	MimeType string
	FileSize int64
}

// ProfileImageChanges 合并更新，nil 表示保持原值
type ProfileImageChanges struct {
	URL      *string
	AltText  *string
	FileName *string
	MimeType *string
	FileSize *int64
}

// ProfileImageParams 完整构造参数
type ProfileImageParams struct {
	AuditFields
	ProfileImageData
}

// ProfileImage 用户头像（与 User 1:1）
type ProfileImage struct {
	Audit
	data ProfileImageData
}

// NewProfileImage 校验并构造头像
func NewProfileImage(p ProfileImageParams) (*ProfileImage, error) {
	if err := validateProfileImage(p.ProfileImageData); err != nil {
		return nil, err
	}
	return &ProfileImage{Audit: newAudit(p.AuditFields), data: p.ProfileImageData}, nil
}

func validateProfileImage(d ProfileImageData) error {
	if err := requireText(profileImageEntity, "Url", d.URL); err != nil {
		return err
	}
	if err := requireText(profileImageEntity, "Alt Text", d.AltText); err != nil {
		return err
	}
	if err := requireText(profileImageEntity, "File Name", d.FileName); err != nil {
		return err
	}
	if err := requireText(profileImageEntity, "Mime Type", d.MimeType); err != nil {
		return err
	}
	if d.FileSize <= 0 {
		return apperrors.NewValidationError("ProfileImage validation: File Size must be greater than zero")
	}
	if d.FileSize > MaxProfileImageSize {
		return apperrors.NewValidationError("ProfileImage validation: File Size must not exceed %d MB", MaxProfileImageSize/(1024*1024))
	}
	return nil
}

// CreateProfileImage 新建头像，actor 为空表示系统操作
func CreateProfileImage(actor *User, data ProfileImageData) (*ProfileImage, error) {
	return NewProfileImage(ProfileImageParams{
		AuditFields:      createdAudit(actor, clock()),
		ProfileImageData: data,
	})
}

// UpdateProfileImage 合并变更生成新实例
func UpdateProfileImage(actor *User, existing *ProfileImage, c ProfileImageChanges) (*ProfileImage, error) {
	return NewProfileImage(ProfileImageParams{
		AuditFields: updatedAudit(actor, existing.Audit, clock()),
		ProfileImageData: ProfileImageData{
			URL:      pick(c.URL, existing.data.URL),
			AltText:  pick(c.AltText, existing.data.AltText),
			FileName: pick(c.FileName, existing.data.FileName),
			MimeType: pick(c.MimeType, existing.data.MimeType),
			FileSize: pick(c.FileSize, existing.data.FileSize),
		},
	})
}

// ProfileImageFromModel 由持久化行重建
func ProfileImageFromModel(m *model.UserImage) (*ProfileImage, error) {
	return NewProfileImage(ProfileImageParams{
		AuditFields: auditFromModel(m.ID, m.BaseModel),
		ProfileImageData: ProfileImageData{
			URL:      m.URL,
			AltText:  m.AltText,
			FileName: m.FileName,
			MimeType: m.MimeType,
			FileSize: m.FileSize,
		},
	})
}

// ToModel 转为持久化行，userID 为所属用户
func (p *ProfileImage) ToModel(userID int64) *model.UserImage {
	return &model.UserImage{
		ID:        p.ID(),
		UserID:    userID,
		URL:       p.data.URL,
		AltText:   p.data.AltText,
		FileName:  p.data.FileName,
		MimeType:  p.data.MimeType,
		FileSize:  p.data.FileSize,
		BaseModel: p.toBaseModel(),
	}
}

func (p *ProfileImage) URL() string { return p.data.URL }
func (p *ProfileImage) AltText() string { return p.data.AltText }
func (p *ProfileImage) FileName() string { return p.data.FileName }
func (p *ProfileImage) MimeType() string { return p.data.MimeType }
func (p *ProfileImage) FileSize() int64 { return p.data.FileSize }

// Data 头像内容副本
func (p *ProfileImage) Data() ProfileImageData { return p.data }

// Equals 比较业务字段
func (p *ProfileImage) Equals(other *ProfileImage) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.data == other.data
}

type profileImageJSON struct {
	ID           int64     `json:"id,omitempty"`
	URL          string    `json:"url"`
	AltText      string    `json:"altText"`
	FileName     string    `json:"fileName"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
	CreatedByID  *int64    `json:"createdById,omitempty"`
	CreatedDate  time.Time `json:"createdDate"`
	ModifiedByID *int64    `json:"modifiedById,omitempty"`
	ModifiedDate time.Time `json:"modifiedDate"`
}

func (p *ProfileImage) MarshalJSON() ([]byte, error) {
	return json.Marshal(profileImageJSON{
		ID:           p.ID(),
		URL:          p.data.URL,
		AltText:      p.data.AltText,
		FileName:     p.data.FileName,
		MimeType:     p.data.MimeType,
		FileSize:     p.data.FileSize,
		CreatedByID:  p.CreatedByID(),
		CreatedDate:  p.CreatedDate(),
		ModifiedByID: p.ModifiedByID(),
		ModifiedDate: p.ModifiedDate(),
	})
}
