package entity

import (
	"encoding/json"
	"strings"
	"time"

	"custify/backend/internal/model"
)

const userEntity = "User"

// UserData 注册/新建用户的输入；Role 与 Status 会被忽略
type UserData struct {
	UserName    string
	FirstName   string
	LastName    string
	Email       string
	PassWord    string // 已哈希
	PhoneNumber *string
	Role        Role
	Status      UserStatus
}

// UserChanges 合并更新，nil 表示保持原值；非 nil 一律采用后再校验
type UserChanges struct {
	UserName     *string
	FirstName    *string
	LastName     *string
	Email        *string
	PassWord     *string
	Role         *Role
	Status       *UserStatus
	PhoneNumber  *string
	ProfileImage *ProfileImage
}

// UserParams 完整构造参数
type UserParams struct {
	AuditFields
	UserName     string
	FirstName    string
	LastName     string
	Email        string
	PassWord     string
	Role         Role
	Status       UserStatus
	PhoneNumber  *string
	ProfileImage *ProfileImage
}

// User 用户实体
type User struct {
	Audit
	userName     string
	firstName    string
	lastName     string
	email        string
	passWord     string
	role         Role
	status       UserStatus
	phoneNumber  *string
	profileImage *ProfileImage
}

// NewUser 校验并构造用户
func NewUser(p UserParams) (*User, error) {
	if err := validateUser(p); err != nil {
		return nil, err
	}
	return &User{
		Audit:        newAudit(p.AuditFields),
		userName:     p.UserName,
		firstName:    p.FirstName,
		lastName:     p.LastName,
		email:        p.Email,
		passWord:     p.PassWord,
		role:         p.Role,
		status:       p.Status,
		phoneNumber:  cloneString(p.PhoneNumber),
		profileImage: p.ProfileImage,
	}, nil
}

func validateUser(p UserParams) error {
	if err := requireText(userEntity, "Username", p.UserName); err != nil {
		return err
	}
	if err := requireText(userEntity, "First name", p.FirstName); err != nil {
		return err
	}
	if err := requireText(userEntity, "Last name", p.LastName); err != nil {
		return err
	}
	if err := requireText(userEntity, "Email", p.Email); err != nil {
		return err
	}
	if err := requireText(userEntity, "Password", p.PassWord); err != nil {
		return err
	}
	if !p.Role.IsValid() {
		return invalidEnum(userEntity, "Role")
	}
	if !p.Status.IsValid() {
		return invalidEnum(userEntity, "Status")
	}
	return nil
}

// ValidatePassWord 明文密码在哈希前的必填校验（哈希后的值永不为空）
func ValidatePassWord(raw string) error {
	return requireText(userEntity, "Password", raw)
}

// CreateUser 新建用户：角色固定为最低级、状态为 Active，忽略 data 中的角色/状态
// actor 为 nil 表示未登录注册
func CreateUser(actor *User, data UserData) (*User, error) {
	return NewUser(UserParams{
		AuditFields: createdAudit(actor, clock()),
		UserName:    data.UserName,
		FirstName:   data.FirstName,
		LastName:    data.LastName,
		Email:       data.Email,
		PassWord:    data.PassWord,
		Role:        LowestRole,
		Status:      StatusActive,
		PhoneNumber: data.PhoneNumber,
	})
}

// UpdateUser 合并变更生成新实例，保留 id 与创建信息
func UpdateUser(actor, existing *User, c UserChanges) (*User, error) {
	p := existing.params()
	p.AuditFields = updatedAudit(actor, existing.Audit, clock())
	p.UserName = pick(c.UserName, p.UserName)
	p.FirstName = pick(c.FirstName, p.FirstName)
	p.LastName = pick(c.LastName, p.LastName)
	p.Email = pick(c.Email, p.Email)
	p.PassWord = pick(c.PassWord, p.PassWord)
	p.Role = pick(c.Role, p.Role)
	p.Status = pick(c.Status, p.Status)
	if c.PhoneNumber != nil {
		p.PhoneNumber = c.PhoneNumber
	}
	if c.ProfileImage != nil {
		p.ProfileImage = c.ProfileImage
	}
	return NewUser(p)
}

// UserFromModel 由持久化行重建（含可选头像）
func UserFromModel(m *model.User) (*User, error) {
	var image *ProfileImage
	if m.ProfileImage != nil {
		img, err := ProfileImageFromModel(m.ProfileImage)
		if err != nil {
			return nil, err
		}
		image = img
	}
	return NewUser(UserParams{
		AuditFields:  auditFromModel(m.ID, m.BaseModel),
		UserName:     m.UserName,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PassWord:     m.PassWord,
		Role:         Role(m.Role),
		Status:       UserStatus(m.Status),
		PhoneNumber:  m.PhoneNumber,
		ProfileImage: image,
	})
}

// ToModel 转为持久化行
func (u *User) ToModel() *model.User {
	m := &model.User{
		ID:          u.ID(),
		UserName:    u.userName,
		FirstName:   u.firstName,
		LastName:    u.lastName,
		Email:       u.email,
		PassWord:    u.passWord,
		Role:        string(u.role),
		Status:      string(u.status),
		PhoneNumber: cloneString(u.phoneNumber),
		BaseModel:   u.toBaseModel(),
	}
	if u.profileImage != nil {
		m.ProfileImage = u.profileImage.ToModel(u.ID())
	}
	return m
}

func (u *User) params() UserParams {
	return UserParams{
		AuditFields:  u.AuditFields(),
		UserName:     u.userName,
		FirstName:    u.firstName,
		LastName:     u.lastName,
		Email:        u.email,
		PassWord:     u.passWord,
		Role:         u.role,
		Status:       u.status,
		PhoneNumber:  cloneString(u.phoneNumber),
		ProfileImage: u.profileImage,
	}
}

func (u *User) UserName() string { return u.userName }
func (u *User) FirstName() string { return u.firstName }
func (u *User) LastName() string { return u.lastName }
func (u *User) Email() string { return u.email }
func (u *User) PassWord() string { return u.passWord }
func (u *User) Role() Role { return u.role }
func (u *User) Status() UserStatus { return u.status }
func (u *User) PhoneNumber() *string { return cloneString(u.phoneNumber) }
func (u *User) ProfileImage() *ProfileImage { return u.profileImage }
func (u *User) FullName() string { return strings.TrimSpace(u.firstName + " " + u.lastName) }
func (u *User) IsAdmin() bool { return u.role == RoleAdmin }
func (u *User) IsHumanResources() bool { return u.role == RoleHumanResources }
func (u *User) IsGuest() bool { return u.role == RoleGuest }
func (u *User) IsActive() bool { return u.status == StatusActive }

// HasAnyRole 是否具备任一角色
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.role == r {
			return true
		}
	}
	return false
}

// Equals 比较业务字段（不含密码与审计字段）
func (u *User) Equals(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.userName == other.userName &&
		u.firstName == other.firstName &&
		u.lastName == other.lastName &&
		u.email == other.email &&
		u.role == other.role &&
		u.status == other.status
}

// ── 角色/状态迁移 ──
// 不限制迁移方向（Deleted → Active 亦允许），只校验取值合法

// WithRole 返回角色替换后的新实例
func (u *User) WithRole(role Role) (*User, error) {
	p := u.params()
	p.Role = role
	return NewUser(p)
}

// WithStatus 返回状态替换后的新实例
func (u *User) WithStatus(status UserStatus) (*User, error) {
	p := u.params()
	p.Status = status
	return NewUser(p)
}

func (u *User) AsGuest() *User { return u.withRole(RoleGuest) }
func (u *User) AsHumanResources() *User { return u.withRole(RoleHumanResources) }
func (u *User) AsAdmin() *User { return u.withRole(RoleAdmin) }
func (u *User) Activate() *User { return u.withStatus(StatusActive) }
func (u *User) Deactivate() *User { return u.withStatus(StatusInactive) }
func (u *User) MarkDeleted() *User { return u.withStatus(StatusDeleted) }

// 已校验实例替换为合法取值，无需重新校验
func (u *User) withRole(role Role) *User {
	next := *u
	next.role = role
	return &next
}

func (u *User) withStatus(status UserStatus) *User {
	next := *u
	next.status = status
	return &next
}

// ── JSON ──

type userJSON struct {
	ID           int64         `json:"id,omitempty"`
	UserName     string        `json:"userName"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	FullName     string        `json:"fullName"`
	Email        string        `json:"email"`
	Role         Role          `json:"role"`
	Status       UserStatus    `json:"status"`
	PhoneNumber  *string       `json:"phoneNumber,omitempty"`
	ProfileImage *ProfileImage `json:"profileImage,omitempty"`
	CreatedByID  *int64        `json:"createdById,omitempty"`
	CreatedDate  time.Time     `json:"createdDate"`
	ModifiedByID *int64        `json:"modifiedById,omitempty"`
	ModifiedDate time.Time     `json:"modifiedDate"`
}

// MarshalJSON 对外投影，永不包含密码哈希
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{
		ID:           u.ID(),
		UserName:     u.userName,
		FirstName:    u.firstName,
		LastName:     u.lastName,
		FullName:     u.FullName(),
		Email:        u.email,
		Role:         u.role,
		Status:       u.status,
		PhoneNumber:  u.phoneNumber,
		ProfileImage: u.profileImage,
		CreatedByID:  u.CreatedByID(),
		CreatedDate:  u.CreatedDate(),
		ModifiedByID: u.ModifiedByID(),
		ModifiedDate: u.ModifiedDate(),
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
