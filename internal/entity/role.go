package entity

// Role 用户角色
type Role string

const (
	RoleAdmin          Role = "Admin"
	RoleHumanResources Role = "Human Resources"
	RoleGuest          Role = "Guest"
)

// LowestRole 新注册用户的默认角色
const LowestRole = RoleGuest

// IsValid 是否为合法角色
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleHumanResources, RoleGuest:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Roles 全部角色
func Roles() []Role {
	return []Role{RoleAdmin, RoleHumanResources, RoleGuest}
}
