package entity

// UserStatus 账号状态；"删除" 仅是状态值，不删除行
type UserStatus string

const (
	StatusActive   UserStatus = "Active"
	StatusInactive UserStatus = "Inactive"
	StatusDeleted  UserStatus = "Deleted"
)

// IsValid 是否为合法状态
func (s UserStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDeleted:
		return true
	}
	return false
}

func (s UserStatus) String() string { return string(s) }
