package entity

import (
	"encoding/json"
	"time"

	"custify/backend/internal/model"
	apperrors "custify/backend/pkg/errors"
)

const notificationEntity = "Notification"

// NotificationStatus 通知状态
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "Pending"
	NotificationSent    NotificationStatus = "Sent"
	NotificationRead    NotificationStatus = "Read"
)

func (s NotificationStatus) IsValid() bool {
	switch s {
	case NotificationPending, NotificationSent, NotificationRead:
		return true
	}
	return false
}

// NotificationCategory 通知分类
type NotificationCategory string

const (
	CategoryGeneral NotificationCategory = "General"
	CategorySystem  NotificationCategory = "System"
	CategoryAlert   NotificationCategory = "Alert"
)

func (c NotificationCategory) IsValid() bool {
	switch c {
	case CategoryGeneral, CategorySystem, CategoryAlert:
		return true
	}
	return false
}

// NotificationPriority 通知优先级
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "Low"
	PriorityMedium NotificationPriority = "Medium"
	PriorityHigh   NotificationPriority = "High"
)

func (p NotificationPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NotificationData 新建通知的输入
type NotificationData struct {
	Title     string
	Body      string
	Status    NotificationStatus
	Category  NotificationCategory
	Priority  NotificationPriority
	SentDate  *time.Time
	Sender    *User // 系统通知时为空
	Recipient *User
}

// NotificationChanges 合并更新；发送人与发送时间不可改
type NotificationChanges struct {
	Title     *string
	Body      *string
	Status    *NotificationStatus
	Category  *NotificationCategory
	Priority  *NotificationPriority
	ReadDate  *time.Time
	Recipient *User
}

// NotificationParams 完整构造参数
type NotificationParams struct {
	AuditFields
	NotificationData
	ReadDate *time.Time
}

// Notification 通知实体
type Notification struct {
	Audit
	data     NotificationData
	readDate *time.Time
}

// NewNotification 校验并构造通知
func NewNotification(p NotificationParams) (*Notification, error) {
	if err := validateNotification(p.NotificationData); err != nil {
		return nil, err
	}
	d := p.NotificationData
	d.SentDate = cloneTime(d.SentDate)
	return &Notification{
		Audit:    newAudit(p.AuditFields),
		data:     d,
		readDate: cloneTime(p.ReadDate),
	}, nil
}

func validateNotification(d NotificationData) error {
	if err := requireText(notificationEntity, "Title", d.Title); err != nil {
		return err
	}
	if err := requireText(notificationEntity, "Body", d.Body); err != nil {
		return err
	}
	if !d.Status.IsValid() {
		return invalidEnum(notificationEntity, "Status")
	}
	if !d.Category.IsValid() {
		return invalidEnum(notificationEntity, "Category")
	}
	if !d.Priority.IsValid() {
		return invalidEnum(notificationEntity, "Priority")
	}
	if d.Recipient == nil {
		return apperrors.NewValidationError("Notification validation: Recipient is required")
	}
	return nil
}

// CreateNotification 新建通知，actor 为空表示系统事件
func CreateNotification(actor *User, data NotificationData) (*Notification, error) {
	return NewNotification(NotificationParams{
		AuditFields:      createdAudit(actor, clock()),
		NotificationData: data,
	})
}

// UpdateNotification 合并变更生成新实例
func UpdateNotification(actor *User, existing *Notification, c NotificationChanges) (*Notification, error) {
	d := existing.data
	d.Title = pick(c.Title, d.Title)
	d.Body = pick(c.Body, d.Body)
	d.Status = pick(c.Status, d.Status)
	d.Category = pick(c.Category, d.Category)
	d.Priority = pick(c.Priority, d.Priority)
	if c.Recipient != nil {
		d.Recipient = c.Recipient
	}
	readDate := existing.readDate
	if c.ReadDate != nil {
		readDate = c.ReadDate
	}
	return NewNotification(NotificationParams{
		AuditFields:      updatedAudit(actor, existing.Audit, clock()),
		NotificationData: d,
		ReadDate:         readDate,
	})
}

// MarkRead 收件人标记已读；非收件人返回 ValidationError 且不产生新实例
func (n *Notification) MarkRead(actor *User, at time.Time) (*Notification, error) {
	if !n.IsRecipient(actor) {
		return nil, apperrors.NewValidationError("You are not the recipient of this notification.")
	}
	status := NotificationRead
	return UpdateNotification(actor, n, NotificationChanges{
		Status:   &status,
		ReadDate: &at,
	})
}

// NotificationFromModel 由持久化行重建；需预加载 Recipient（Sender 可选）
func NotificationFromModel(m *model.Notification) (*Notification, error) {
	var sender, recipient *User
	var err error
	if m.Sender != nil {
		if sender, err = UserFromModel(m.Sender); err != nil {
			return nil, err
		}
	}
	if m.Recipient != nil {
		if recipient, err = UserFromModel(m.Recipient); err != nil {
			return nil, err
		}
	}
	return NewNotification(NotificationParams{
		AuditFields: auditFromModel(m.ID, m.BaseModel),
		NotificationData: NotificationData{
			Title:     m.Title,
			Body:      m.Body,
			Status:    NotificationStatus(m.Status),
			Category:  NotificationCategory(m.Category),
			Priority:  NotificationPriority(m.Priority),
			SentDate:  m.SentDate,
			Sender:    sender,
			Recipient: recipient,
		},
		ReadDate: m.ReadDate,
	})
}

// ToModel 转为持久化行，关联只写外键
func (n *Notification) ToModel() *model.Notification {
	return &model.Notification{
		ID:          n.ID(),
		Title:       n.data.Title,
		Body:        n.data.Body,
		Status:      string(n.data.Status),
		Category:    string(n.data.Category),
		Priority:    string(n.data.Priority),
		SentDate:    cloneTime(n.data.SentDate),
		ReadDate:    cloneTime(n.readDate),
		SenderID:    actorID(n.data.Sender),
		RecipientID: n.data.Recipient.ID(),
		BaseModel:   n.toBaseModel(),
	}
}

func (n *Notification) Title() string { return n.data.Title }
func (n *Notification) Body() string { return n.data.Body }
func (n *Notification) Status() NotificationStatus { return n.data.Status }
func (n *Notification) Category() NotificationCategory { return n.data.Category }
func (n *Notification) Priority() NotificationPriority { return n.data.Priority }
func (n *Notification) SentDate() *time.Time { return cloneTime(n.data.SentDate) }
func (n *Notification) ReadDate() *time.Time { return cloneTime(n.readDate) }
func (n *Notification) Sender() *User { return n.data.Sender }
func (n *Notification) Recipient() *User { return n.data.Recipient }
func (n *Notification) IsRead() bool { return n.readDate != nil }

// IsRecipient actor 是否为收件人
func (n *Notification) IsRecipient(actor *User) bool {
	return actor != nil && actor.IsPersisted() && actor.ID() == n.data.Recipient.ID()
}

// Equals 比较业务字段
func (n *Notification) Equals(other *Notification) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.data.Title == other.data.Title &&
		n.data.Body == other.data.Body &&
		n.data.Status == other.data.Status &&
		n.data.Category == other.data.Category &&
		n.data.Priority == other.data.Priority
}

type notificationJSON struct {
	ID           int64                `json:"id,omitempty"`
	Title        string               `json:"title"`
	Body         string               `json:"body"`
	Status       NotificationStatus   `json:"status"`
	Category     NotificationCategory `json:"category"`
	Priority     NotificationPriority `json:"priority"`
	SentDate     *time.Time           `json:"sentDate,omitempty"`
	ReadDate     *time.Time           `json:"readDate,omitempty"`
	Sender       *User                `json:"sender,omitempty"`
	Recipient    *User                `json:"recipient"`
	CreatedByID  *int64               `json:"createdById,omitempty"`
	CreatedDate  time.Time            `json:"createdDate"`
	ModifiedByID *int64               `json:"modifiedById,omitempty"`
	ModifiedDate time.Time            `json:"modifiedDate"`
}

func (n *Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(notificationJSON{
		ID:           n.ID(),
		Title:        n.data.Title,
		Body:         n.data.Body,
		Status:       n.data.Status,
		Category:     n.data.Category,
		Priority:     n.data.Priority,
		SentDate:     n.data.SentDate,
		ReadDate:     n.readDate,
		Sender:       n.data.Sender,
		Recipient:    n.data.Recipient,
		CreatedByID:  n.CreatedByID(),
		CreatedDate:  n.CreatedDate(),
		ModifiedByID: n.ModifiedByID(),
		ModifiedDate: n.ModifiedDate(),
	})
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
