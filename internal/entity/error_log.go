package entity

import (
	"encoding/json"
	"strings"
	"time"

	"custify/backend/internal/model"
	apperrors "custify/backend/pkg/errors"
)

const errorLogEntity = "ErrorLog"

// HTTPMethod 记录的请求方法
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "Get"
	MethodPost   HTTPMethod = "Post"
	MethodPut    HTTPMethod = "Put"
	MethodPatch  HTTPMethod = "Patch"
	MethodDelete HTTPMethod = "Delete"
)

func (m HTTPMethod) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// NormalizeHTTPMethod 将原始方法名规整为首字母大写形式，无法识别时回落为 Get
func NormalizeHTTPMethod(raw string) HTTPMethod {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MethodGet
	}
	m := HTTPMethod(strings.ToUpper(raw[:1]) + strings.ToLower(raw[1:]))
	if m.IsValid() {
		return m
	}
	return MethodGet
}

// ErrorStatus 错误日志处理状态
type ErrorStatus string

const (
	ErrorStatusNew      ErrorStatus = "New"
	ErrorStatusReviewed ErrorStatus = "Reviewed"
	ErrorStatusResolved ErrorStatus = "Resolved"
)

func (s ErrorStatus) IsValid() bool {
	switch s {
	case ErrorStatusNew, ErrorStatusReviewed, ErrorStatusResolved:
		return true
	}
	return false
}

// ErrorLogData 错误日志内容
type ErrorLogData struct {
	Type         apperrors.Type
	Severity     apperrors.Severity
	HTTPMethod   HTTPMethod
	ErrorMessage string
	StackTrace   string
	RequestPath  string
	Status       ErrorStatus
}

// ErrorLogChanges 合并更新，nil 表示保持原值
type ErrorLogChanges struct {
	Type         *apperrors.Type
	Severity     *apperrors.Severity
	HTTPMethod   *HTTPMethod
	ErrorMessage *string
	StackTrace   *string
	RequestPath  *string
	Status       *ErrorStatus
	ResolvedByID *int64
	ResolvedDate *time.Time
}

// ErrorLogParams 完整构造参数
type ErrorLogParams struct {
	AuditFields
	ErrorLogData
	ResolvedByID *int64
	ResolvedDate *time.Time
}

// ErrorLog 错误日志实体
type ErrorLog struct {
	Audit
	data         ErrorLogData
	resolvedByID *int64
	resolvedDate *time.Time
}

// NewErrorLog 校验并构造错误日志
func NewErrorLog(p ErrorLogParams) (*ErrorLog, error) {
	if err := validateErrorLog(p.ErrorLogData); err != nil {
		return nil, err
	}
	return &ErrorLog{
		Audit:        newAudit(p.AuditFields),
		data:         p.ErrorLogData,
		resolvedByID: cloneID(p.ResolvedByID),
		resolvedDate: cloneTime(p.ResolvedDate),
	}, nil
}

func validateErrorLog(d ErrorLogData) error {
	checks := []struct {
		field string
		value string
	}{
		{"Type", string(d.Type)},
		{"Severity", string(d.Severity)},
		{"Http Method", string(d.HTTPMethod)},
		{"Error message", d.ErrorMessage},
		{"Stack Trace", d.StackTrace},
		{"Request Path", d.RequestPath},
		{"Status", string(d.Status)},
	}
	for _, c := range checks {
		if err := requireText(errorLogEntity, c.field, c.value); err != nil {
			return err
		}
	}
	if !apperrors.IsValidType(d.Type) {
		return invalidEnum(errorLogEntity, "Type")
	}
	if !apperrors.IsValidSeverity(d.Severity) {
		return invalidEnum(errorLogEntity, "Severity")
	}
	if !d.HTTPMethod.IsValid() {
		return invalidEnum(errorLogEntity, "Http Method")
	}
	if !d.Status.IsValid() {
		return invalidEnum(errorLogEntity, "Status")
	}
	return nil
}

// CreateErrorLog 新建错误日志，未指定状态时为 New；actor 为空表示未登录请求
func CreateErrorLog(actor *User, data ErrorLogData) (*ErrorLog, error) {
	if data.Status == "" {
		data.Status = ErrorStatusNew
	}
	return NewErrorLog(ErrorLogParams{
		AuditFields:  createdAudit(actor, clock()),
		ErrorLogData: data,
	})
}

// UpdateErrorLog 合并变更生成新实例
func UpdateErrorLog(actor *User, existing *ErrorLog, c ErrorLogChanges) (*ErrorLog, error) {
	d := existing.data
	d.Type = pick(c.Type, d.Type)
	d.Severity = pick(c.Severity, d.Severity)
	d.HTTPMethod = pick(c.HTTPMethod, d.HTTPMethod)
	d.ErrorMessage = pick(c.ErrorMessage, d.ErrorMessage)
	d.StackTrace = pick(c.StackTrace, d.StackTrace)
	d.RequestPath = pick(c.RequestPath, d.RequestPath)
	d.Status = pick(c.Status, d.Status)

	resolvedByID := existing.resolvedByID
	if c.ResolvedByID != nil {
		resolvedByID = c.ResolvedByID
	}
	resolvedDate := existing.resolvedDate
	if c.ResolvedDate != nil {
		resolvedDate = c.ResolvedDate
	}

	return NewErrorLog(ErrorLogParams{
		AuditFields:  updatedAudit(actor, existing.Audit, clock()),
		ErrorLogData: d,
		ResolvedByID: resolvedByID,
		ResolvedDate: resolvedDate,
	})
}

// Transition 切换处理状态；切到 Resolved 时记录处理人与时间
// 不限制迁移方向
func (e *ErrorLog) Transition(actor *User, status ErrorStatus, at time.Time) (*ErrorLog, error) {
	c := ErrorLogChanges{Status: &status}
	if status == ErrorStatusResolved {
		c.ResolvedByID = actorID(actor)
		c.ResolvedDate = &at
	}
	return UpdateErrorLog(actor, e, c)
}

// ErrorLogFromModel 由持久化行重建
func ErrorLogFromModel(m *model.ErrorLog) (*ErrorLog, error) {
	return NewErrorLog(ErrorLogParams{
		AuditFields: auditFromModel(m.ID, m.BaseModel),
		ErrorLogData: ErrorLogData{
			Type:         apperrors.Type(m.Type),
			Severity:     apperrors.Severity(m.Severity),
			HTTPMethod:   HTTPMethod(m.HTTPMethod),
			ErrorMessage: m.ErrorMessage,
			StackTrace:   m.StackTrace,
			RequestPath:  m.RequestPath,
			Status:       ErrorStatus(m.Status),
		},
		ResolvedByID: m.ResolvedByID,
		ResolvedDate: m.ResolvedDate,
	})
}

// ToModel 转为持久化行
func (e *ErrorLog) ToModel() *model.ErrorLog {
	return &model.ErrorLog{
		ID:           e.ID(),
		Type:         string(e.data.Type),
		Severity:     string(e.data.Severity),
		HTTPMethod:   string(e.data.HTTPMethod),
		ErrorMessage: e.data.ErrorMessage,
		StackTrace:   e.data.StackTrace,
		RequestPath:  e.data.RequestPath,
		Status:       string(e.data.Status),
		ResolvedByID: cloneID(e.resolvedByID),
		ResolvedDate: cloneTime(e.resolvedDate),
		BaseModel:    e.toBaseModel(),
	}
}

func (e *ErrorLog) Type() apperrors.Type { return e.data.Type }
func (e *ErrorLog) Severity() apperrors.Severity { return e.data.Severity }
func (e *ErrorLog) HTTPMethod() HTTPMethod { return e.data.HTTPMethod }
func (e *ErrorLog) ErrorMessage() string { return e.data.ErrorMessage }
func (e *ErrorLog) StackTrace() string { return e.data.StackTrace }
func (e *ErrorLog) RequestPath() string { return e.data.RequestPath }
func (e *ErrorLog) Status() ErrorStatus { return e.data.Status }
func (e *ErrorLog) ResolvedByID() *int64 { return cloneID(e.resolvedByID) }
func (e *ErrorLog) ResolvedDate() *time.Time { return cloneTime(e.resolvedDate) }

// Equals 比较业务字段
func (e *ErrorLog) Equals(other *ErrorLog) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.data == other.data
}

type errorLogJSON struct {
	ID           int64              `json:"id,omitempty"`
	Type         apperrors.Type     `json:"type"`
	Severity     apperrors.Severity `json:"severity"`
	HTTPMethod   HTTPMethod         `json:"httpMethod"`
	ErrorMessage string             `json:"errorMessage"`
	StackTrace   string             `json:"stackTrace"`
	RequestPath  string             `json:"requestPath"`
	Status       ErrorStatus        `json:"status"`
	ResolvedByID *int64             `json:"resolvedById,omitempty"`
	ResolvedDate *time.Time         `json:"resolvedDate,omitempty"`
	CreatedByID  *int64             `json:"createdById,omitempty"`
	CreatedDate  time.Time          `json:"createdDate"`
	ModifiedByID *int64             `json:"modifiedById,omitempty"`
	ModifiedDate time.Time          `json:"modifiedDate"`
}

func (e *ErrorLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorLogJSON{
		ID:           e.ID(),
		Type:         e.data.Type,
		Severity:     e.data.Severity,
		HTTPMethod:   e.data.HTTPMethod,
		ErrorMessage: e.data.ErrorMessage,
		StackTrace:   e.data.StackTrace,
		RequestPath:  e.data.RequestPath,
		Status:       e.data.Status,
		ResolvedByID: e.resolvedByID,
		ResolvedDate: e.resolvedDate,
		CreatedByID:  e.CreatedByID(),
		CreatedDate:  e.CreatedDate(),
		ModifiedByID: e.ModifiedByID(),
		ModifiedDate: e.ModifiedDate(),
	})
}
