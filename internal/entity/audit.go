// Package entity 领域实体：构造即校验，实例不可变。
//
// 每个实体提供三条构造路径：
//   - CreateXxx(actor, data)   新建，填充系统默认值并记录创建人
//   - XxxFromModel(row)        由持久化行重建，执行同样的校验
//   - UpdateXxx(actor, old, c) 合并变更后重新校验，返回新实例
//
// 任一不变量被破坏时返回 *errors.AppError（ValidationError），不会触达持久层。
package entity

import (
	"strings"
	"time"

	"custify/backend/internal/model"
	apperrors "custify/backend/pkg/errors"
)

// AuditFields 身份与审计字段的可写形式，仅用于构造
type AuditFields struct {
	ID           int64
	CreatedDate  time.Time
	CreatedByID  *int64
	ModifiedDate time.Time
	ModifiedByID *int64
}

// Audit 所有实体共享的身份/审计信封
// ID 为 0 表示尚未持久化；CreatedByID/ModifiedByID 为弱引用
type Audit struct {
	f AuditFields
}

func newAudit(f AuditFields) Audit {
	f.CreatedByID = cloneID(f.CreatedByID)
	f.ModifiedByID = cloneID(f.ModifiedByID)
	return Audit{f: f}
}

// ID 持久化主键
func (a Audit) ID() int64 { return a.f.ID }

// IsPersisted 是否已分配主键
func (a Audit) IsPersisted() bool { return a.f.ID != 0 }

func (a Audit) CreatedDate() time.Time { return a.f.CreatedDate }
func (a Audit) ModifiedDate() time.Time { return a.f.ModifiedDate }
func (a Audit) CreatedByID() *int64 { return cloneID(a.f.CreatedByID) }
func (a Audit) ModifiedByID() *int64 { return cloneID(a.f.ModifiedByID) }

// AuditFields 返回审计字段副本
func (a Audit) AuditFields() AuditFields {
	return newAudit(a.f).f
}

func (a Audit) toBaseModel() model.BaseModel {
	return model.BaseModel{
		CreatedDate:  a.f.CreatedDate,
		CreatedByID:  cloneID(a.f.CreatedByID),
		ModifiedDate: a.f.ModifiedDate,
		ModifiedByID: cloneID(a.f.ModifiedByID),
	}
}

func auditFromModel(id int64, b model.BaseModel) AuditFields {
	return AuditFields{
		ID:           id,
		CreatedDate:  b.CreatedDate,
		CreatedByID:  b.CreatedByID,
		ModifiedDate: b.ModifiedDate,
		ModifiedByID: b.ModifiedByID,
	}
}

// createdAudit 新建实体：创建人为 actor（系统事件时为 nil）
func createdAudit(actor *User, now time.Time) AuditFields {
	return AuditFields{
		CreatedDate:  now,
		CreatedByID:  actorID(actor),
		ModifiedDate: now,
		ModifiedByID: actorID(actor),
	}
}

// updatedAudit 保留 id/创建信息，修改人改为 actor
func updatedAudit(actor *User, existing Audit, now time.Time) AuditFields {
	f := existing.AuditFields()
	f.ModifiedDate = now
	f.ModifiedByID = actorID(actor)
	return f
}

func actorID(actor *User) *int64 {
	if actor == nil || !actor.IsPersisted() {
		return nil
	}
	id := actor.ID()
	return &id
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// clock 统一使用 UTC，便于与数据库往返比较
var clock = func() time.Time { return time.Now().UTC() }

// ── 校验辅助 ──

func requireText(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.NewValidationError("%s validation: %s is required", entity, field)
	}
	return nil
}

func invalidEnum(entity, field string) error {
	return apperrors.NewValidationError("%s validation: %s is invalid or missing.", entity, field)
}

func pick[T any](change *T, existing T) T {
	if change != nil {
		return *change
	}
	return existing
}
