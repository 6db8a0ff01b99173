package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNotificationData(t *testing.T) NotificationData {
	t.Helper()
	sent := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return NotificationData{
		Title:     "Welcome",
		Body:      "Hello there",
		Status:    NotificationSent,
		Category:  CategoryGeneral,
		Priority:  PriorityMedium,
		SentDate:  &sent,
		Sender:    newActor(t, 1, RoleAdmin),
		Recipient: newActor(t, 2, RoleGuest),
	}
}

func mustNotification(t *testing.T, id int64) *Notification {
	t.Helper()
	n, err := NewNotification(NotificationParams{
		AuditFields:      AuditFields{ID: id, CreatedDate: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		NotificationData: validNotificationData(t),
	})
	require.NoError(t, err)
	return n
}

func TestNewNotification_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *NotificationData)
		msg    string
	}{
		{"title", func(d *NotificationData) { d.Title = " " }, "Notification validation: Title is required"},
		{"body", func(d *NotificationData) { d.Body = "" }, "Notification validation: Body is required"},
		{"status", func(d *NotificationData) { d.Status = "Archived" }, "Notification validation: Status is invalid or missing."},
		{"category", func(d *NotificationData) { d.Category = "" }, "Notification validation: Category is invalid or missing."},
		{"priority", func(d *NotificationData) { d.Priority = "Urgent" }, "Notification validation: Priority is invalid or missing."},
		{"recipient", func(d *NotificationData) { d.Recipient = nil }, "Notification validation: Recipient is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validNotificationData(t)
			tt.mutate(&d)
			_, err := CreateNotification(nil, d)
			requireValidation(t, err, tt.msg)
		})
	}
}

func TestCreateNotification_SystemSenderOptional(t *testing.T) {
	d := validNotificationData(t)
	d.Sender = nil

	n, err := CreateNotification(nil, d)
	require.NoError(t, err)
	assert.Nil(t, n.Sender())
	assert.Nil(t, n.CreatedByID())
	assert.False(t, n.IsRead())
	assert.Nil(t, n.ToModel().SenderID)
}

func TestUpdateNotification_EmptyChanges(t *testing.T) {
	n := mustNotification(t, 7)
	actor := newActor(t, 2, RoleGuest)

	updated, err := UpdateNotification(actor, n, NotificationChanges{})
	require.NoError(t, err)
	assert.True(t, n.Equals(updated))
	assert.Equal(t, n.SentDate(), updated.SentDate())
	assert.Same(t, n.Sender(), updated.Sender())
	assert.Equal(t, n.ID(), updated.ID())
	assert.Equal(t, n.CreatedDate(), updated.CreatedDate())
	require.NotNil(t, updated.ModifiedByID())
	assert.Equal(t, int64(2), *updated.ModifiedByID())
}

func TestNotification_MarkRead(t *testing.T) {
	n := mustNotification(t, 7)
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	read, err := n.MarkRead(n.Recipient(), at)
	require.NoError(t, err)
	assert.Equal(t, NotificationRead, read.Status())
	require.NotNil(t, read.ReadDate())
	assert.Equal(t, at, *read.ReadDate())
	assert.True(t, read.IsRead())

	// 原实例不变
	assert.Equal(t, NotificationSent, n.Status())
	assert.False(t, n.IsRead())
}

func TestNotification_MarkReadRejectsNonRecipient(t *testing.T) {
	n := mustNotification(t, 7)
	stranger := newActor(t, 3, RoleAdmin)

	read, err := n.MarkRead(stranger, time.Now())
	assert.Nil(t, read)
	requireValidation(t, err, "You are not the recipient of this notification.")
	assert.Equal(t, NotificationSent, n.Status())

	_, err = n.MarkRead(nil, time.Now())
	requireValidation(t, err, "You are not the recipient of this notification.")
}

func TestNotification_ModelRoundTrip(t *testing.T) {
	n := mustNotification(t, 7)
	m := n.ToModel()

	assert.Equal(t, int64(2), m.RecipientID)
	require.NotNil(t, m.SenderID)
	assert.Equal(t, int64(1), *m.SenderID)

	// 仓储预加载关联后重建
	m.Sender = n.Sender().ToModel()
	m.Recipient = n.Recipient().ToModel()

	back, err := NotificationFromModel(m)
	require.NoError(t, err)
	assert.True(t, n.Equals(back))
	assert.Equal(t, n.SentDate(), back.SentDate())
	assert.Equal(t, n.ReadDate(), back.ReadDate())
	assert.Equal(t, n.AuditFields(), back.AuditFields())
	assert.True(t, n.Recipient().Equals(back.Recipient()))
	assert.True(t, n.Sender().Equals(back.Sender()))
}

func TestNotificationFromModel_RequiresRecipient(t *testing.T) {
	m := mustNotification(t, 7).ToModel()

	_, err := NotificationFromModel(m)
	requireValidation(t, err, "Notification validation: Recipient is required")
}

func TestNotification_MarshalJSON(t *testing.T) {
	n := mustNotification(t, 7)

	raw, err := json.Marshal(n)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Sent", out["status"])
	assert.NotContains(t, out, "readDate")
	recipient, ok := out["recipient"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, recipient, "passWord")
}
