package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"custify/backend/internal/model"
	"custify/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
	images *mockProfileImageRepo // 模拟 Preload("ProfileImage")
	err    error                 // 非空时所有方法返回该错误
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.UserName == user.UserName || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	cp := *user
	cp.ProfileImage = nil
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		return m.loaded(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUserName(_ context.Context, userName string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.UserName == userName })
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *mockUserRepo) ExistsByUserName(_ context.Context, userName string, excludeID int64) (bool, error) {
	return m.exists(func(u *model.User) bool { return u.UserName == userName }, excludeID)
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	return m.exists(func(u *model.User) bool { return u.Email == email }, excludeID)
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	cp := *user
	cp.ProfileImage = nil
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	all := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, *m.loaded(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if match(u) {
			return m.loaded(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) exists(match func(*model.User) bool, excludeID int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.ID != excludeID && match(u) {
			return true, nil
		}
	}
	return false, nil
}

// loaded 返回副本并挂上头像
func (m *mockUserRepo) loaded(u *model.User) *model.User {
	cp := *u
	if m.images != nil {
		if img, ok := m.images.images[u.ID]; ok {
			ic := *img
			cp.ProfileImage = &ic
		}
	}
	return &cp
}

// ── Mock ProfileImageRepository ──

type mockProfileImageRepo struct {
	images map[int64]*model.UserImage // key: user_id
	nextID int64
}

func newMockProfileImageRepo() *mockProfileImageRepo {
	return &mockProfileImageRepo{images: make(map[int64]*model.UserImage), nextID: 1}
}

func (m *mockProfileImageRepo) GetByUserID(_ context.Context, userID int64) (*model.UserImage, error) {
	if img, ok := m.images[userID]; ok {
		cp := *img
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// Upsert 与 ON CONFLICT (user_id) DO UPDATE 一致：冲突时保留 id 与创建信息
func (m *mockProfileImageRepo) Upsert(_ context.Context, image *model.UserImage) error {
	cp := *image
	if old, ok := m.images[image.UserID]; ok {
		cp.ID = old.ID
		cp.CreatedDate = old.CreatedDate
		cp.CreatedByID = old.CreatedByID
	} else {
		cp.ID = m.nextID
		m.nextID++
	}
	image.ID = cp.ID
	m.images[image.UserID] = &cp
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	items    map[int64]*model.Notification
	nextID   int64
	users    *mockUserRepo // 模拟 Preload("Sender") / Preload("Recipient")
	batchErr error
	batches  int
}

func newMockNotificationRepo(users *mockUserRepo) *mockNotificationRepo {
	return &mockNotificationRepo{items: make(map[int64]*model.Notification), nextID: 1, users: users}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.ID == 0 {
		n.ID = m.nextID
		m.nextID++
	}
	cp := *n
	cp.Sender, cp.Recipient = nil, nil
	m.items[n.ID] = &cp
	return nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id int64) (*model.Notification, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.loaded(ctx, n), nil
}

func (m *mockNotificationRepo) ListUnreadByRecipient(ctx context.Context, recipientID int64) ([]model.Notification, error) {
	var list []model.Notification
	for _, n := range m.items {
		if n.RecipientID == recipientID && n.ReadDate == nil {
			list = append(list, *m.loaded(ctx, n))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].SentDate, list[j].SentDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (m *mockNotificationRepo) Update(_ context.Context, n *model.Notification) error {
	cp := *n
	cp.Sender, cp.Recipient = nil, nil
	m.items[n.ID] = &cp
	return nil
}

func (m *mockNotificationRepo) UpdateBatch(ctx context.Context, ns []*model.Notification) error {
	m.batches++
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, n := range ns {
		_ = m.Update(ctx, n)
	}
	return nil
}

func (m *mockNotificationRepo) loaded(ctx context.Context, n *model.Notification) *model.Notification {
	cp := *n
	if n.SenderID != nil {
		cp.Sender, _ = m.users.GetByID(ctx, *n.SenderID)
	}
	cp.Recipient, _ = m.users.GetByID(ctx, n.RecipientID)
	return &cp
}

// ── Mock ErrorLogRepository ──

type mockErrorLogRepo struct {
	logs   map[int64]*model.ErrorLog
	nextID int64
	err    error
}

func newMockErrorLogRepo() *mockErrorLogRepo {
	return &mockErrorLogRepo{logs: make(map[int64]*model.ErrorLog), nextID: 1}
}

func (m *mockErrorLogRepo) Create(_ context.Context, log *model.ErrorLog) error {
	if m.err != nil {
		return m.err
	}
	if log.ID == 0 {
		log.ID = m.nextID
		m.nextID++
	}
	cp := *log
	m.logs[log.ID] = &cp
	return nil
}

func (m *mockErrorLogRepo) GetByID(_ context.Context, id int64) (*model.ErrorLog, error) {
	if l, ok := m.logs[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockErrorLogRepo) ListByStatus(_ context.Context, status string) ([]model.ErrorLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	var list []model.ErrorLog
	for _, l := range m.logs {
		if l.Status == status {
			list = append(list, *l)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedDate.Equal(list[j].CreatedDate) {
			return list[i].CreatedDate.After(list[j].CreatedDate)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (m *mockErrorLogRepo) Update(_ context.Context, log *model.ErrorLog) error {
	cp := *log
	m.logs[log.ID] = &cp
	return nil
}

func (m *mockErrorLogRepo) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for id, l := range m.logs {
		if l.Status == "Resolved" && l.ResolvedDate != nil && l.ResolvedDate.Before(cutoff) {
			delete(m.logs, id)
			n++
		}
	}
	return n, nil
}

// ── 测试仓储聚合 ──

type mockRepos struct {
	users         *mockUserRepo
	images        *mockProfileImageRepo
	notifications *mockNotificationRepo
	errorLogs     *mockErrorLogRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		users:     newMockUserRepo(),
		images:    newMockProfileImageRepo(),
		errorLogs: newMockErrorLogRepo(),
	}
	m.users.images = m.images
	m.notifications = newMockNotificationRepo(m.users)

	return &repository.Repository{
		User:         m.users,
		ProfileImage: m.images,
		Notification: m.notifications,
		ErrorLog:     m.errorLogs,
	}, m
}
