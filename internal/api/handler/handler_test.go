package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"custify/backend/internal/api/middleware"
	"custify/backend/internal/dto"
	"custify/backend/internal/entity"
	"custify/backend/internal/service"
	apperrors "custify/backend/pkg/errors"
	"custify/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult    *dto.AuthResponse
	loginErr       error
	registerResult *dto.AuthResponse
	registerErr    error
	logoutErr      error
	logoutJTI      string
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.AuthResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}

// ── Mock UserService ──

type mockUserService struct {
	user      *entity.User
	users     []*entity.User
	total     int64
	err       error
	gotActor  int64
	gotTarget int64
}

func (m *mockUserService) Current(_ context.Context, actorID int64) (*entity.User, error) {
	m.gotActor = actorID
	return m.user, m.err
}
func (m *mockUserService) GetByID(_ context.Context, id int64) (*entity.User, error) {
	m.gotTarget = id
	return m.user, m.err
}
func (m *mockUserService) List(_ context.Context, _ *dto.UserListRequest) ([]*entity.User, int64, error) {
	return m.users, m.total, m.err
}
func (m *mockUserService) Update(_ context.Context, actorID, id int64, _ *dto.UpdateUserRequest) (*entity.User, error) {
	m.gotActor, m.gotTarget = actorID, id
	return m.user, m.err
}
func (m *mockUserService) ChangePassword(_ context.Context, actorID int64, _ *dto.ChangePasswordRequest) (*entity.User, error) {
	m.gotActor = actorID
	return m.user, m.err
}
func (m *mockUserService) ChangeRole(_ context.Context, actorID, id int64, _ string) (*entity.User, error) {
	m.gotActor, m.gotTarget = actorID, id
	return m.user, m.err
}
func (m *mockUserService) ChangeStatus(_ context.Context, actorID, id int64, _ string) (*entity.User, error) {
	m.gotActor, m.gotTarget = actorID, id
	return m.user, m.err
}

func (m *mockUserService) EnsureAdmin(_ context.Context) (*entity.User, bool, error) {
	return m.user, false, m.err
}

// ── Mock NotificationService ──

type mockNotificationService struct {
	list       []*entity.Notification
	one        *entity.Notification
	markAllN   int
	err        error
	gotRequest *dto.CreateNotificationRequest
}

func (m *mockNotificationService) Inbox(_ context.Context, _ int64) ([]*entity.Notification, error) {
	return m.list, m.err
}
func (m *mockNotificationService) GetByID(_ context.Context, _, _ int64) (*entity.Notification, error) {
	return m.one, m.err
}
func (m *mockNotificationService) Create(_ context.Context, _ int64, req *dto.CreateNotificationRequest) (*entity.Notification, error) {
	m.gotRequest = req
	return m.one, m.err
}
func (m *mockNotificationService) MarkAsRead(_ context.Context, _, _ int64) (*entity.Notification, error) {
	return m.one, m.err
}
func (m *mockNotificationService) MarkAllAsRead(_ context.Context, _ int64) (int, error) {
	return m.markAllN, m.err
}

// ── Mock ErrorLogService ──

type mockErrorLogService struct {
	logs      []*entity.ErrorLog
	err       error
	gotStatus string
	deleted   int64
}

func (m *mockErrorLogService) Capture(_ context.Context, _ service.CaptureInput) (*entity.ErrorLog, error) {
	return nil, nil
}
func (m *mockErrorLogService) List(_ context.Context, status string) ([]*entity.ErrorLog, error) {
	m.gotStatus = status
	return m.logs, m.err
}
func (m *mockErrorLogService) GetByID(_ context.Context, _ int64) (*entity.ErrorLog, error) {
	return nil, m.err
}
func (m *mockErrorLogService) UpdateStatus(_ context.Context, _, _ int64, status string) (*entity.ErrorLog, error) {
	m.gotStatus = status
	return nil, m.err
}
func (m *mockErrorLogService) PurgeResolved(_ context.Context) (int64, time.Time, error) {
	return m.deleted, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), m.err
}
func (m *mockErrorLogService) RunRetention(_ context.Context, _ time.Duration) {}

// ── Mock ExportService ──

type mockExportService struct {
	buf       *bytes.Buffer
	filename  string
	err       error
	gotStatus string
}

func (m *mockExportService) ExportErrorLogs(_ context.Context, status string) (*bytes.Buffer, string, error) {
	m.gotStatus = status
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

func setAuth(c *gin.Context) {
	c.Set(middleware.CtxUserID, int64(7))
	c.Set(middleware.CtxRole, "Admin")
	c.Set(middleware.CtxTokenJTI, "test-jti")
	c.Set(middleware.CtxTokenExp, time.Now().Add(15*time.Minute))
}

// withAuth 注入认证信息后调用 handler
func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func testUser(t *testing.T) *entity.User {
	t.Helper()
	u, err := entity.NewUser(entity.UserParams{
		AuditFields: entity.AuditFields{ID: 7, CreatedDate: time.Now().UTC(), ModifiedDate: time.Now().UTC()},
		UserName:    "alice",
		FirstName:   "Alice",
		LastName:    "Smith",
		Email:       "alice@custify.test",
		PassWord:    "$2a$04$hash",
		Role:        entity.RoleGuest,
		Status:      entity.StatusActive,
	})
	if err != nil {
		t.Fatalf("构造测试用户失败: %v", err)
	}
	return u
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{loginResult: &dto.AuthResponse{Token: "test-token", ExpiresIn: 28800, User: testUser(t)}}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{UserName: "alice", PassWord: "pw"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	if strings.Contains(w.Body.String(), "hash") {
		t.Error("response must not contain the password hash")
	}
	if !strings.Contains(w.Body.String(), `"fullName":"Alice Smith"`) {
		t.Errorf("expected fullName in body, got %s", w.Body.String())
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != apperrors.CodeValidation {
		t.Errorf("expected code %d, got %d", apperrors.CodeValidation, resp.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: apperrors.NewAuthenticationError("Invalid credentials.")}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{UserName: "alice", PassWord: "wrong"}))
	req.Header.Set("Content-Type", "application/json")

	// 错误应记录到上下文，供 ErrorCapture 使用
	var recorded int
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		recorded = len(c.Errors)
	})
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != apperrors.CodeAuthentication {
		t.Errorf("expected code %d, got %d", apperrors.CodeAuthentication, resp.Code)
	}
	if resp.Message != "Invalid credentials." {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if recorded != 1 {
		t.Errorf("expected 1 recorded error, got %d", recorded)
	}
}

func TestAuthHandler_Register_Created(t *testing.T) {
	mock := &mockAuthService{registerResult: &dto.AuthResponse{Token: "t", User: testUser(t)}}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		UserName: "alice", FirstName: "Alice", LastName: "Smith", Email: "alice@custify.test", PassWord: "pw",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		UserName: "alice", Email: "not-an-email",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_PassesJTI(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", withAuth(h.Logout))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/users/me", nil)

	r := gin.New()
	r.GET("/users/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestUserHandler_GetCurrentUser_Success(t *testing.T) {
	mock := &mockUserService{user: testUser(t)}
	h := NewUserHandler(mock, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/users/me", nil)

	r := gin.New()
	r.GET("/users/me", withAuth(h.GetCurrentUser))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.gotActor != 7 {
		t.Errorf("expected actor 7, got %d", mock.gotActor)
	}
}

func TestUserHandler_GetUser_InvalidID(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/users/abc", nil)

	r := gin.New()
	r.GET("/users/:id", withAuth(h.GetUser))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "Invalid id <abc>." {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestUserHandler_GetUser_NotFound(t *testing.T) {
	mock := &mockUserService{err: apperrors.NewNotFoundError("User with id <%d> does not exist.", 42)}
	h := NewUserHandler(mock, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/users/42", nil)

	r := gin.New()
	r.GET("/users/:id", withAuth(h.GetUser))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != apperrors.CodeNotFound || resp.Message != "User with id <42> does not exist." {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestUserHandler_StorageErrorHidesDetails(t *testing.T) {
	mock := &mockUserService{err: apperrors.ErrStorage}
	h := NewUserHandler(mock, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/users/1", nil)

	r := gin.New()
	r.GET("/users/:id", withAuth(h.GetUser))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "Database error. See server log for details." {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestUserHandler_ListUsers_Pagination(t *testing.T) {
	mock := &mockUserService{users: []*entity.User{testUser(t)}, total: 41}
	h := NewUserHandler(mock, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/users?page=2&pageSize=20", nil)

	r := gin.New()
	r.GET("/users", withAuth(h.ListUsers))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data response.PageData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := body.Data.Pagination
	if p.Page != 2 || p.PageSize != 20 || p.Total != 41 || p.TotalPages != 3 {
		t.Errorf("unexpected pagination %+v", p)
	}
}

func TestUserHandler_UpdateUser_PassesActorAndTarget(t *testing.T) {
	mock := &mockUserService{user: testUser(t)}
	h := NewUserHandler(mock, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/users/9", jsonBody(map[string]string{"firstName": "Al"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/users/:id", withAuth(h.UpdateUser))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.gotActor != 7 || mock.gotTarget != 9 {
		t.Errorf("expected actor 7 target 9, got %d %d", mock.gotActor, mock.gotTarget)
	}
}

func TestUserHandler_ChangeRole_MissingBody(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/users/9/role", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/users/:id/role", withAuth(h.ChangeRole))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestBindJSON_BodyTooLarge(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, nil)

	_, _, w := setupGin()
	// 非 bytes.Reader 的请求体没有 Content-Length，由 MaxBytesReader 在读取时拦截
	body := io.MultiReader(strings.NewReader(`{"firstName":"`), strings.NewReader(strings.Repeat("a", 256)+`"}`))
	req := httptest.NewRequest("PUT", "/users/7", body)
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.Use(middleware.BodyLimit(64))
	r.PUT("/users/:id", withAuth(h.UpdateUser))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// NotificationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestNotificationHandler_MarkAllAsRead_NothingUnread(t *testing.T) {
	mock := &mockNotificationService{err: apperrors.NewNotFoundError("You have no unread messages.")}
	h := NewNotificationHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/notifications/read-all", nil)

	r := gin.New()
	r.PUT("/notifications/read-all", withAuth(h.MarkAllAsRead))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestNotificationHandler_MarkAllAsRead_Count(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{markAllN: 3})

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/notifications/read-all", nil)

	r := gin.New()
	r.PUT("/notifications/read-all", withAuth(h.MarkAllAsRead))
	r.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"updated":3`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestNotificationHandler_Create_RequiresRecipient(t *testing.T) {
	mock := &mockNotificationService{}
	h := NewNotificationHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/notifications", jsonBody(map[string]string{"title": "hi"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/notifications", withAuth(h.CreateNotification))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.gotRequest != nil {
		t.Error("service must not be called on bind failure")
	}
}

// ═══════════════════════════════════════════════════════════
// ErrorLogHandler / ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestErrorLogHandler_List_DefaultStatus(t *testing.T) {
	mock := &mockErrorLogService{}
	h := NewErrorLogHandler(mock, 90)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/error-logs", nil)

	r := gin.New()
	r.GET("/error-logs", withAuth(h.ListErrorLogs))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.gotStatus != "New" {
		t.Errorf("expected status New, got %q", mock.gotStatus)
	}
}

func TestErrorLogHandler_List_InvalidStatus(t *testing.T) {
	mock := &mockErrorLogService{}
	h := NewErrorLogHandler(mock, 90)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/error-logs?status=Archived", nil)

	r := gin.New()
	r.GET("/error-logs", withAuth(h.ListErrorLogs))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.gotStatus != "" {
		t.Error("service must not be called with an invalid status")
	}
}

func TestErrorLogHandler_PurgeResolved(t *testing.T) {
	h := NewErrorLogHandler(&mockErrorLogService{deleted: 4}, 90)

	_, _, w := setupGin()
	req := httptest.NewRequest("DELETE", "/error-logs/resolved", nil)

	r := gin.New()
	r.DELETE("/error-logs/resolved", withAuth(h.PurgeResolved))
	r.ServeHTTP(w, req)

	body := w.Body.String()
	for _, want := range []string{`"deleted":4`, `"retentionDays":90`, `"cutoff":"2026-01-01T00:00:00Z"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in body %s", want, body)
		}
	}
}

func TestExportHandler_ExportErrorLogs(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "error_logs_Resolved_20260101.xlsx"}
	h := NewExportHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/error-logs/export?status=Resolved", nil)

	r := gin.New()
	r.GET("/error-logs/export", withAuth(h.ExportErrorLogs))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotStatus != "Resolved" {
		t.Errorf("expected status Resolved, got %q", mock.gotStatus)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "error_logs_Resolved_20260101.xlsx") {
		t.Errorf("unexpected disposition %q", cd)
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHealthHandler_NoDatabase(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/health", nil)

	r := gin.New()
	r.GET("/health", h.Health)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"redis":"disabled"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}
