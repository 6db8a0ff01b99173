package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Type 错误分类，同时作为 ErrorLog.type 的取值
type Type string

const (
	TypeNotFound       Type = "Not Found"
	TypeValidation     Type = "Validation Error"
	TypeAuthentication Type = "Authentication Error"
)

// IsValidType 判断是否为合法错误分类
func IsValidType(t Type) bool {
	switch t {
	case TypeNotFound, TypeValidation, TypeAuthentication:
		return true
	}
	return false
}

// Severity 错误严重程度，同时作为 ErrorLog.severity 的取值
type Severity string

const (
	SeverityHandled       Severity = "Handled"
	SeverityUnhandled     Severity = "Unhandled"
	SeverityInputError    Severity = "Input Error"
	SeveritySystemError   Severity = "System Error"
	SeveritySecurityError Severity = "Security Error"
)

// IsValidSeverity 判断是否为合法严重程度
func IsValidSeverity(s Severity) bool {
	switch s {
	case SeverityHandled, SeverityUnhandled, SeverityInputError, SeveritySystemError, SeveritySecurityError:
		return true
	}
	return false
}

// 业务错误码（写入响应 code 字段）
const (
	CodeValidation     = 40001
	CodeAuthentication = 40002
	CodeNotFound       = 40401
)

// AppError 应用层可识别错误
// 在检测点同步创建，由请求边界统一分类、记录并映射为 HTTP 响应
type AppError struct {
	Type       Type
	Severity   Severity
	StatusCode int
	Code       int
	Message    string
	Stack      string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is 按分类比较，便于 errors.Is(err, &AppError{Type: TypeValidation})
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

func newAppError(t Type, sev Severity, status, code int, msg string) *AppError {
	return &AppError{
		Type:       t,
		Severity:   sev,
		StatusCode: status,
		Code:       code,
		Message:    msg,
		Stack:      captureStack(4),
	}
}

// NewValidationError 输入缺失/格式错误或实体不变量被破坏
func NewValidationError(format string, args ...any) *AppError {
	return newAppError(TypeValidation, SeverityInputError, http.StatusBadRequest, CodeValidation, sprintf(format, args...))
}

// NewAuthenticationError 凭据错误或注册时身份冲突
func NewAuthenticationError(format string, args ...any) *AppError {
	return newAppError(TypeAuthentication, SeveritySecurityError, http.StatusBadRequest, CodeAuthentication, sprintf(format, args...))
}

// NewNotFoundError 引用的 id 或唯一键不存在
func NewNotFoundError(format string, args ...any) *AppError {
	return newAppError(TypeNotFound, SeverityHandled, http.StatusNotFound, CodeNotFound, sprintf(format, args...))
}

// ErrStorage 持久层失败的统一对外错误，原始错误仅记录在服务端日志
var ErrStorage = stderrors.New("Database error. See server log for details.")

// As 提取 *AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsValidation 是否为 ValidationError
func IsValidation(err error) bool { return isType(err, TypeValidation) }

// IsAuthentication 是否为 AuthenticationError
func IsAuthentication(err error) bool { return isType(err, TypeAuthentication) }

// IsNotFound 是否为 NotFoundError
func IsNotFound(err error) bool { return isType(err, TypeNotFound) }

func isType(err error, t Type) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// captureStack 记录创建点调用栈，格式与常见 "at func (file:line)" 堆栈一致
func captureStack(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.") {
			break
		}
		fmt.Fprintf(&b, "    at %s (%s:%d)\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
