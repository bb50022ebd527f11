// Package errors 提供统一的错误定义
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeUnknown      ErrorCode = "1000"
	CodeValidation   ErrorCode = "1001"
	CodeNotFound     ErrorCode = "1002"
	CodeInternal     ErrorCode = "1003"

	// 数据/制品错误 (2xxx)
	CodeCorruptArtifact   ErrorCode = "2001"
	CodeDimensionMismatch ErrorCode = "2002"

	// 外部工具错误 (3xxx)
	CodeExternalTool        ErrorCode = "3001"
	CodeTranscriptionFailed ErrorCode = "3002"
	CodeEmbeddingFailed     ErrorCode = "3003"
)

// AppError 应用错误
type AppError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Detail   string    `json:"detail,omitempty"`
	ExitCode int       `json:"-"`
	Err      error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 支持 errors.Is 按错误码匹配哨兵错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: codeToExitCode(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: codeToExitCode(code),
		Err:      err,
	}
}

// codeToExitCode 错误码转进程退出码
func codeToExitCode(code ErrorCode) int {
	switch code {
	case CodeValidation:
		return 2
	case CodeNotFound:
		return 3
	case CodeCorruptArtifact, CodeDimensionMismatch:
		return 4
	case CodeExternalTool, CodeTranscriptionFailed, CodeEmbeddingFailed:
		return 5
	default:
		return 1
	}
}

// 预定义错误
var (
	ErrValidation        = New(CodeValidation, "invalid configuration")
	ErrNotFound          = New(CodeNotFound, "not found")
	ErrCorruptArtifact   = New(CodeCorruptArtifact, "corrupt artifact")
	ErrDimensionMismatch = New(CodeDimensionMismatch, "embedding dimension mismatch")
	ErrExternalTool      = New(CodeExternalTool, "external tool failed")
)

// IsCode 检查错误链中是否存在指定错误码的 AppError
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
