// Package utils 提供业务错误分类（ErrorWrapper）及其 HTTP 状态映射
package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误码
const (
	CodeProvider   = "PROVIDER_ERROR"
	CodeNoData     = "NO_DATA"
	CodeValidation = "VALIDATION"
)

// 哨兵错误，配合 errors.Is 使用，只比较错误码
var (
	ErrProvider   = &ErrorWrapper{Code: CodeProvider, Message: "market data provider error"}
	ErrNoData     = &ErrorWrapper{Code: CodeNoData, Message: "no data"}
	ErrValidation = &ErrorWrapper{Code: CodeValidation, Message: "invalid request"}
)

// ErrorWrapper 带错误码的业务错误
type ErrorWrapper struct {
	Code    string
	Message string
	Details map[string]any
	Cause   error
}

// NewErrorWrapper 创建错误包装器
func NewErrorWrapper(code, message string, cause error) *ErrorWrapper {
	return &ErrorWrapper{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
		Cause:   cause,
	}
}

// NewProviderError 数据源返回了不可用的响应
func NewProviderError(message string, cause error) *ErrorWrapper {
	return NewErrorWrapper(CodeProvider, message, cause)
}

// NewNoDataError 所需数据在拉取之后仍然缺失
func NewNoDataError(message string) *ErrorWrapper {
	return NewErrorWrapper(CodeNoData, message, nil)
}

// NewValidationError 请求参数不合法
func NewValidationError(format string, args ...any) *ErrorWrapper {
	return NewErrorWrapper(CodeValidation, fmt.Sprintf(format, args...), nil)
}

// Error 实现 error 接口，只返回面向调用方的消息
func (e *ErrorWrapper) Error() string {
	return e.Message
}

func (e *ErrorWrapper) Unwrap() error {
	return e.Cause
}

// Is 按错误码匹配
func (e *ErrorWrapper) Is(target error) bool {
	t, ok := target.(*ErrorWrapper)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail 附加上下文字段
func (e *ErrorWrapper) WithDetail(key string, value any) *ErrorWrapper {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HTTPStatus 把错误映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrProvider):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
