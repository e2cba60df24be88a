// pkg/common/errors/api_error.go

/*
  - 使用实例
    // 业务层直接返回 *APIError:
    return errors.NewConflictError("username or email already exist", nil)

    // handler 层交给错误中间件统一输出:
    _ = c.Error(err)
*/
package errors

import (
	"fmt"
	"net/http"
)

// Kind 错误分类，调用方据此决定状态码
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindUpload     Kind = "upload"
	KindInternal   Kind = "internal"
	KindTimeout    Kind = "timeout"
)

// FieldError describes one failed input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the error type surfaced to clients. StatusCode and Message are
// rendered into the response envelope; the wrapped cause is only logged.
type APIError struct {
	StatusCode int
	Kind       Kind
	Message    string
	Errors     []FieldError
	cause      error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// Is matches on Kind so callers can test errors.Is(err, errors.ErrConflict).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.StatusCode == 0
}

// 仅用于 errors.Is 比较的哨兵值
var (
	ErrValidation = &APIError{Kind: KindValidation}
	ErrConflict   = &APIError{Kind: KindConflict}
	ErrUpload     = &APIError{Kind: KindUpload}
	ErrInternal   = &APIError{Kind: KindInternal}
	ErrTimeout    = &APIError{Kind: KindTimeout}
)

func NewValidationError(msg string, fields ...FieldError) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Kind: KindValidation, Message: msg, Errors: fields}
}

func NewConflictError(msg string, cause error) *APIError {
	return &APIError{StatusCode: http.StatusConflict, Kind: KindConflict, Message: msg, cause: cause}
}

// NewUploadError is used when a required asset could not be stored; it shares
// the conflict status code.
func NewUploadError(msg string, cause error) *APIError {
	return &APIError{StatusCode: http.StatusConflict, Kind: KindUpload, Message: msg, cause: cause}
}

func NewInternalError(msg string, cause error) *APIError {
	return &APIError{StatusCode: http.StatusInternalServerError, Kind: KindInternal, Message: msg, cause: cause}
}

func NewTimeoutError(cause error) *APIError {
	return &APIError{StatusCode: http.StatusServiceUnavailable, Kind: KindTimeout, Message: "request timed out", cause: cause}
}
