package errors

import (
	"context"
	"errors"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// region 错误处理工具函数

// FromError 将任意错误转换为可输出的 *APIError
// 参数说明：
//   - err: 业务层或框架层返回的错误
//
// 返回值：
//   - *APIError: nil 输入返回 nil
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTimeoutError(err)
	}

	// 框架绑定错误属于请求参数问题
	var hzErr *hzte.Error
	if errors.As(err, &hzErr) && hzErr.IsType(hzte.ErrorTypeBind) {
		return NewValidationError("invalid request body")
	}

	// 兜底处理：不向客户端暴露原始错误信息
	return NewInternalError("internal server error", err)
}

// FromContext returns a timeout error when ctx is done, nil otherwise.
func FromContext(ctx context.Context) *APIError {
	if err := ctx.Err(); err != nil {
		return NewTimeoutError(err)
	}
	return nil
}
