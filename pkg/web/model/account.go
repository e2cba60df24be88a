package model

import (
	apierr "account-hub/pkg/common/errors"
)

// 请求/响应数据结构
type (
	// RegisterReq 注册表单字段；文件通过 multipart 的 avatar、coverImage 上传
	RegisterReq struct {
		Username string `form:"username" json:"username"`
		Email    string `form:"email" json:"email"`
		Password string `form:"password" json:"password"`
		FullName string `form:"fullName" json:"fullName"`
	}

	// APIResponse 统一响应信封，成功和失败共用同一结构
	APIResponse struct {
		StatusCode int                 `json:"statusCode"`
		Data       interface{}         `json:"data"`
		Message    string              `json:"message"`
		Success    bool                `json:"success"`
		Errors     []apierr.FieldError `json:"errors,omitempty"`
	}
)

func NewAPIResponse(statusCode int, data interface{}, message string) APIResponse {
	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	}
}

func NewErrorResponse(err *apierr.APIError) APIResponse {
	resp := NewAPIResponse(err.StatusCode, nil, err.Message)
	resp.Errors = err.Errors
	return resp
}
