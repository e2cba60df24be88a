package service

import (
	"context"
	"errors"
	"strings"

	apierr "account-hub/pkg/common/errors"
	"account-hub/pkg/core/account/model"
	"account-hub/pkg/core/account/repository/dao"
	"account-hub/pkg/core/media"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const (
	MsgFieldsRequired  = "All fields are required"
	MsgAccountExists   = "username or email already exist"
	MsgAvatarRequired  = "Avatar is required"
	MsgCreateFailed    = "Something went wrong while registering the user"
	MsgAccountCreated  = "User created successfully"
	msgFieldIsRequired = "is required"
)

// RegisterInput carries the raw request values. An empty AvatarPath means the
// avatar slot was absent; an empty CoverImagePath means no cover image.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	FullName       string
	AvatarPath     string
	CoverImagePath string
}

// ValidationResult lists every required field that was blank.
type ValidationResult struct {
	Failed []apierr.FieldError
}

func (r ValidationResult) OK() bool { return len(r.Failed) == 0 }

// ValidateRegistration checks each required text field on its own and
// collects all failures instead of stopping at the first one.
func ValidateRegistration(in RegisterInput) ValidationResult {
	fields := []struct {
		name  string
		value string
	}{
		{"username", in.Username},
		{"email", in.Email},
		{"password", in.Password},
		{"fullName", in.FullName},
	}

	var res ValidationResult
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			res.Failed = append(res.Failed, apierr.FieldError{Field: f.name, Message: msgFieldIsRequired})
		}
	}
	return res
}

type RegistrationService struct {
	accounts dao.AccountRepository
	uploader media.Uploader
}

func NewRegistrationService(accounts dao.AccountRepository, uploader media.Uploader) *RegistrationService {
	return &RegistrationService{accounts: accounts, uploader: uploader}
}

// Register runs the whole sign-up pipeline. Every returned error is an
// *apierr.APIError. Uploaded media is removed again if the insert fails.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*model.AccountView, error) {
	if res := ValidateRegistration(in); !res.OK() {
		return nil, apierr.NewValidationError(MsgFieldsRequired, res.Failed...)
	}

	username := model.NormalizeUsername(in.Username)
	email := strings.TrimSpace(in.Email)

	// 检查用户名或邮箱是否已存在
	existing, err := s.accounts.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, apierr.NewConflictError(MsgAccountExists, nil)
	case err != nil && !errors.Is(err, dao.ErrAccountNotFound):
		return nil, storeError(ctx, err)
	}

	if in.AvatarPath == "" {
		return nil, apierr.NewValidationError(MsgAvatarRequired,
			apierr.FieldError{Field: "avatar", Message: msgFieldIsRequired})
	}

	avatar, err := s.uploader.Upload(ctx, in.AvatarPath)
	if err != nil || avatar == nil || avatar.URL == "" {
		if timeout := apierr.FromContext(ctx); timeout != nil {
			return nil, timeout
		}
		if err == nil {
			err = media.ErrEmptyResult
		}
		hlog.CtxWarnf(ctx, "avatar upload failed username=%s: %v", username, err)
		return nil, apierr.NewUploadError(MsgAvatarRequired, err)
	}
	uploaded := []*media.Asset{avatar}

	coverURL := ""
	if in.CoverImagePath != "" {
		cover, err := s.uploader.Upload(ctx, in.CoverImagePath)
		switch {
		case err == nil && cover != nil && cover.URL != "":
			coverURL = cover.URL
			uploaded = append(uploaded, cover)
		case apierr.FromContext(ctx) != nil:
			s.cleanup(ctx, uploaded)
			return nil, apierr.FromContext(ctx)
		default:
			// 封面图可选，上传失败不阻断注册
			hlog.CtxWarnf(ctx, "cover image upload failed username=%s: %v", username, err)
		}
	}

	account := &model.Account{
		FullName:   strings.TrimSpace(in.FullName),
		Avatar:     avatar.URL,
		CoverImage: coverURL,
		Email:      email,
		Password:   in.Password,
		Username:   username,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		s.cleanup(ctx, uploaded)
		if errors.Is(err, dao.ErrDuplicateEntry) {
			return nil, apierr.NewConflictError(MsgAccountExists, err)
		}
		return nil, storeError(ctx, err)
	}

	// 账号已落库并引用了上传的图片，这里失败不做清理
	created, err := s.accounts.FindByID(ctx, account.ID, model.SensitiveColumns...)
	if err != nil || created == nil {
		if timeout := apierr.FromContext(ctx); timeout != nil {
			return nil, timeout
		}
		hlog.CtxErrorf(ctx, "account %d not readable after insert: %v", account.ID, err)
		return nil, apierr.NewInternalError(MsgCreateFailed, err)
	}

	hlog.CtxInfof(ctx, "account registered id=%d username=%s", created.ID, created.Username)
	return created.View(), nil
}

// cleanup removes assets that were uploaded for a registration that did not
// complete. Removal errors are logged only.
func (s *RegistrationService) cleanup(ctx context.Context, assets []*media.Asset) {
	// 请求上下文可能已超时，删除操作使用独立的上下文
	rmCtx := context.WithoutCancel(ctx)
	for _, a := range assets {
		if err := s.uploader.Remove(rmCtx, a); err != nil {
			hlog.CtxWarnf(ctx, "orphaned media asset key=%s url=%s: %v", a.Key, a.URL, err)
		}
	}
}

func storeError(ctx context.Context, err error) *apierr.APIError {
	if timeout := apierr.FromContext(ctx); timeout != nil {
		return timeout
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apierr.NewTimeoutError(err)
	}
	return apierr.NewInternalError(MsgCreateFailed, err)
}
