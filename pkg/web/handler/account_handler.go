// ----------- pkg/web/handler/account_handler.go -----------
package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"account-hub/pkg/common/config"
	apierr "account-hub/pkg/common/errors"
	accountmodel "account-hub/pkg/core/account/model"
	"account-hub/pkg/core/account/service"
	"account-hub/pkg/web/model"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
)

const (
	avatarField     = "avatar"
	coverImageField = "coverImage"
)

// Registrar is the registration workflow as seen by the transport.
type Registrar interface {
	Register(ctx context.Context, in service.RegisterInput) (*accountmodel.AccountView, error)
}

type AccountHandler struct {
	Registrar   Registrar
	TempDir     string
	MaxFileSize int64
}

func NewAccountHandler(registrar Registrar, cfg *config.Config) (*AccountHandler, error) {
	if err := os.MkdirAll(cfg.Upload.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload temp dir: %w", err)
	}
	return &AccountHandler{
		Registrar:   registrar,
		TempDir:     cfg.Upload.TempDir,
		MaxFileSize: cfg.Upload.MaxFileSize,
	}, nil
}

func (h *AccountHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		_ = c.Error(apierr.NewValidationError("invalid request body"))
		return
	}

	// 上传文件先落盘到临时目录，请求结束后删除
	uploads, err := h.saveUploads(c)
	defer uploads.cleanup(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	view, err := h.Registrar.Register(ctx, service.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		AvatarPath:     uploads.paths[avatarField],
		CoverImagePath: uploads.paths[coverImageField],
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, model.NewAPIResponse(http.StatusCreated, view, service.MsgAccountCreated))
}

type savedUploads struct {
	paths map[string]string
}

func (s *savedUploads) cleanup(ctx context.Context) {
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			hlog.CtxWarnf(ctx, "failed to remove temp upload %s: %v", p, err)
		}
	}
}

// saveUploads stores the first file of each known slot under TempDir. A
// request that is not multipart simply has no files.
func (h *AccountHandler) saveUploads(c *app.RequestContext) (*savedUploads, error) {
	saved := &savedUploads{paths: map[string]string{}}

	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return saved, nil
	}

	for _, field := range []string{avatarField, coverImageField} {
		fh := firstFile(form, field)
		if fh == nil {
			continue
		}
		if h.MaxFileSize > 0 && fh.Size > h.MaxFileSize {
			return saved, apierr.NewValidationError("uploaded file is too large",
				apierr.FieldError{Field: field, Message: fmt.Sprintf("must be at most %d bytes", h.MaxFileSize)})
		}

		dst := filepath.Join(h.TempDir, uuid.NewString()+filepath.Ext(fh.Filename))
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			return saved, apierr.NewInternalError("failed to store upload", err)
		}
		saved.paths[field] = dst
	}
	return saved, nil
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	files, ok := form.File[field]
	if !ok || len(files) == 0 {
		return nil
	}
	return files[0]
}
