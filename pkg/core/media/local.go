package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// LocalUploader keeps media on local disk; the router serves that directory
// under the public BaseURL. Meant for development and single-node deployments.
type LocalUploader struct {
	dir          string
	baseURL      string
	maxDimension int
}

func NewLocalUploader(dir, baseURL string, maxDimension int) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create dir %s: %w", dir, err)
	}
	return &LocalUploader{
		dir:          dir,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxDimension: maxDimension,
	}, nil
}

func (u *LocalUploader) Upload(ctx context.Context, localPath string) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := prepareImage(localPath, u.maxDimension)
	if err != nil {
		return nil, err
	}

	key := objectKey("", img.ext)
	dst := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("media: create dir: %w", err)
	}
	if err := os.WriteFile(dst, img.data, 0o644); err != nil {
		return nil, fmt.Errorf("media: write %s: %w", dst, err)
	}

	hlog.CtxDebugf(ctx, "media stored locally key=%s size=%d", key, len(img.data))
	return &Asset{
		URL:         u.baseURL + "/" + key,
		Key:         key,
		ContentType: img.contentType,
		Size:        len(img.data),
	}, nil
}

func (u *LocalUploader) Remove(ctx context.Context, asset *Asset) error {
	if asset == nil || asset.Key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(u.dir, filepath.FromSlash(asset.Key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("media: remove %s: %w", asset.Key, err)
	}
	return nil
}

func (u *LocalUploader) Ping(ctx context.Context) error {
	info, err := os.Stat(u.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("media: %s is not a directory", u.dir)
	}
	return nil
}
