// Package media stores uploaded images on a media host and hands back a
// durable URL for them.
package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyPath   = errors.New("media: empty local path")
	ErrNotAnImage  = errors.New("media: file is not a supported image")
	ErrEmptyResult = errors.New("media: upload returned no url")
)

// Asset is a stored object. Key identifies it to the backend for removal.
type Asset struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

type Uploader interface {
	// Upload stores the file at localPath and returns where it can be fetched.
	Upload(ctx context.Context, localPath string) (*Asset, error)
	// Remove deletes a previously uploaded asset.
	Remove(ctx context.Context, asset *Asset) error
}

// Pinger is implemented by backends that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

var now = time.Now

// objectKey builds prefix/yyyy/mm/<uuid><ext>.
func objectKey(prefix, ext string) string {
	d := now()
	name := fmt.Sprintf("%d/%02d/%s%s", d.Year(), d.Month(), uuid.New(), ext)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
