package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o600))
	return p
}

func TestObjectKey(t *testing.T) {
	now = func() time.Time { return time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	key := objectKey("accounts", ".png")
	assert.True(t, strings.HasPrefix(key, "accounts/2026/03/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, objectKey("accounts", ".png"))

	assert.True(t, strings.HasPrefix(objectKey("", ".jpg"), "2026/03/"))
}

func TestPrepareImage_FitsToMaxDimension(t *testing.T) {
	p := writePNG(t, t.TempDir(), "avatar.png", 100, 50)

	img, err := prepareImage(p, 20)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.contentType)
	assert.Equal(t, ".png", img.ext)

	decoded, err := png.Decode(bytes.NewReader(img.data))
	require.NoError(t, err)
	assert.Equal(t, 20, decoded.Bounds().Dx())
	assert.Equal(t, 10, decoded.Bounds().Dy())
}

func TestPrepareImage_UnknownExtensionEncodesPNG(t *testing.T) {
	dir := t.TempDir()
	p := writePNG(t, dir, "upload-1234", 8, 8)

	img, err := prepareImage(p, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.contentType)
}

func TestPrepareImage_Errors(t *testing.T) {
	_, err := prepareImage("", 0)
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = prepareImage(filepath.Join(t.TempDir(), "missing.png"), 0)
	assert.Error(t, err)

	notImage := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(notImage, []byte("hello"), 0o600))
	_, err = prepareImage(notImage, 0)
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestLocalUploader_UploadAndRemove(t *testing.T) {
	src := writePNG(t, t.TempDir(), "avatar.png", 10, 10)
	root := filepath.Join(t.TempDir(), "media")

	u, err := NewLocalUploader(root, "http://localhost:8080/media/", 0)
	require.NoError(t, err)
	require.NoError(t, u.Ping(context.Background()))

	asset, err := u.Upload(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/"+asset.Key, asset.URL)
	assert.Equal(t, "image/png", asset.ContentType)

	stored := filepath.Join(root, filepath.FromSlash(asset.Key))
	_, err = os.Stat(stored)
	require.NoError(t, err)

	require.NoError(t, u.Remove(context.Background(), asset))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// removing twice is not an error
	require.NoError(t, u.Remove(context.Background(), asset))
	require.NoError(t, u.Remove(context.Background(), nil))
}

func TestLocalUploader_CanceledContext(t *testing.T) {
	src := writePNG(t, t.TempDir(), "avatar.png", 4, 4)
	u, err := NewLocalUploader(t.TempDir(), "http://x", 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = u.Upload(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeStore struct {
	putIn   *s3.PutObjectInput
	body    []byte
	putErr  error
	deleted []string
	headErr error
}

func (f *fakeStore) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putIn = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeStore) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeStore) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3Uploader_Upload(t *testing.T) {
	src := writePNG(t, t.TempDir(), "cover.png", 6, 6)
	store := &fakeStore{}
	u := newS3Uploader(store, S3Options{
		Bucket:    "media",
		PublicURL: "https://cdn.example.com/",
		Prefix:    "accounts",
		Timeout:   time.Second,
	})

	asset, err := u.Upload(context.Background(), src)
	require.NoError(t, err)

	require.NotNil(t, store.putIn)
	assert.Equal(t, "media", aws.ToString(store.putIn.Bucket))
	assert.Equal(t, "image/png", aws.ToString(store.putIn.ContentType))
	assert.Equal(t, asset.Key, aws.ToString(store.putIn.Key))
	assert.True(t, strings.HasPrefix(asset.Key, "accounts/"))
	assert.Equal(t, "https://cdn.example.com/"+asset.Key, asset.URL)
	assert.Len(t, store.body, asset.Size)

	require.NoError(t, u.Remove(context.Background(), asset))
	assert.Equal(t, []string{asset.Key}, store.deleted)
}

func TestS3Uploader_PutFailure(t *testing.T) {
	src := writePNG(t, t.TempDir(), "cover.png", 6, 6)
	boom := errors.New("access denied")
	u := newS3Uploader(&fakeStore{putErr: boom}, S3Options{Bucket: "media"})

	asset, err := u.Upload(context.Background(), src)
	assert.Nil(t, asset)
	assert.ErrorIs(t, err, boom)
}

func TestS3Uploader_PublicURL(t *testing.T) {
	u := newS3Uploader(&fakeStore{}, S3Options{Bucket: "media", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/media/a/b.png", u.publicURL("a/b.png"))

	u = newS3Uploader(&fakeStore{}, S3Options{Bucket: "media"})
	assert.Equal(t, "https://media.s3.amazonaws.com/a/b.png", u.publicURL("a/b.png"))
}

func TestS3Uploader_Ping(t *testing.T) {
	boom := errors.New("no such bucket")
	u := newS3Uploader(&fakeStore{headErr: boom}, S3Options{Bucket: "media"})
	assert.ErrorIs(t, u.Ping(context.Background()), boom)
}
