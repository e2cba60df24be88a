package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// objectStore is the slice of the S3 client the uploader needs.
type objectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type S3Options struct {
	Region       string
	Endpoint     string // S3 兼容存储（MinIO、R2）的地址，为空时使用 AWS
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicURL    string
	UsePathStyle bool
	Prefix       string
	MaxDimension int
	Timeout      time.Duration
}

type S3Uploader struct {
	client objectStore
	opts   S3Options
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return newS3Uploader(client, opts), nil
}

func newS3Uploader(client objectStore, opts S3Options) *S3Uploader {
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")
	return &S3Uploader{client: client, opts: opts}
}

func (u *S3Uploader) Upload(ctx context.Context, localPath string) (*Asset, error) {
	img, err := prepareImage(localPath, u.opts.MaxDimension)
	if err != nil {
		return nil, err
	}

	if u.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.opts.Timeout)
		defer cancel()
	}

	key := objectKey(u.opts.Prefix, img.ext)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.data),
		ContentType: aws.String(img.contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	hlog.CtxInfof(ctx, "media uploaded bucket=%s key=%s size=%d", u.opts.Bucket, key, len(img.data))
	return &Asset{
		URL:         u.publicURL(key),
		Key:         key,
		ContentType: img.contentType,
		Size:        len(img.data),
	}, nil
}

func (u *S3Uploader) Remove(ctx context.Context, asset *Asset) error {
	if asset == nil || asset.Key == "" {
		return nil
	}
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.opts.Bucket),
		Key:    aws.String(asset.Key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", asset.Key, err)
	}
	return nil
}

func (u *S3Uploader) Ping(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.opts.Bucket)})
	return err
}

// Construct public URL
func (u *S3Uploader) publicURL(key string) string {
	switch {
	case u.opts.PublicURL != "":
		return fmt.Sprintf("%s/%s", u.opts.PublicURL, key)
	case u.opts.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.opts.Endpoint, "/"), u.opts.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.opts.Bucket, key)
	}
}
