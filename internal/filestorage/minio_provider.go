package filestorage

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	// Region skips the bucket location lookup when set.
	Region string
}

func NewMinIOStorage(cfg MinIOConfig) (*MinIOStorage, error) {
	m, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return &MinIOStorage{client: m}, nil
}

type MinIOStorage struct {
	client *minio.Client
}

// EnsureBuckets creates the given buckets if they do not exist yet.
func (f *MinIOStorage) EnsureBuckets(ctx context.Context, buckets ...string) error {
	for _, b := range buckets {
		ok, err := f.client.BucketExists(ctx, b)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := f.client.MakeBucket(ctx, b, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func (f *MinIOStorage) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	_, err := f.client.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (f *MinIOStorage) RemoveObject(ctx context.Context, bucket, key string) error {
	return f.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func (f *MinIOStorage) GetPresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := f.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
