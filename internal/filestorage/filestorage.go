package filestorage

import (
	"context"
	"fmt"

	"github.com/ekinotomasyon/officepanel/internal/config"
	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

// FromConfig builds the object store selected by STORAGE_PROVIDER. MinIO
// buckets are created on first start.
func FromConfig(ctx context.Context, cfg config.Config) (usecase.FileStorageProvider, error) {
	switch cfg.StorageProvider {
	case config.STORAGE_PROVIDER_MINIO:
		m, err := NewMinIOStorage(MinIOConfig{
			Endpoint:        cfg.MinIOEndpoint,
			AccessKeyID:     cfg.MinIOAccessKey,
			SecretAccessKey: cfg.MinIOSecretKey,
			UseSSL:          cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := m.EnsureBuckets(ctx, cfg.ContractsBucket, cfg.PhotosBucket); err != nil {
			return nil, fmt.Errorf("prepare buckets: %w", err)
		}
		return m, nil
	case config.STORAGE_PROVIDER_S3:
		return NewS3Storage(ctx, cfg.S3Endpoint, cfg.S3UsePathStyle)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}
