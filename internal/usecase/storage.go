package usecase

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ekinotomasyon/officepanel/internal/config"
)

// Upload is a file received from a form, not yet stored.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func isPDF(contentType string) bool {
	return contentType == "application/pdf"
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// validate is nil-safe: a missing upload is always valid.
func (up *Upload) validate(accept func(string) bool, invalid error) error {
	if up == nil {
		return nil
	}
	ct := up.ContentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if !accept(strings.ToLower(strings.TrimSpace(ct))) {
		return invalid
	}
	return nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func sanitizeFileName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// objectKey builds "<uid>/<kind>_<unix-ms>_<name>".
func objectKey(uid, kind, name string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%d_%s", uid, kind, now.UnixMilli(), sanitizeFileName(name))
}

func (u Usecase) upload(ctx context.Context, bucket, key string, up *Upload) error {
	err := u.fileStorageProvider.PutObject(ctx, bucket, key, up.Body, up.Size, up.ContentType)
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (u Usecase) signedURL(ctx context.Context, bucket, key string) (string, error) {
	url, err := u.fileStorageProvider.GetPresignedURL(
		ctx, bucket, key, config.PRESIGN_URL_EXPIRE_MINUTES*time.Minute)
	if err != nil {
		return "", fmt.Errorf("sign %s/%s: %w", bucket, key, err)
	}
	return url, nil
}

// discardObject undoes an upload whose row was never written. When the
// store refuses, the removal is retried later by the worker.
func (u Usecase) discardObject(ctx context.Context, bucket, key string) {
	err := u.fileStorageProvider.RemoveObject(context.WithoutCancel(ctx), bucket, key)
	if err == nil {
		return
	}
	u.logger.WarnContext(ctx, "failed to remove orphaned object",
		"bucket", bucket,
		"key", key,
		"err", err)
	u.scheduleCleanup(ctx, bucket, key)
}

func (u Usecase) scheduleCleanup(ctx context.Context, bucket, key string) {
	if u.dispatcher == nil {
		return
	}
	if err := u.dispatcher.EnqueueStorageCleanup(context.WithoutCancel(ctx), bucket, key); err != nil {
		u.logger.ErrorContext(ctx, "failed to enqueue storage cleanup",
			"bucket", bucket,
			"key", key,
			"err", err)
	}
}

// RemoveStoredObject deletes one object. The worker calls it for cleanup
// tasks.
func (u Usecase) RemoveStoredObject(ctx context.Context, bucket, key string) error {
	if err := u.fileStorageProvider.RemoveObject(ctx, bucket, key); err != nil {
		return fmt.Errorf("remove %s/%s: %w", bucket, key, err)
	}
	return nil
}
