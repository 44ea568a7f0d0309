package queue

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekinotomasyon/officepanel/internal/queue/handlers"
	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

type recordingStorage struct {
	removed []string
}

func (r *recordingStorage) PutObject(context.Context, string, string, io.Reader, int64, string) error {
	return nil
}

func (r *recordingStorage) RemoveObject(_ context.Context, bucket, key string) error {
	r.removed = append(r.removed, bucket+"/"+key)
	return nil
}

func (r *recordingStorage) GetPresignedURL(context.Context, string, string, time.Duration) (string, error) {
	return "", nil
}

func TestNewStorageCleanupTask(t *testing.T) {
	task, err := NewStorageCleanupTask("site-photos", "A/photo_1_p.jpg")
	require.NoError(t, err)

	assert.Equal(t, TypeStorageCleanup, task.Type())

	var p handlers.StorageCleanupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, handlers.StorageCleanupPayload{Bucket: "site-photos", Key: "A/photo_1_p.jpg"}, p)
}

func TestNewWarrantyDigestTask(t *testing.T) {
	task, err := NewWarrantyDigestTask(15)
	require.NoError(t, err)

	assert.Equal(t, TypeWarrantyDigest, task.Type())
	assert.JSONEq(t, `{"due_days":15}`, string(task.Payload()))
}

func TestServeMuxRoutesCleanup(t *testing.T) {
	rs := &recordingStorage{}
	uc := usecase.New(nil, nil, rs, nil, nil, nil)
	mux := NewServeMux(handlers.NewHandlers(uc, 30, slog.New(slog.DiscardHandler)))

	task, err := NewStorageCleanupTask("contracts", "A/contract_1_c.pdf")
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"contracts/A/contract_1_c.pdf"}, rs.removed)
}
