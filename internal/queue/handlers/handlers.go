package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

type Handlers struct {
	usecase usecase.Usecase
	dueDays int
	logger  *slog.Logger
}

func NewHandlers(uc usecase.Usecase, dueDays int, logger *slog.Logger) *Handlers {
	return &Handlers{
		usecase: uc,
		dueDays: dueDays,
		logger:  logger,
	}
}

type StorageCleanupPayload struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type WarrantyDigestPayload struct {
	DueDays int `json:"due_days"`
}

// HandleStorageCleanup removes an object whose record is gone or was never
// written.
func (h *Handlers) HandleStorageCleanup(ctx context.Context, task *asynq.Task) error {
	var p StorageCleanupPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.Bucket == "" || p.Key == "" {
		return fmt.Errorf("invalid payload: bucket and key required: %w", asynq.SkipRetry)
	}

	if err := h.usecase.RemoveStoredObject(ctx, p.Bucket, p.Key); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "stored object removed",
		"bucket", p.Bucket,
		"key", p.Key)
	return nil
}

// HandleWarrantyDigest mails the list of warranties running out soon.
func (h *Handlers) HandleWarrantyDigest(ctx context.Context, task *asynq.Task) error {
	p := WarrantyDigestPayload{DueDays: h.dueDays}
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	h.logger.InfoContext(ctx, "processing warranty digest", "due_days", p.DueDays)
	return h.usecase.SendWarrantyDigest(ctx, p.DueDays)
}
