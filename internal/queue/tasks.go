package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ekinotomasyon/officepanel/internal/queue/handlers"
)

const (
	TypeStorageCleanup = "storage:cleanup"
	TypeWarrantyDigest = "warranty:digest"
)

// Queue names, by priority.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// NewStorageCleanupTask removes one stored object. The task id is derived
// from the object, so the same object is never queued twice.
func NewStorageCleanupTask(bucket, key string) (*asynq.Task, error) {
	b, err := json.Marshal(handlers.StorageCleanupPayload{Bucket: bucket, Key: key})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeStorageCleanup, b,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(10),
		asynq.TaskID(TypeStorageCleanup+":"+bucket+"/"+key),
	), nil
}

func NewWarrantyDigestTask(dueDays int) (*asynq.Task, error) {
	b, err := json.Marshal(handlers.WarrantyDigestPayload{DueDays: dueDays})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeWarrantyDigest, b, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
