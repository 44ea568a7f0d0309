package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Client wraps asynq.Client for enqueuing tasks
type Client struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewClient creates a new queue client
func NewClient(redisAddr string, redisPassword string, logger *slog.Logger) *Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
	})

	return &Client{
		client: client,
		logger: logger,
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueStorageCleanup schedules the removal of a stored object. An
// identical task already waiting counts as success.
func (c *Client) EnqueueStorageCleanup(ctx context.Context, bucket, key string) error {
	task, err := NewStorageCleanupTask(bucket, key)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		c.logger.DebugContext(ctx, "storage cleanup already queued",
			"bucket", bucket,
			"key", key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	c.logger.InfoContext(ctx, "enqueued task",
		"id", info.ID,
		"type", info.Type,
		"queue", info.Queue)
	return nil
}
