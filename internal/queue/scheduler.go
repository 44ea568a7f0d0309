package queue

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ekinotomasyon/officepanel/internal/config"
)

// Scheduler enqueues periodic tasks
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

func NewScheduler(cfg config.Config, logger *slog.Logger) (*Scheduler, error) {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		},
		&asynq.SchedulerOpts{
			Location: cfg.Location,
			Logger:   asynqLogger{logger: logger},
		},
	)

	task, err := NewWarrantyDigestTask(cfg.DigestDueDays)
	if err != nil {
		return nil, err
	}
	id, err := scheduler.Register(cfg.DigestCron, task)
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", TypeWarrantyDigest, err)
	}
	logger.Info("registered periodic task",
		"id", id,
		"type", TypeWarrantyDigest,
		"cron", cfg.DigestCron)

	return &Scheduler{scheduler: scheduler, logger: logger}, nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.scheduler.Shutdown()
}
