package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ekinotomasyon/officepanel/internal/config"
	"github.com/ekinotomasyon/officepanel/internal/database"
	"github.com/ekinotomasyon/officepanel/internal/email"
	"github.com/ekinotomasyon/officepanel/internal/filestorage"
	"github.com/ekinotomasyon/officepanel/internal/queue/handlers"
	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

// Worker processes queued tasks with all its dependencies
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	usecase usecase.Usecase
	logger  *slog.Logger
}

// NewWorker creates a fully configured worker with all dependencies
func NewWorker(cfg config.Config, logger *slog.Logger) (*Worker, error) {
	logger.Info("initializing worker dependencies")
	ctx := context.Background()

	gormDB, err := database.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	repo, err := database.New(gormDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	fsp, err := filestorage.FromConfig(ctx, cfg)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to create file storage: %w", err)
	}

	mp, err := email.NewEmailProvider(cfg.SMTPHost, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPPort)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	// workers don't enqueue, identity and geocoding stay unset
	uc := usecase.New(repo, nil, fsp, mp, nil, nil,
		usecase.WithLogger(logger),
		usecase.WithLocation(cfg.Location),
		usecase.WithBuckets(cfg.ContractsBucket, cfg.PhotosBucket),
		usecase.WithDigest(cfg.MailFrom, cfg.DigestRecipients),
	)

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger: asynqLogger{logger: logger},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.ErrorContext(ctx, "task failed",
					"type", task.Type(),
					"err", err)
			}),
		},
	)

	return &Worker{
		server:  server,
		mux:     NewServeMux(handlers.NewHandlers(uc, cfg.DigestDueDays, logger)),
		usecase: uc,
		logger:  logger,
	}, nil
}

// NewServeMux registers one handler per task type.
func NewServeMux(h *handlers.Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeStorageCleanup, h.HandleStorageCleanup)
	mux.HandleFunc(TypeWarrantyDigest, h.HandleWarrantyDigest)
	return mux
}

// Start starts the worker server
func (w *Worker) Start() error {
	w.logger.Info("worker started",
		"tasks", []string{TypeStorageCleanup, TypeWarrantyDigest})
	return w.server.Start(w.mux)
}

// Stop stops the worker server gracefully
func (w *Worker) Stop() {
	w.logger.Info("stopping worker")
	w.server.Shutdown()

	if err := w.usecase.Close(); err != nil {
		w.logger.Error("error closing database", "err", err)
	}
}
