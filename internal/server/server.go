package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/ekinotomasyon/officepanel/internal/config"
	"github.com/ekinotomasyon/officepanel/internal/database"
	"github.com/ekinotomasyon/officepanel/internal/filestorage"
	"github.com/ekinotomasyon/officepanel/internal/firebase"
	"github.com/ekinotomasyon/officepanel/internal/geocode"
	"github.com/ekinotomasyon/officepanel/internal/queue"
	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

// Service is everything the HTTP layer needs from the panel.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	VerifyIDToken(context.Context, string) (string, error)
	Authenticate(context.Context, string) (usecase.Session, error)
	UIDPrefix() string

	ListAssets(context.Context, usecase.AssetFilter) ([]usecase.ClassifiedAsset, usecase.WarrantyStats, error)
	GetAssetDetail(context.Context, string, int) (usecase.AssetDetail, error)
	CreateAsset(context.Context, string, usecase.Asset, *usecase.Upload) (usecase.Asset, error)
	UpdateAsset(context.Context, string, usecase.Asset, *usecase.Upload) (usecase.Asset, error)
	DeleteAsset(context.Context, string) error
	GetContractURL(context.Context, string) (string, error)
	AssetQRCode(context.Context, string, int) ([]byte, error)

	ListLogs(context.Context, usecase.ListLogsOption) ([]usecase.Log, []usecase.LogGroup, error)
	CreateLog(context.Context, usecase.Log, *usecase.Upload) (usecase.Log, error)
	GetLogPhotoURL(context.Context, uint) (string, error)

	PickAssetLocation(context.Context, string, usecase.Location) (usecase.LocationView, error)
	ClearAssetLocation(context.Context, string) (usecase.LocationView, error)
	SearchAssetLocation(context.Context, string, string) (usecase.LocationView, error)
	Geocode(context.Context, string) []geocode.Place
}

type Server struct {
	server    Service
	validator *validator.Validate
	logger    *slog.Logger

	clientID    string
	serviceName string
	// optional, pinged by the health check
	redis redis.UniversalClient
}

func NewServer(sv Service, cfg config.Config, rdb redis.UniversalClient, logger *slog.Logger) *Server {
	return &Server{
		server:      sv,
		validator:   validator.New(),
		logger:      logger,
		clientID:    cfg.ClientID,
		serviceName: cfg.OTELServiceName,
		redis:       rdb,
	}
}

// App owns the HTTP server and every connection opened for it.
type App struct {
	http    *http.Server
	usecase usecase.Usecase
	queue   *queue.Client
	redis   *redis.Client
	logger  *slog.Logger
}

func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
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

	ip, err := firebase.New(ctx, cfg.FirebaseKeyPath)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to create identity provider: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to instrument redis: %w", err)
	}

	qc := queue.NewClient(cfg.RedisAddr, cfg.RedisPassword, logger)
	gc := geocode.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimRPS)

	// the digest is sent by the worker, the API needs no mailer
	uc := usecase.New(repo, ip, fsp, nil, qc, gc,
		usecase.WithLogger(logger),
		usecase.WithLocation(cfg.Location),
		usecase.WithUIDPrefix(cfg.UIDPrefix),
		usecase.WithBuckets(cfg.ContractsBucket, cfg.PhotosBucket),
	)

	s := NewServer(uc, cfg, rdb, logger)

	return &App{
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      s.RegisterRoutes(),
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		usecase: uc,
		queue:   qc,
		redis:   rdb,
		logger:  logger,
	}, nil
}

func (a *App) Addr() string {
	return a.http.Addr
}

func (a *App) ListenAndServe() error {
	err := a.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, then closes the queue, redis and
// database connections.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.http.Shutdown(ctx)
	return errors.Join(
		err,
		a.queue.Close(),
		a.redis.Close(),
		a.usecase.Close(),
	)
}
