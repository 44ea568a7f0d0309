package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ekinotomasyon/officepanel/internal/geocode"
)

func New(
	repo Repository,
	ip IdentityProvider,
	fsp FileStorageProvider,
	mailer Mailer,
	dispatcher TaskDispatcher,
	geocoder geocode.Searcher,
	opts ...Option,
) Usecase {
	u := Usecase{
		repo:                repo,
		identityProvider:    ip,
		fileStorageProvider: fsp,
		mailer:              mailer,
		dispatcher:          dispatcher,
		geocoder:            geocoder,
		logger:              slog.Default(),
		now:                 time.Now,
		location:            time.Local,
		uidPrefix:           "EKINOTOMASYON-2026-06-",
		contractsBucket:     "contracts",
		photosBucket:        "site-photos",
		locators:            newLocators(),
	}
	for _, o := range opts {
		o(&u)
	}
	return u
}

type Repository interface {
	Health() map[string]string
	Close() error

	ListAssets(context.Context) ([]Asset, error)
	GetAssetByUID(context.Context, string) (Asset, error)
	CreateAsset(context.Context, Asset) (Asset, error)
	UpdateAsset(context.Context, Asset) (Asset, error)
	UpdateAssetLocation(context.Context, string, *Location) error
	DeleteAsset(context.Context, string) error

	ListLogs(context.Context, ListLogsOption) ([]Log, error)
	GetLogByID(context.Context, uint) (Log, error)
	CreateLog(context.Context, Log) (Log, error)

	GetProfile(context.Context, string) (Profile, error)
}

type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, token string) (string, error)
}

type FileStorageProvider interface {
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	RemoveObject(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

type Mailer interface {
	SendEmail(ctx context.Context, email Email) error
}

// TaskDispatcher hands work to the background worker.
type TaskDispatcher interface {
	EnqueueStorageCleanup(ctx context.Context, bucket, key string) error
}

type Usecase struct {
	repo                Repository
	identityProvider    IdentityProvider
	fileStorageProvider FileStorageProvider
	mailer              Mailer
	dispatcher          TaskDispatcher
	geocoder            geocode.Searcher
	logger              *slog.Logger

	now      func() time.Time
	location *time.Location

	uidPrefix        string
	contractsBucket  string
	photosBucket     string
	mailFrom         string
	digestRecipients []string

	locators *locators
}

type Option func(*Usecase)

func WithLogger(l *slog.Logger) Option {
	return func(u *Usecase) { u.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) { u.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(u *Usecase) {
		if loc != nil {
			u.location = loc
		}
	}
}

func WithUIDPrefix(prefix string) Option {
	return func(u *Usecase) { u.uidPrefix = prefix }
}

func WithBuckets(contracts, photos string) Option {
	return func(u *Usecase) {
		u.contractsBucket = contracts
		u.photosBucket = photos
	}
}

func WithDigest(from string, recipients []string) Option {
	return func(u *Usecase) {
		u.mailFrom = from
		u.digestRecipients = recipients
	}
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}

// Today is the current calendar day in the panel's time zone.
func (u Usecase) Today() time.Time {
	return u.now().In(u.location)
}

func (u Usecase) UIDPrefix() string {
	return u.uidPrefix
}
