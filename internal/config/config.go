package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Header constants.
const (
	HEADER_KEY_X_CLIENT_ID = "X-Client-Id"
	HEADER_KEY_X_UID       = "X-Uid"
)

const (
	ENV_KEY_APP_ENV      = "APP_ENV"
	ENV_KEY_PORT         = "PORT"
	ENV_KEY_LOG_LEVEL    = "LOG_LEVEL"
	ENV_KEY_APP_TIMEZONE = "APP_TIMEZONE"
	ENV_KEY_CLIENT_ID    = "CLIENT_ID"
	ENV_KEY_UID_PREFIX   = "UID_PREFIX"

	ENV_KEY_DB_DATABASE             = "DB_DATABASE"
	ENV_KEY_DB_PASSWORD             = "DB_PASSWORD"
	ENV_KEY_DB_USER                 = "DB_USER"
	ENV_KEY_DB_PORT                 = "DB_PORT"
	ENV_KEY_DB_HOST                 = "DB_HOST"
	ENV_KEY_DB_MAX_OPEN_CONNECTIONS = "DB_MAX_OPEN_CONNECTIONS"

	ENV_KEY_STORAGE_PROVIDER  = "STORAGE_PROVIDER"
	ENV_KEY_CONTRACTS_BUCKET  = "CONTRACTS_BUCKET"
	ENV_KEY_PHOTOS_BUCKET     = "PHOTOS_BUCKET"
	ENV_KEY_MINIO_ENDPOINT    = "MINIO_ENDPOINT"
	ENV_KEY_MINIO_ACCESS_KEY  = "MINIO_ACCESS_KEY"
	ENV_KEY_MINIO_SECRET_KEY  = "MINIO_SECRET_KEY"
	ENV_KEY_MINIO_USE_SSL     = "MINIO_USE_SSL"
	ENV_KEY_S3_ENDPOINT       = "S3_ENDPOINT"
	ENV_KEY_S3_USE_PATH_STYLE = "S3_USE_PATH_STYLE"

	ENV_KEY_FIREBASE_SERVICE_ACCOUNT_KEY_PATH = "FIREBASE_SERVICE_ACCOUNT_KEY_PATH"

	ENV_KEY_REDIS_HOST         = "REDIS_HOST"
	ENV_KEY_REDIS_PORT         = "REDIS_PORT"
	ENV_KEY_REDIS_PASSWORD     = "REDIS_PASSWORD"
	ENV_KEY_WORKER_CONCURRENCY = "WORKER_CONCURRENCY"

	ENV_KEY_SMTP_HOST         = "SMTP_HOST"
	ENV_KEY_SMTP_PORT         = "SMTP_PORT"
	ENV_KEY_SMTP_USERNAME     = "SMTP_USERNAME"
	ENV_KEY_SMTP_PASSWORD     = "SMTP_PASSWORD"
	ENV_KEY_MAIL_FROM         = "MAIL_FROM"
	ENV_KEY_DIGEST_RECIPIENTS = "DIGEST_RECIPIENTS"
	ENV_KEY_DIGEST_CRON       = "DIGEST_CRON"
	ENV_KEY_DIGEST_DUE_DAYS   = "DIGEST_DUE_DAYS"

	ENV_KEY_NOMINATIM_URL        = "NOMINATIM_URL"
	ENV_KEY_NOMINATIM_USER_AGENT = "NOMINATIM_USER_AGENT"
	ENV_KEY_NOMINATIM_RPS        = "NOMINATIM_RPS"

	ENV_KEY_OTEL_ENDPOINT     = "OTEL_EXPORTER_OTLP_ENDPOINT"
	ENV_KEY_OTEL_SERVICE_NAME = "OTEL_SERVICE_NAME"
)

// Signed URLs handed to the panel are valid for this many minutes.
const PRESIGN_URL_EXPIRE_MINUTES = 10

const (
	STORAGE_PROVIDER_MINIO = "minio"
	STORAGE_PROVIDER_S3    = "s3"
)

type ContextKey uint

const (
	_ ContextKey = iota
	CTX_KEY_SESSION
)

type Config struct {
	AppEnv    string
	Port      int
	LogLevel  string
	Location  *time.Location
	ClientID  string
	UIDPrefix string

	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBMaxOpenConns     int
	StorageProvider    string
	ContractsBucket    string
	PhotosBucket       string
	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	S3Endpoint         string
	S3UsePathStyle     bool
	FirebaseKeyPath    string
	RedisAddr          string
	RedisPassword      string
	WorkerConcurrency  int
	SMTPHost           string
	SMTPPort           string
	SMTPUser           string
	SMTPPassword       string
	MailFrom           string
	DigestRecipients   []string
	DigestCron         string
	DigestDueDays      int
	NominatimURL       string
	NominatimUserAgent string
	NominatimRPS       float64
	OTELEndpoint       string
	OTELServiceName    string
}

// Load reads the process environment (and .env, via godotenv) into a Config,
// applying defaults for everything optional.
func Load() Config {
	loc, err := time.LoadLocation(getenv(ENV_KEY_APP_TIMEZONE, "Europe/Istanbul"))
	if err != nil {
		loc = time.Local
	}

	return Config{
		AppEnv:    os.Getenv(ENV_KEY_APP_ENV),
		Port:      getint(ENV_KEY_PORT, 8080),
		LogLevel:  getenv(ENV_KEY_LOG_LEVEL, "INFO"),
		Location:  loc,
		ClientID:  os.Getenv(ENV_KEY_CLIENT_ID),
		UIDPrefix: getenv(ENV_KEY_UID_PREFIX, "EKINOTOMASYON-2026-06-"),

		DBHost:         os.Getenv(ENV_KEY_DB_HOST),
		DBPort:         getenv(ENV_KEY_DB_PORT, "5432"),
		DBUser:         os.Getenv(ENV_KEY_DB_USER),
		DBPassword:     os.Getenv(ENV_KEY_DB_PASSWORD),
		DBName:         os.Getenv(ENV_KEY_DB_DATABASE),
		DBMaxOpenConns: getint(ENV_KEY_DB_MAX_OPEN_CONNECTIONS, 0),

		StorageProvider: getenv(ENV_KEY_STORAGE_PROVIDER, STORAGE_PROVIDER_MINIO),
		ContractsBucket: getenv(ENV_KEY_CONTRACTS_BUCKET, "contracts"),
		PhotosBucket:    getenv(ENV_KEY_PHOTOS_BUCKET, "site-photos"),
		MinIOEndpoint:   os.Getenv(ENV_KEY_MINIO_ENDPOINT),
		MinIOAccessKey:  os.Getenv(ENV_KEY_MINIO_ACCESS_KEY),
		MinIOSecretKey:  os.Getenv(ENV_KEY_MINIO_SECRET_KEY),
		MinIOUseSSL:     getbool(ENV_KEY_MINIO_USE_SSL, true),
		S3Endpoint:      os.Getenv(ENV_KEY_S3_ENDPOINT),
		S3UsePathStyle:  getbool(ENV_KEY_S3_USE_PATH_STYLE, false),

		FirebaseKeyPath: os.Getenv(ENV_KEY_FIREBASE_SERVICE_ACCOUNT_KEY_PATH),

		RedisAddr:         getenv(ENV_KEY_REDIS_HOST, "localhost") + ":" + getenv(ENV_KEY_REDIS_PORT, "6379"),
		RedisPassword:     os.Getenv(ENV_KEY_REDIS_PASSWORD),
		WorkerConcurrency: getint(ENV_KEY_WORKER_CONCURRENCY, 5),

		SMTPHost:         os.Getenv(ENV_KEY_SMTP_HOST),
		SMTPPort:         getenv(ENV_KEY_SMTP_PORT, "587"),
		SMTPUser:         os.Getenv(ENV_KEY_SMTP_USERNAME),
		SMTPPassword:     os.Getenv(ENV_KEY_SMTP_PASSWORD),
		MailFrom:         getenv(ENV_KEY_MAIL_FROM, "panel@ekinotomasyon.com.tr"),
		DigestRecipients: getlist(ENV_KEY_DIGEST_RECIPIENTS),
		DigestCron:       getenv(ENV_KEY_DIGEST_CRON, "0 8 * * *"),
		DigestDueDays:    getint(ENV_KEY_DIGEST_DUE_DAYS, 30),

		NominatimURL:       getenv(ENV_KEY_NOMINATIM_URL, "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: getenv(ENV_KEY_NOMINATIM_USER_AGENT, "EkinOfficePanel/1.0 (contact: info@ekinotomasyon.com.tr)"),
		NominatimRPS:       getfloat(ENV_KEY_NOMINATIM_RPS, 1),

		OTELEndpoint:    os.Getenv(ENV_KEY_OTEL_ENDPOINT),
		OTELServiceName: getenv(ENV_KEY_OTEL_SERVICE_NAME, "officepanel"),
	}
}

func (c Config) IsLocal() bool {
	return c.AppEnv == "local"
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return def
}

func getbool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func getlist(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
