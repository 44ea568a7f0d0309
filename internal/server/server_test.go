package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ekinotomasyon/officepanel/internal/config"
	"github.com/ekinotomasyon/officepanel/internal/database"
	"github.com/ekinotomasyon/officepanel/internal/geocode"
	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

var testNow = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

const (
	adminToken  = "tok-admin"
	officeToken = "tok-office"
	clientID    = "internal-client"
)

type tokenVerifier map[string]string

func (v tokenVerifier) VerifyIDToken(_ context.Context, token string) (string, error) {
	uid, ok := v[token]
	if !ok {
		return "", errors.New("id token has invalid signature")
	}
	return uid, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string]string
}

func (s *memStorage) PutObject(_ context.Context, bucket, key string, body io.Reader, _ int64, contentType string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = contentType + ":" + string(b)
	return nil
}

func (s *memStorage) RemoveObject(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, bucket+"/"+key)
	return nil
}

func (s *memStorage) GetPresignedURL(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s/%s?expires=%s", bucket, key, expiry), nil
}

type stubSearcher struct {
	results []geocode.Result
	err     error
}

func (s *stubSearcher) Search(context.Context, geocode.Query) ([]geocode.Result, error) {
	return s.results, s.err
}

type testEnv struct {
	handler  http.Handler
	repo     usecase.Repository
	storage  *memStorage
	searcher *stubSearcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithSearcher(t, nil)
}

// newTestEnvWithSearcher builds the env around s instead of the stub
// searcher when s is not nil.
func newTestEnvWithSearcher(t *testing.T, s geocode.Searcher) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo, err := database.New(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, db.Create(&database.Profile{UserID: "boss", Role: "admin"}).Error)

	discard := slog.New(slog.DiscardHandler)
	env := &testEnv{
		repo:     repo,
		storage:  &memStorage{objects: map[string]string{}},
		searcher: &stubSearcher{},
	}

	var searcher geocode.Searcher = env.searcher
	if s != nil {
		searcher = s
	}

	uc := usecase.New(repo,
		tokenVerifier{adminToken: "boss", officeToken: "clerk"},
		env.storage, nil, nil, searcher,
		usecase.WithClock(func() time.Time { return testNow }),
		usecase.WithLocation(time.UTC),
		usecase.WithLogger(discard),
	)

	env.handler = NewServer(uc, config.Config{ClientID: clientID, OTELServiceName: "officepanel-test"}, nil, discard).RegisterRoutes()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(t, method, path, token, bytes.NewReader(b), "application/json")
}

func (e *testEnv) seed(t *testing.T, assets ...usecase.Asset) {
	t.Helper()
	for _, a := range assets {
		_, err := e.repo.CreateAsset(context.Background(), a)
		require.NoError(t, err)
	}
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Meta    *Meta  `json:"meta"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var v envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type filePart struct {
	field       string
	name        string
	contentType string
	body        string
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/assets", "", nil, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/login", body["redirect"])
	assert.Equal(t, "login required", body["message"])
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/me", "forged", nil, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid signature")
}

func TestGetMe(t *testing.T) {
	env := newTestEnv(t)

	t.Run("office user without profile", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/me", officeToken, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		me := decode[Me](t, rec).Data
		assert.Equal(t, "clerk", me.UserID)
		assert.Equal(t, "office", me.Role)
		assert.False(t, me.CanDelete)
		assert.Equal(t, "EKINOTOMASYON-2026-06-", me.UIDPrefix)
		assert.Equal(t, []int{7, 15, 30, 60}, me.DueThresholds)
	})

	t.Run("admin", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/me", adminToken, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		me := decode[Me](t, rec).Data
		assert.Equal(t, "admin", me.Role)
		assert.True(t, me.CanDelete)
	})
}

func TestInternalClientBypass(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set(config.HEADER_KEY_X_CLIENT_ID, clientID)
	req.Header.Set(config.HEADER_KEY_X_UID, "boss")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[Me](t, rec).Data.CanDelete)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set(config.HEADER_KEY_X_CLIENT_ID, "someone-else")
	req.Header.Set(config.HEADER_KEY_X_UID, "boss")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "up", stats["status"])
	assert.NotContains(t, stats, "redis")
}

func TestHealthRedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewServer(healthOnly{}, config.Config{}, rdb, slog.New(slog.DiscardHandler))
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}

// healthOnly reports a healthy database and nothing else.
type healthOnly struct {
	Service
}

func (healthOnly) Health() map[string]string {
	return map[string]string{"status": "up"}
}

func TestGeocodePassthrough(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.results = []geocode.Result{
		{DisplayName: "Konak, İzmir", Lat: "38.4189", Lon: "27.1287"},
		{DisplayName: "broken", Lat: "north", Lon: "27"},
	}

	rec := env.do(t, http.MethodGet, "/api/geocode?q=Konak", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Results []geocode.Place `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Konak, İzmir", body.Results[0].DisplayName)
	assert.Equal(t, 38.4189, body.Results[0].Lat)

	rec = env.do(t, http.MethodGet, "/api/geocode?q=ab", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())

	env.searcher.err = geocode.ErrUpstream
	rec = env.do(t, http.MethodGet, "/api/geocode?q="+strings.Repeat("x", 5), "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}
