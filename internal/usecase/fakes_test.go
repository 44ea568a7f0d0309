package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ekinotomasyon/officepanel/internal/geocode"
)

type memRepo struct {
	mu        sync.Mutex
	assets    []Asset
	logs      []Log
	profiles  map[string]Profile
	nextLogID uint

	createAssetErr error
	createLogErr   error
}

func newMemRepo(assets ...Asset) *memRepo {
	return &memRepo{assets: assets, profiles: map[string]Profile{}}
}

func (r *memRepo) Health() map[string]string { return map[string]string{"status": "up"} }
func (r *memRepo) Close() error              { return nil }

func (r *memRepo) ListAssets(context.Context) ([]Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Asset(nil), r.assets...), nil
}

func (r *memRepo) GetAssetByUID(_ context.Context, uid string) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assets {
		if a.UID == uid {
			return a, nil
		}
	}
	return Asset{}, ErrNotFound
}

func (r *memRepo) CreateAsset(_ context.Context, a Asset) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createAssetErr != nil {
		return Asset{}, r.createAssetErr
	}
	for _, e := range r.assets {
		if e.UID == a.UID {
			return Asset{}, ErrDuplicate
		}
	}
	r.assets = append([]Asset{a}, r.assets...)
	return a, nil
}

func (r *memRepo) UpdateAsset(_ context.Context, a Asset) (Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.assets {
		if e.UID == a.UID {
			r.assets[i] = a
			return a, nil
		}
	}
	return Asset{}, ErrNotFound
}

func (r *memRepo) UpdateAssetLocation(_ context.Context, uid string, loc *Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.assets {
		if e.UID == uid {
			r.assets[i].Location = loc
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepo) DeleteAsset(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.assets {
		if e.UID == uid {
			r.assets = append(r.assets[:i], r.assets[i+1:]...)
			logs := r.logs[:0]
			for _, l := range r.logs {
				if l.UID != uid {
					logs = append(logs, l)
				}
			}
			r.logs = logs
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepo) ListLogs(_ context.Context, opt ListLogsOption) ([]Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Log
	for _, l := range r.logs {
		if l.UID == opt.UID {
			out = append(out, l)
		}
	}
	if opt.Limit > 0 && len(out) > opt.Limit {
		out = out[:opt.Limit]
	}
	return out, nil
}

func (r *memRepo) GetLogByID(_ context.Context, id uint) (Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return Log{}, ErrNotFound
}

func (r *memRepo) CreateLog(_ context.Context, l Log) (Log, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createLogErr != nil {
		return Log{}, r.createLogErr
	}
	r.nextLogID++
	l.ID = r.nextLogID
	r.logs = append([]Log{l}, r.logs...)
	return l, nil
}

func (r *memRepo) GetProfile(_ context.Context, userID string) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	putErr    error
	removeErr error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) PutObject(_ context.Context, bucket, key string, body io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = b
	return nil
}

func (s *memStorage) RemoveObject(_ context.Context, bucket, key string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, bucket+"/"+key)
	s.removed = append(s.removed, bucket+"/"+key)
	return nil
}

func (s *memStorage) GetPresignedURL(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + bucket + "/" + key + "?expires=" + expiry.String(), nil
}

type memDispatcher struct {
	mu    sync.Mutex
	tasks []string
}

func (d *memDispatcher) EnqueueStorageCleanup(_ context.Context, bucket, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, bucket+"/"+key)
	return nil
}

type memMailer struct {
	sent []Email
}

func (m *memMailer) SendEmail(_ context.Context, e Email) error {
	m.sent = append(m.sent, e)
	return nil
}

type searchFunc func(context.Context, geocode.Query) ([]geocode.Result, error)

func (f searchFunc) Search(ctx context.Context, q geocode.Query) ([]geocode.Result, error) {
	return f(ctx, q)
}

var errStore = errors.New("store unavailable")

// today is the fixed clock used across the usecase tests.
var today = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

type fixture struct {
	u          Usecase
	repo       *memRepo
	storage    *memStorage
	dispatcher *memDispatcher
	mailer     *memMailer
}

func newFixture(searcher geocode.Searcher, assets ...Asset) fixture {
	f := fixture{
		repo:       newMemRepo(assets...),
		storage:    newMemStorage(),
		dispatcher: &memDispatcher{},
		mailer:     &memMailer{},
	}
	f.u = New(f.repo, nil, f.storage, f.mailer, f.dispatcher, searcher,
		WithClock(func() time.Time { return today }),
		WithLocation(time.UTC),
		WithDigest("panel@test", []string{"office@test"}),
	)
	return f
}
