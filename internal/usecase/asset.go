package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

type Location struct {
	Lat float64
	Lng float64
}

type Asset struct {
	UID            string
	CustomerName   string
	CustomerPhone  string
	ProductType    string
	ProductModel   string
	Size           string
	Motor          string
	Extras         string
	Payments       string
	InstallDate    *time.Time
	JobType        JobType
	Address        string
	InstallerName  string
	InstallerPhone string
	Location       *Location
	WarrantyEnd    *time.Time
	ContractPath   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MapURL links the asset's location to Google Maps, empty when unknown.
func (a Asset) MapURL() string {
	if a.Location == nil {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", a.Location.Lat, a.Location.Lng)
}

const FilterAll = "ALL"

// AssetFilter narrows the record list. JobType and Warranty accept FilterAll
// (or empty) to disable that predicate.
type AssetFilter struct {
	Query    string
	JobType  string
	Warranty string
	DueDays  int
}

// FilterAssets keeps the assets matching every predicate of f, in input order.
func FilterAssets(assets []Asset, f AssetFilter, today time.Time) []Asset {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Asset, 0, len(assets))
	for _, a := range assets {
		if q != "" &&
			!strings.Contains(strings.ToLower(a.UID), q) &&
			!strings.Contains(strings.ToLower(a.CustomerName), q) &&
			!strings.Contains(strings.ToLower(a.CustomerPhone), q) {
			continue
		}

		if f.JobType != "" && f.JobType != FilterAll && string(a.JobType) != f.JobType {
			continue
		}

		if f.Warranty != "" && f.Warranty != FilterAll &&
			string(ClassifyWarranty(a.WarrantyEnd, f.DueDays, today).Status) != f.Warranty {
			continue
		}

		out = append(out, a)
	}
	return out
}

type ClassifiedAsset struct {
	Asset
	Warranty Warranty
}

func classify(assets []Asset, dueDays int, today time.Time) []ClassifiedAsset {
	list := make([]ClassifiedAsset, 0, len(assets))
	for _, a := range assets {
		list = append(list, ClassifiedAsset{
			Asset:    a,
			Warranty: ClassifyWarranty(a.WarrantyEnd, dueDays, today),
		})
	}
	return list
}

// ListAssets fetches every asset once, newest first, and derives both the
// counters (over the full list) and the filtered view from that one read.
func (u Usecase) ListAssets(ctx context.Context, f AssetFilter) ([]ClassifiedAsset, WarrantyStats, error) {
	if f.DueDays <= 0 {
		f.DueDays = DefaultDueDays
	}

	assets, err := u.repo.ListAssets(ctx)
	if err != nil {
		return nil, WarrantyStats{}, err
	}

	today := u.Today()
	stats := CountWarranty(assets, f.DueDays, today)
	filtered := FilterAssets(assets, f, today)

	return classify(filtered, f.DueDays, today), stats, nil
}

type AssetDetail struct {
	Asset     Asset
	Warranty  Warranty
	Logs      []Log
	LogGroups []LogGroup
	CanDelete bool
}

const DetailLogLimit = 200

func (u Usecase) GetAssetDetail(ctx context.Context, uid string, dueDays int) (AssetDetail, error) {
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}

	var (
		asset Asset
		logs  []Log
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asset, err = u.repo.GetAssetByUID(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = u.repo.ListLogs(gctx, ListLogsOption{UID: uid, Limit: DetailLogLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return AssetDetail{}, err
	}

	session, _ := SessionFromContext(ctx)

	return AssetDetail{
		Asset:     asset,
		Warranty:  ClassifyWarranty(asset.WarrantyEnd, dueDays, u.Today()),
		Logs:      logs,
		LogGroups: GroupLogs(logs),
		CanDelete: session.CanDelete(),
	}, nil
}

// BuildUID joins the fixed prefix with the digits of suffix.
func (u Usecase) BuildUID(suffix string) (string, error) {
	var b strings.Builder
	for _, r := range suffix {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", ErrUIDRequired
	}
	return u.uidPrefix + b.String(), nil
}

func validateAsset(a *Asset) error {
	if a.InstallDate == nil {
		return ErrInstallDateRequired
	}
	jt, ok := ParseJobType(string(a.JobType))
	if a.JobType == "" {
		jt, ok = JobTypeInstallation, true
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidJobType, a.JobType)
	}
	a.JobType = jt
	return nil
}

// CreateAsset stores the optional contract first and the row second. If the
// row cannot be written the uploaded contract is removed again.
func (u Usecase) CreateAsset(ctx context.Context, uidSuffix string, a Asset, contract *Upload) (Asset, error) {
	uid, err := u.BuildUID(uidSuffix)
	if err != nil {
		return Asset{}, err
	}
	a.UID = uid

	if err := validateAsset(&a); err != nil {
		return Asset{}, err
	}
	if err := contract.validate(isPDF, ErrInvalidContract); err != nil {
		return Asset{}, err
	}

	a.ContractPath = ""
	if contract != nil {
		key := objectKey(uid, "contract", contract.Name, u.now())
		if err := u.upload(ctx, u.contractsBucket, key, contract); err != nil {
			return Asset{}, err
		}
		a.ContractPath = key
	}

	created, err := u.repo.CreateAsset(ctx, a)
	if err != nil {
		if a.ContractPath != "" {
			u.discardObject(ctx, u.contractsBucket, a.ContractPath)
		}
		return Asset{}, err
	}
	return created, nil
}

// UpdateAsset replaces the editable fields of uid. A nil WarrantyEnd keeps
// the stored one; a nil Location clears it.
func (u Usecase) UpdateAsset(ctx context.Context, uid string, a Asset, contract *Upload) (Asset, error) {
	if err := validateAsset(&a); err != nil {
		return Asset{}, err
	}
	if err := contract.validate(isPDF, ErrInvalidContract); err != nil {
		return Asset{}, err
	}

	existing, err := u.repo.GetAssetByUID(ctx, uid)
	if err != nil {
		return Asset{}, err
	}

	a.UID = existing.UID
	a.CreatedAt = existing.CreatedAt
	a.ContractPath = existing.ContractPath
	if a.WarrantyEnd == nil {
		a.WarrantyEnd = existing.WarrantyEnd
	}

	var uploaded string
	if contract != nil {
		key := objectKey(uid, "contract", contract.Name, u.now())
		if err := u.upload(ctx, u.contractsBucket, key, contract); err != nil {
			return Asset{}, err
		}
		uploaded = key
		a.ContractPath = key
	}

	updated, err := u.repo.UpdateAsset(ctx, a)
	if err != nil {
		if uploaded != "" {
			u.discardObject(ctx, u.contractsBucket, uploaded)
		}
		return Asset{}, err
	}
	if uploaded != "" && existing.ContractPath != "" {
		u.scheduleCleanup(ctx, u.contractsBucket, existing.ContractPath)
	}
	return updated, nil
}

// DeleteAsset removes the asset and its logs. Only sessions holding the
// delete capability may call it. Stored files are cleaned up afterwards by
// the worker.
func (u Usecase) DeleteAsset(ctx context.Context, uid string) error {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return ErrNoSession
	}
	if !session.CanDelete() {
		return ErrForbidden
	}

	asset, err := u.repo.GetAssetByUID(ctx, uid)
	if err != nil {
		return err
	}
	logs, err := u.repo.ListLogs(ctx, ListLogsOption{UID: uid})
	if err != nil {
		return err
	}

	if err := u.repo.DeleteAsset(ctx, uid); err != nil {
		return err
	}

	if asset.ContractPath != "" {
		u.scheduleCleanup(ctx, u.contractsBucket, asset.ContractPath)
	}
	for _, l := range logs {
		if l.PhotoPath != "" {
			u.scheduleCleanup(ctx, u.photosBucket, l.PhotoPath)
		}
	}

	u.logger.InfoContext(ctx, "asset deleted",
		"uid", uid,
		"logs", len(logs),
		"user_id", session.UserID)
	return nil
}

func (u Usecase) GetContractURL(ctx context.Context, uid string) (string, error) {
	asset, err := u.repo.GetAssetByUID(ctx, uid)
	if err != nil {
		return "", err
	}
	if asset.ContractPath == "" {
		return "", ErrNoContract
	}
	return u.signedURL(ctx, u.contractsBucket, asset.ContractPath)
}

// SetAssetLocation writes a location (or clears it with nil) straight to
// the store.
func (u Usecase) SetAssetLocation(ctx context.Context, uid string, loc *Location) error {
	err := u.repo.UpdateAssetLocation(ctx, uid, loc)
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update location of %s: %w", uid, err)
	}
	return nil
}
