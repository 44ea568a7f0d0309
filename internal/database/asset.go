package database

import (
	"context"
	"strings"
	"time"

	"github.com/ekinotomasyon/officepanel/internal/usecase"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Asset struct {
	UID             string          `gorm:"column:uid;primaryKey;type:varchar(255)"`
	CustomerName    *string         `gorm:"column:customer_name;type:varchar(255)"`
	CustomerPhone   *string         `gorm:"column:customer_phone;type:varchar(50)"`
	ProductType     *string         `gorm:"column:product_type;type:varchar(255)"`
	ProductModel    *string         `gorm:"column:product_model;type:varchar(255)"`
	Size            *string         `gorm:"column:size;type:varchar(100)"`
	Motor           *string         `gorm:"column:motor;type:varchar(255)"`
	Extras          *string         `gorm:"column:extras;type:text"`
	Payments        *string         `gorm:"column:payments;type:text"`
	InstallDate     *datatypes.Date `gorm:"column:install_date"`
	JobType         *string         `gorm:"column:job_type;type:varchar(50);index"`
	Address         *string         `gorm:"column:address;type:text"`
	InstallerName   *string         `gorm:"column:installer_name;type:varchar(255)"`
	InstallerPhone  *string         `gorm:"column:installer_phone;type:varchar(50)"`
	Latitude        *float64        `gorm:"column:latitude"`
	Longitude       *float64        `gorm:"column:longitude"`
	WarrantyEnd     *datatypes.Date `gorm:"column:warranty_end;index"`
	ContractPDFPath *string         `gorm:"column:contract_pdf_path;type:varchar(512)"`
	CreatedAt       time.Time       `gorm:"column:created_at;index"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (Asset) TableName() string {
	return "assets"
}

func (s *service) ListAssets(ctx context.Context) ([]usecase.Asset, error) {
	var assets []Asset

	err := s.db.WithContext(ctx).
		Model([]Asset{}).
		Order("created_at DESC").
		Order("uid DESC").
		Find(&assets).
		Error
	if err != nil {
		return nil, err
	}

	list := make([]usecase.Asset, 0, len(assets))
	for _, a := range assets {
		list = append(list, a.ConvertToUsecase())
	}
	return list, nil
}

func (s *service) GetAssetByUID(ctx context.Context, uid string) (usecase.Asset, error) {
	var a Asset

	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&a).Error
	if err != nil {
		return usecase.Asset{}, translate(err)
	}
	return a.ConvertToUsecase(), nil
}

func (s *service) CreateAsset(ctx context.Context, asset usecase.Asset) (usecase.Asset, error) {
	a := convertFromUsecase(asset)

	err := s.db.WithContext(ctx).Create(&a).Error
	if err != nil {
		return usecase.Asset{}, translate(err)
	}
	return a.ConvertToUsecase(), nil
}

// UpdateAsset overwrites every column except the key and created_at, so
// emptied fields are stored as NULL.
func (s *service) UpdateAsset(ctx context.Context, asset usecase.Asset) (usecase.Asset, error) {
	a := convertFromUsecase(asset)

	res := s.db.WithContext(ctx).
		Model(&Asset{UID: a.UID}).
		Select("*").
		Omit("uid", "created_at").
		Updates(&a)
	if res.Error != nil {
		return usecase.Asset{}, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return usecase.Asset{}, usecase.ErrNotFound
	}

	return s.GetAssetByUID(ctx, a.UID)
}

func (s *service) UpdateAssetLocation(ctx context.Context, uid string, loc *usecase.Location) error {
	var lat, lng any
	if loc != nil {
		lat, lng = loc.Lat, loc.Lng
	}

	res := s.db.WithContext(ctx).
		Model(&Asset{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"latitude":  lat,
			"longitude": lng,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

// DeleteAsset removes the asset and its logs in one transaction.
func (s *service) DeleteAsset(ctx context.Context, uid string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uid = ?", uid).Delete(&Log{}).Error; err != nil {
			return err
		}

		res := tx.Where("uid = ?", uid).Delete(&Asset{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrNotFound
		}
		return nil
	})
}

// ConvertToUsecase is the parse boundary for asset rows: NULL text becomes
// "", the job type is normalised when known and kept verbatim otherwise,
// and a location needs both coordinates.
func (a Asset) ConvertToUsecase() usecase.Asset {
	jt := usecase.JobType(deref(a.JobType))
	if parsed, ok := usecase.ParseJobType(string(jt)); ok {
		jt = parsed
	}

	var loc *usecase.Location
	if a.Latitude != nil && a.Longitude != nil {
		loc = &usecase.Location{Lat: *a.Latitude, Lng: *a.Longitude}
	}

	return usecase.Asset{
		UID:            a.UID,
		CustomerName:   deref(a.CustomerName),
		CustomerPhone:  deref(a.CustomerPhone),
		ProductType:    deref(a.ProductType),
		ProductModel:   deref(a.ProductModel),
		Size:           deref(a.Size),
		Motor:          deref(a.Motor),
		Extras:         deref(a.Extras),
		Payments:       deref(a.Payments),
		InstallDate:    fromDate(a.InstallDate),
		JobType:        jt,
		Address:        deref(a.Address),
		InstallerName:  deref(a.InstallerName),
		InstallerPhone: deref(a.InstallerPhone),
		Location:       loc,
		WarrantyEnd:    fromDate(a.WarrantyEnd),
		ContractPath:   deref(a.ContractPDFPath),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func convertFromUsecase(a usecase.Asset) Asset {
	row := Asset{
		UID:             a.UID,
		CustomerName:    ref(a.CustomerName),
		CustomerPhone:   ref(a.CustomerPhone),
		ProductType:     ref(a.ProductType),
		ProductModel:    ref(a.ProductModel),
		Size:            ref(a.Size),
		Motor:           ref(a.Motor),
		Extras:          ref(a.Extras),
		Payments:        ref(a.Payments),
		InstallDate:     toDate(a.InstallDate),
		JobType:         ref(string(a.JobType)),
		Address:         ref(a.Address),
		InstallerName:   ref(a.InstallerName),
		InstallerPhone:  ref(a.InstallerPhone),
		WarrantyEnd:     toDate(a.WarrantyEnd),
		ContractPDFPath: ref(a.ContractPath),
		CreatedAt:       a.CreatedAt,
	}
	if a.Location != nil {
		row.Latitude = &a.Location.Lat
		row.Longitude = &a.Location.Lng
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ref stores blank text as NULL.
func ref(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	return &d
}

func fromDate(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	if t.IsZero() {
		return nil
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}
