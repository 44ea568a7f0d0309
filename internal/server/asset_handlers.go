package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Warranty struct {
	Status   string `json:"status"`
	DaysLeft *int   `json:"days_left"`
	Label    string `json:"label"`
}

type WarrantyStats struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
	Due     int `json:"due"`
	Active  int `json:"active"`
	NoDate  int `json:"nodate"`
}

type Asset struct {
	UID            string    `json:"uid"`
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone"`
	ProductType    string    `json:"product_type,omitempty"`
	ProductModel   string    `json:"product_model,omitempty"`
	Size           string    `json:"size,omitempty"`
	Motor          string    `json:"motor,omitempty"`
	Extras         string    `json:"extras,omitempty"`
	Payments       string    `json:"payments,omitempty"`
	InstallDate    *string   `json:"install_date"`
	JobType        string    `json:"job_type"`
	JobTypeLabel   string    `json:"job_type_label"`
	Address        string    `json:"address,omitempty"`
	InstallerName  string    `json:"installer_name,omitempty"`
	InstallerPhone string    `json:"installer_phone,omitempty"`
	Location       *Location `json:"location"`
	MapURL         string    `json:"map_url,omitempty"`
	WarrantyEnd    *string   `json:"warranty_end"`
	HasContract    bool      `json:"has_contract"`
	Warranty       *Warranty `json:"warranty,omitempty"`
	CreatedAt      string    `json:"created_at"`
	UpdatedAt      string    `json:"updated_at"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func toLocation(l *usecase.Location) *Location {
	if l == nil {
		return nil
	}
	return &Location{Lat: l.Lat, Lng: l.Lng}
}

func toWarranty(w usecase.Warranty) *Warranty {
	return &Warranty{
		Status:   string(w.Status),
		DaysLeft: w.DaysLeft,
		Label:    w.Label,
	}
}

func toAsset(a usecase.Asset) Asset {
	return Asset{
		UID:            a.UID,
		CustomerName:   a.CustomerName,
		CustomerPhone:  a.CustomerPhone,
		ProductType:    a.ProductType,
		ProductModel:   a.ProductModel,
		Size:           a.Size,
		Motor:          a.Motor,
		Extras:         a.Extras,
		Payments:       a.Payments,
		InstallDate:    formatDate(a.InstallDate),
		JobType:        string(a.JobType),
		JobTypeLabel:   a.JobType.Label(),
		Address:        a.Address,
		InstallerName:  a.InstallerName,
		InstallerPhone: a.InstallerPhone,
		Location:       toLocation(a.Location),
		MapURL:         a.MapURL(),
		WarrantyEnd:    formatDate(a.WarrantyEnd),
		HasContract:    a.ContractPath != "",
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
}

type ListAssetsRequest struct {
	Q        string `query:"q"`
	JobType  string `query:"job_type" validate:"omitempty,oneof=ALL MONTAJ ARIZA BAKIM SATIS"`
	Warranty string `query:"warranty" validate:"omitempty,oneof=ALL EXPIRED DUE ACTIVE NODATE"`
	DueDays  int    `query:"due_days" validate:"omitempty,oneof=7 15 30 60"`
}

func (s *Server) ListAssets(ctx echo.Context) error {
	var req = ListAssetsRequest{DueDays: usecase.DefaultDueDays}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	list, stats, err := s.server.ListAssets(ctx.Request().Context(), usecase.AssetFilter{
		Query:    req.Q,
		JobType:  req.JobType,
		Warranty: req.Warranty,
		DueDays:  req.DueDays,
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	assets := make([]Asset, 0, len(list))
	for _, a := range list {
		asset := toAsset(a.Asset)
		asset.Warranty = toWarranty(a.Warranty)
		assets = append(assets, asset)
	}

	return ctx.JSON(200, Res{
		Data: assets,
		Meta: &Meta{
			Total:   len(assets),
			DueDays: req.DueDays,
			Stats: &WarrantyStats{
				Total:   stats.Total,
				Expired: stats.Expired,
				Due:     stats.Due,
				Active:  stats.Active,
				NoDate:  stats.NoDate,
			},
		},
	})
}

type AssetDetail struct {
	Asset     Asset      `json:"asset"`
	Logs      []Log      `json:"logs"`
	LogGroups []LogGroup `json:"log_groups"`
	CanDelete bool       `json:"can_delete"`
}

type GetAssetByUIDRequest struct {
	UID     string `param:"uid" validate:"required"`
	DueDays int    `query:"due_days" validate:"omitempty,oneof=7 15 30 60"`
}

func (s *Server) GetAssetByUID(ctx echo.Context) error {
	var req GetAssetByUIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	d, err := s.server.GetAssetDetail(ctx.Request().Context(), req.UID, req.DueDays)
	if err != nil {
		return s.fail(ctx, err)
	}

	asset := toAsset(d.Asset)
	asset.Warranty = toWarranty(d.Warranty)

	return ctx.JSON(200, Res{
		Data: AssetDetail{
			Asset:     asset,
			Logs:      toLogs(d.Logs),
			LogGroups: toLogGroups(d.LogGroups),
			CanDelete: d.CanDelete,
		},
	})
}

// AssetForm is the multipart body of the new and edit forms. Dates are
// YYYY-MM-DD, coordinates are decimal degrees.
type AssetForm struct {
	CustomerName   string `form:"customer_name"`
	CustomerPhone  string `form:"customer_phone"`
	ProductType    string `form:"product_type"`
	ProductModel   string `form:"product_model"`
	Size           string `form:"size"`
	Motor          string `form:"motor"`
	Extras         string `form:"extras"`
	Payments       string `form:"payments"`
	InstallDate    string `form:"install_date" validate:"omitempty,datetime=2006-01-02"`
	JobType        string `form:"job_type"`
	Address        string `form:"address"`
	InstallerName  string `form:"installer_name"`
	InstallerPhone string `form:"installer_phone"`
	Lat            string `form:"lat" validate:"omitempty,latitude"`
	Lng            string `form:"lng" validate:"omitempty,longitude"`
	WarrantyEnd    string `form:"warranty_end" validate:"omitempty,datetime=2006-01-02"`
}

func parseDate(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

// parseLocation reads an optional coordinate pair; both halves or neither.
func parseLocation(lat, lng string) (*usecase.Location, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, usecase.ErrLocationIncomplete
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, usecase.ErrLocationIncomplete
	}
	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, usecase.ErrLocationIncomplete
	}
	return &usecase.Location{Lat: la, Lng: lo}, nil
}

func (f AssetForm) toUsecase() (usecase.Asset, error) {
	loc, err := parseLocation(f.Lat, f.Lng)
	if err != nil {
		return usecase.Asset{}, err
	}

	return usecase.Asset{
		CustomerName:   f.CustomerName,
		CustomerPhone:  f.CustomerPhone,
		ProductType:    f.ProductType,
		ProductModel:   f.ProductModel,
		Size:           f.Size,
		Motor:          f.Motor,
		Extras:         f.Extras,
		Payments:       f.Payments,
		InstallDate:    parseDate(f.InstallDate),
		JobType:        usecase.JobType(strings.TrimSpace(f.JobType)),
		Address:        f.Address,
		InstallerName:  f.InstallerName,
		InstallerPhone: f.InstallerPhone,
		Location:       loc,
		WarrantyEnd:    parseDate(f.WarrantyEnd),
	}, nil
}

type CreateAssetRequest struct {
	UIDSuffix string `form:"uid_suffix"`
	AssetForm
}

func (s *Server) CreateAsset(ctx echo.Context) error {
	var req CreateAssetRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	a, err := req.toUsecase()
	if err != nil {
		return s.fail(ctx, err)
	}

	contract, closeContract, err := formUpload(ctx, "contract")
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	defer closeContract()

	created, err := s.server.CreateAsset(ctx.Request().Context(), req.UIDSuffix, a, contract)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(201, Res{Data: toAsset(created)})
}

type UpdateAssetRequest struct {
	UID string `param:"uid" validate:"required"`
	AssetForm
}

func (s *Server) UpdateAsset(ctx echo.Context) error {
	var req UpdateAssetRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	a, err := req.toUsecase()
	if err != nil {
		return s.fail(ctx, err)
	}

	contract, closeContract, err := formUpload(ctx, "contract")
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	defer closeContract()

	updated, err := s.server.UpdateAsset(ctx.Request().Context(), req.UID, a, contract)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(200, Res{Data: toAsset(updated)})
}

type DeleteAssetRequest struct {
	UID string `param:"uid" validate:"required"`
}

func (s *Server) DeleteAsset(ctx echo.Context) error {
	var req DeleteAssetRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	if err := s.server.DeleteAsset(ctx.Request().Context(), req.UID); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(200, Res{Message: "Kayıt silindi."})
}

type GetAssetQRCodeRequest struct {
	UID  string `param:"uid" validate:"required"`
	Size int    `query:"size" validate:"omitempty,gte=64,lte=1024"`
}

// GetAssetQRCode renders the sticker label for the door controller.
func (s *Server) GetAssetQRCode(ctx echo.Context) error {
	var req GetAssetQRCodeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	png, err := s.server.AssetQRCode(ctx.Request().Context(), req.UID, req.Size)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.Blob(200, "image/png", png)
}
