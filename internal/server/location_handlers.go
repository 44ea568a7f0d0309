package server

import (
	"github.com/labstack/echo/v4"

	"github.com/ekinotomasyon/officepanel/internal/geocode"
	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

type LocationView struct {
	Location *Location   `json:"location"`
	View     geocode.View `json:"view"`
	MapURL   string       `json:"map_url,omitempty"`
}

func toLocationView(v usecase.LocationView) LocationView {
	return LocationView{
		Location: toLocation(v.Location),
		View:     v.View,
		MapURL:   usecase.Asset{Location: v.Location}.MapURL(),
	}
}

type PickLocationRequest struct {
	UID string  `param:"uid" validate:"required"`
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

// PickLocation stores the point clicked on the map.
func (s *Server) PickLocation(ctx echo.Context) error {
	var req PickLocationRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	v, err := s.server.PickAssetLocation(ctx.Request().Context(), req.UID, usecase.Location{
		Lat: *req.Lat,
		Lng: *req.Lng,
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(200, Res{Data: toLocationView(v)})
}

type ClearLocationRequest struct {
	UID string `param:"uid" validate:"required"`
}

func (s *Server) ClearLocation(ctx echo.Context) error {
	var req ClearLocationRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	v, err := s.server.ClearAssetLocation(ctx.Request().Context(), req.UID)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(200, Res{Data: toLocationView(v)})
}

type SearchLocationRequest struct {
	UID string `param:"uid" validate:"required"`
	Q   string `json:"q"`
}

// SearchLocation geocodes the search box text and stores the first match.
// An empty or unmatched query leaves the stored point alone.
func (s *Server) SearchLocation(ctx echo.Context) error {
	var req SearchLocationRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	v, err := s.server.SearchAssetLocation(ctx.Request().Context(), req.UID, req.Q)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(200, Res{Data: toLocationView(v)})
}
